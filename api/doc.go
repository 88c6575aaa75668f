// Package api provides the HTTP REST API for the memory match game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({config_id?, symbol_type?, size?})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board and turn phase
//   - POST /api/sessions/{id}/new-game - Discard the board and deal a new one
//   - POST /api/sessions/{id}/reveal - Flip a card face-up ({"index": n})
//   - POST /api/sessions/{id}/hide - Flip the single revealed card back ({"index": n})
//   - GET /api/sessions/{id}/history - Event history (?page=&limit=&order=)
//
// Configuration:
//   - GET /api/configs - List presets
//   - POST /api/configs - Save a preset
//   - GET /api/configs/{name} - Get a preset
//
// Other:
//   - GET /api/health - Health check
//   - GET /ws?session={id} - WebSocket upgrade
//   - / - Static files
//
// Reveal and hide never fail for an index the board rejects; the response
// carries "changed": false instead. The outcome of a second reveal arrives
// after the preset's resolve delay, so clients either poll the state or
// listen on the WebSocket.
//
// Errors are returned as JSON:
//
//	{"error": "session zz99: session not found"}
//
// Invalid board parameters and presets map to 400, unknown sessions and
// presets to 404, everything else to 500.
package api
