// Package mcp exposes the memory match game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool calls the REST API of a running
// server and formats the JSON response as text an agent can read.
//
// MCP Tools:
//   - create_session: Create a session from a preset or explicit symbol type and size
//   - list_sessions, get_session: Inspect sessions
//   - game_state: Board grid, turn phase and matched pairs
//   - reveal_card: Flip a card; after a second card it waits for the match check
//   - hide_card: Flip the single revealed card back
//   - new_game: Deal a new board
//   - event_history: Paginated flips, matches and mismatches
//   - list_configs: Available presets
//   - game_instructions: Rules and strategy
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
