// Package websocket provides real-time WebSocket transport for the memory match game.
//
// A central Hub tracks connections per session. Every engine event of a
// session, including the delayed match or mismatch resolution, is pushed to
// all of its clients together with the state it produced. The Hub implements
// service.Notifier so the game service can hand events straight to it.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "card_flipped", "game_state": {...}, "data": {...}}
//
// The event is an engine event type, "state_update" for plain snapshots,
// "action_result" for the reply to a command, or "error".
//
// Incoming commands:
//
//	{"action": "reveal", "index": 5}
//	{"action": "hide", "index": 5}
//	{"action": "new_game", "symbol_type": "numbers", "size": 6}
//	{"action": "state"}
//
// Usage:
//
//	hub := websocket.NewHub()
//	svc := service.NewGameService(sessions, configs, service.WithNotifier(hub))
//	hub.SetService(svc)
//	go hub.Run()
//	defer hub.Close()
//
//	router.HandleFunc("/api/sessions/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, mux.Vars(r)["id"])
//	})
//
// Slow clients whose send buffer fills up are disconnected rather than
// allowed to stall the hub.
package websocket
