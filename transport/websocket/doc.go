// Package websocket provides WebSocket transport for the snake game.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - Session-aware WebSocket connections
//   - State broadcasting after every engine transition
//   - Client input routed to the game service
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine. Only the hub goroutine touches the client registry.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"action": "direction", "direction": "up"}, {"action": "start"}, {"action": "reset"}
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "snapshot": {...}}
//
// Failed actions are reported to the session as {"event": "error", "data": "..."}.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.NewServiceInput(gameService))
//	go hub.Run(ctx)
//	sessionManager.SetListener(hub.BroadcastSnapshot)
//
//	// inside an HTTP handler
//	hub.ServeWS(w, r, sessionID, &snapshot)
//
// BroadcastSnapshot never blocks, so it can be called from a session loop.
package websocket
