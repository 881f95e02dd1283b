// Package session provides session management for the snake game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Per-session game loops and schedulers
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns an engine, a scheduler.Loop goroutine that serialises
// access to it, and either a wall-clock Ticker or a Manual scheduler.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs are retried until unused.
//
// State Updates:
//
// SetListener installs a callback that receives every snapshot published by any
// session engine. The WebSocket hub uses it to push state to clients.
//
// Usage:
//
//	manager := session.NewManager()
//	manager.SetListener(hub.BroadcastSnapshot)
//
//	// Create a realtime session
//	sess, err := manager.Create("", config, service.CreateOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// Deleting or expiring a session stops its ticker and closes its loop.
package session
