// Package mcp exposes the snake game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package, and the JSON answer is formatted as text with the board
// drawn by the render package.
//
// MCP Tools:
//   - create_session: Create a session, manual ticking unless realtime is set
//   - list_sessions, get_session: Inspect sessions
//   - game_state: Board, score, phase and safe moves
//   - set_direction: Buffer a turn, optionally followed by ticks
//   - tick: Advance a session by N ticks
//   - reset_game: Restart the game
//   - list_configs: List available game configurations
//   - game_instructions: Rules and coordinate system
//   - describe_cell: What occupies one cell
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the Client is an http.Handler for single JSON-RPC messages
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	mux.Handle("/mcp", client)
//
// Manual sessions suit agents: the snake only moves when the agent calls tick,
// so thinking time never costs a collision.
package mcp
