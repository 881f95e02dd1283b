// Package api provides HTTP REST API handlers for the snake game.
//
// The api package implements:
//   - RESTful endpoints for game operations
//   - Session management endpoints
//   - Configuration listing, lookup and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic", "manual": true})
//   - GET /api/sessions - List sessions (?sort=created|accessed|score&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its game loop
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Latest snapshot
//   - POST /api/sessions/{id}/direction - Buffer a turn ({"direction": "up"})
//   - POST /api/sessions/{id}/start - Start without turning
//   - POST /api/sessions/{id}/tick - Advance a running game ({"steps": 5})
//   - POST /api/sessions/{id}/reset - Restart the game
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Validate and save a configuration
//
// Other:
//   - GET /api/health - Liveness and session count
//   - GET /ws?session={id} - WebSocket state stream and input
//
// Usage:
//
//	hub := websocket.NewHub(websocket.NewServiceInput(gameService))
//	go hub.Run(ctx)
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON. Unknown sessions and configurations map to 404,
// invalid configurations and bodies to 400, everything else to 500:
//
//	{
//	  "error": "session not found: ab12"
//	}
//
// Unknown direction names are not errors; the response reports accepted=false.
package api
