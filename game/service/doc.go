// Package service provides the business logic layer for the snake game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup for new sessions
//   - Direction input, start, reset and stepped ticks
//   - Session lifecycle management
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine and a scheduler.Loop goroutine;
// every mutation is posted to that loop through Session.Do, so ticks and input
// for one session never interleave. Reads use the engine's published snapshot.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a session that agents drive tick by tick
//	info, err := gameService.CreateSession(ctx, "classic", service.CreateOptions{Manual: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.SetDirection(ctx, info.ID, "up")
//	result, err := gameService.Tick(ctx, info.ID, 5)
//
// Session Modes:
//
// Realtime sessions tick on a wall-clock timer once started. Manual sessions only
// move when Tick is called, which suits agents that need time to think.
package service
