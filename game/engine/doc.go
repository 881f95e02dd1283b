// Package engine provides the core game logic for the snake game.
//
// The engine package implements the game mechanics including:
//   - Tick-based movement on a square grid
//   - Wall and self collision detection
//   - Food placement constrained by snake occupancy
//   - Scoring and the not_started/running/over/won state machine
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the mutable state owned by the engine,
// while Snapshot is the immutable copy handed to renderers and readers after every
// transition. Config defines the board size, tick interval and scoring.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(),
//		engine.WithScheduler(ticker),
//		engine.WithRenderer(engine.RendererFunc(draw)),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// First input starts the game and asks the scheduler to begin ticking
//	gameEngine.SetDirection(engine.Up)
//	snapshot := gameEngine.Snapshot()
//
// Timing:
//
// The engine owns no goroutine or timer. It calls StartTicking and StopTicking on
// the injected Scheduler, and the host delivers Tick calls on the same goroutine that
// delivers SetDirection and Reset. A direction change only takes effect on the next tick.
//
// Game Rules:
//
// The snake moves one cell per tick. Moving off the board or onto any body cell,
// the tail included, ends the game. Eating food grows the snake by one and adds the
// configured reward. When no free cell is left for food the game is won.
package engine
