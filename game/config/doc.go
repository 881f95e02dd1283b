// Package config provides configuration management for the snake game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through the engine rules
//   - Default configuration management
//   - Configuration discovery, listing and saving
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - grid_size: the side of the square board
//   - tick_interval_ms: milliseconds between moves
//   - food_reward: points added per food eaten
//   - initial_position and initial_direction of the snake
//   - max_food_attempts: random draws before food placement scans the board
//
// Fields missing from a file keep the values of engine.DefaultConfig.
//
// Available Configurations:
//
//   - classic: 17x17 board at 200ms per move
//   - small: 9x9 board for quick games
//   - large: 30x30 board
//   - turbo: classic board at 80ms per move
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	classic, err := manager.LoadConfig("classic")
//
//	// List all available configurations
//	configs, err := manager.ListConfigs()
//
// The manager caches loaded configurations; ReloadConfig and RefreshCache
// pick up changes made on disk.
package config
