package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfig returns the classic 17x17 board configuration
func DefaultConfig() *Config {
	return &Config{
		Name:             "Classic",
		Description:      "17x17 board, one move every 200ms, 10 points per food",
		GridSize:         17,
		TickIntervalMs:   200,
		FoodReward:       10,
		InitialPosition:  Cell{X: 10, Y: 10},
		InitialDirection: "right",
		MaxFoodAttempts:  DefaultFoodAttempts,
	}
}

// ValidateConfig validates a game configuration for correctness and playability
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	if config.TickIntervalMs < MinTickIntervalMs || config.TickIntervalMs > MaxTickIntervalMs {
		return fmt.Errorf("config validation: tick_interval_ms must be between %d and %d, got %d",
			MinTickIntervalMs, MaxTickIntervalMs, config.TickIntervalMs)
	}

	if config.FoodReward < 0 {
		return fmt.Errorf("config validation: food_reward must not be negative, got %d", config.FoodReward)
	}

	p := config.InitialPosition
	if p.X < 0 || p.X >= config.GridSize || p.Y < 0 || p.Y >= config.GridSize {
		return fmt.Errorf("config validation: initial_position (%d,%d) is outside the %dx%d board",
			p.X, p.Y, config.GridSize, config.GridSize)
	}

	if _, ok := ParseDirection(config.InitialDirection); !ok {
		return fmt.Errorf("config validation: initial_direction must be one of up, down, left, right, got '%s'", config.InitialDirection)
	}

	if config.MaxFoodAttempts < 0 {
		return fmt.Errorf("config validation: max_food_attempts must not be negative, got %d", config.MaxFoodAttempts)
	}

	return nil
}

// LoadConfig loads and validates a game configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}

	return config, nil
}
