// Package validate checks game configuration JSON files before they are served.
// It checks:
//   - JSON structure and unknown keys
//   - Engine constraints (board size, tick interval, reward, start cell, heading)
//   - Fields left to the built-in defaults
//   - Runway: how many ticks the snake survives on its initial heading
//
// Valid files also get a short analysis: board cells, the best possible score
// and the time needed to cross the board.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/snake-game/game/engine"
)

// knownKeys are the JSON keys understood by engine.Config
var knownKeys = []string{
	"name",
	"description",
	"grid_size",
	"tick_interval_ms",
	"food_reward",
	"initial_position",
	"initial_direction",
	"max_food_attempts",
}

// Result captures the outcome of validating a single file.
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
	Config   *engine.Config
}

// File loads and validates a single configuration JSON file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	for key := range raw {
		if !contains(knownKeys, key) {
			result.fail("Unknown key: %s", key)
		}
	}
	for _, key := range knownKeys {
		if _, ok := raw[key]; !ok && key != "description" {
			result.warn("%s not set, using default", key)
		}
	}

	config := engine.DefaultConfig()
	config.Name = ""
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(config); err != nil {
		result.fail("Invalid field: %v", err)
		return result
	}

	if err := engine.ValidateConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
	}
	if !result.Valid {
		return result
	}
	result.Config = config

	runway := Runway(config)
	if runway == 0 {
		result.warn("initial heading %s leads straight into the wall", config.InitialDirection)
	}

	cells := config.GridSize * config.GridSize
	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", config.Name),
		fmt.Sprintf("Board: %dx%d (%d cells)", config.GridSize, config.GridSize, cells),
		fmt.Sprintf("Start: (%d,%d) heading %s, %d ticks to the wall", config.InitialPosition.X, config.InitialPosition.Y, config.InitialDirection, runway),
		fmt.Sprintf("Max score: %d", MaxScore(config)),
		fmt.Sprintf("Crossing time: %s", CrossingTime(config)),
	)
	return result
}

// Dir validates every *.json file in dir, sorted by file name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files found in %s", dir)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

// Report prints a concise report and returns true when every result is valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  ✓ "+info)
			}
		} else {
			fmt.Fprintln(w, "INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ✗ "+err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ! "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "All configurations are valid")
	} else {
		fmt.Fprintln(w, "Some configurations have errors")
	}
	return allValid
}

// Runway counts the ticks a snake survives on its initial heading without turning
func Runway(config *engine.Config) int {
	p := config.InitialPosition
	switch config.Heading() {
	case engine.Up:
		return p.Y
	case engine.Down:
		return config.GridSize - 1 - p.Y
	case engine.Left:
		return p.X
	default:
		return config.GridSize - 1 - p.X
	}
}

// MaxScore is the score of a game won by filling the board
func MaxScore(config *engine.Config) int {
	return (config.GridSize*config.GridSize - 1) * config.FoodReward
}

// CrossingTime is how long the snake takes to travel one board width
func CrossingTime(config *engine.Config) time.Duration {
	return time.Duration(config.GridSize) * config.TickInterval()
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
