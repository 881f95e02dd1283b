package service

import (
	"time"

	"github.com/wricardo/snake-game/game/engine"
)

// Session modes
const (
	ModeRealtime = "realtime"
	ModeManual   = "manual"
)

// MaxTickSteps caps the number of ticks a single Tick call may execute
const MaxTickSteps = 500

// CreateOptions tunes a new session
type CreateOptions struct {
	// Manual sessions never tick on their own; callers advance them with Tick
	Manual bool `json:"manual"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	ConfigName     string           `json:"config_name"`
	Mode           string           `json:"mode"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          *engine.Snapshot `json:"state"`
	GameConfig     *engine.Config   `json:"game_config"`
}

// DirectionResult reports whether a turn was buffered
type DirectionResult struct {
	Accepted  bool            `json:"accepted"`
	Direction string          `json:"direction"`
	Message   string          `json:"message"`
	State     engine.Snapshot `json:"state"`
}

// TickResult contains the outcome of one or more ticks
type TickResult struct {
	RequestedTicks int                   `json:"requested_ticks"`
	TicksExecuted  int                   `json:"ticks_executed"`
	FoodEaten      int                   `json:"food_eaten"`
	ScoreDelta     int                   `json:"score_delta"`
	GameOver       bool                  `json:"game_over"`
	Cause          engine.CollisionCause `json:"cause,omitempty"`
	StoppedReason  string                `json:"stopped_reason,omitempty"`
	Truncated      bool                  `json:"truncated,omitempty"`
	Limit          int                   `json:"limit,omitempty"`
	Events         []GameEvent           `json:"events"`
	State          engine.Snapshot       `json:"state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string      `json:"type"` // "food", "game_over", "won"
	Message   string      `json:"message"`
	Tick      int         `json:"tick"`
	Position  engine.Cell `json:"position"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	GridSize       int    `json:"grid_size"`
	TickIntervalMs int    `json:"tick_interval_ms"`
	FoodReward     int    `json:"food_reward"`
}
