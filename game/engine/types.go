package engine

import (
	"strings"
	"time"
)

// Phase is the coarse lifecycle state of a game
type Phase string

const (
	NotStarted Phase = "not_started"
	Running    Phase = "running"
	Over       Phase = "over"
	Won        Phase = "won"

	// Validation constants
	MinGridSize         = 2
	MaxGridSize         = 100
	MinTickIntervalMs   = 10
	MaxTickIntervalMs   = 10000
	DefaultFoodAttempts = 64
)

// Terminal reports whether no tick can advance the game until Reset.
func (p Phase) Terminal() bool {
	return p == Over || p == Won
}

// CollisionCause describes what ended the game
type CollisionCause string

const (
	NoCollision   CollisionCause = ""
	WallCollision CollisionCause = "wall"
	SelfCollision CollisionCause = "self"
)

// Cell represents x,y coordinates on the board
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the cell one step away in direction d
func (c Cell) Add(d Direction) Cell {
	return Cell{X: c.X + d.DX, Y: c.Y + d.DY}
}

// Direction is a unit vector with exactly one non-zero component
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// Directions lists the four valid directions
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection maps "up", "down", "left" and "right" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Direction{}, false
}

// String returns the lowercase name of the direction
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Valid reports whether d is one of the four unit directions
func (d Direction) Valid() bool {
	return d == Up || d == Down || d == Left || d == Right
}

// Parallel reports whether d and other move along the same axis.
func (d Direction) Parallel(other Direction) bool {
	return (d.DX == 0) == (other.DX == 0)
}

// Config holds the tunable constants of a game
type Config struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	GridSize         int    `json:"grid_size"`
	TickIntervalMs   int    `json:"tick_interval_ms"`
	FoodReward       int    `json:"food_reward"`
	InitialPosition  Cell   `json:"initial_position"`
	InitialDirection string `json:"initial_direction"`
	MaxFoodAttempts  int    `json:"max_food_attempts,omitempty"`
}

// TickInterval returns the period between scheduled ticks
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Heading returns the parsed initial direction, defaulting to Right
func (c *Config) Heading() Direction {
	if d, ok := ParseDirection(c.InitialDirection); ok {
		return d
	}
	return Right
}

// GameState is the mutable state owned by the engine
type GameState struct {
	Snake    []Cell
	Heading  Direction
	Pending  Direction
	Food     Cell
	HasFood  bool
	Score    int
	GridSize int
	Phase    Phase
	Ticks    int
	Cause    CollisionCause
}

// Snapshot is an immutable copy of the game state for renderers and readers
type Snapshot struct {
	GridSize  int            `json:"grid_size"`
	Snake     []Cell         `json:"snake"`
	Head      Cell           `json:"head"`
	Food      Cell           `json:"food"`
	HasFood   bool           `json:"has_food"`
	Score     int            `json:"score"`
	Phase     Phase          `json:"phase"`
	Direction string         `json:"direction"`
	Ticks     int            `json:"ticks"`
	GameOver  bool           `json:"game_over"`
	Cause     CollisionCause `json:"cause,omitempty"`
	Length    int            `json:"length"`
}

// Occupied reports whether c is part of the snake
func (s Snapshot) Occupied(c Cell) bool {
	for _, seg := range s.Snake {
		if seg == c {
			return true
		}
	}
	return false
}

// TickResult describes the outcome of a single tick
type TickResult struct {
	Advanced bool           `json:"advanced"`
	Ate      bool           `json:"ate"`
	GameOver bool           `json:"game_over"`
	Cause    CollisionCause `json:"cause,omitempty"`
	Snapshot Snapshot       `json:"snapshot"`
}
