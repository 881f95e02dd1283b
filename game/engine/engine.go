package engine

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

// Scheduler starts and stops the periodic tick driver on behalf of the engine.
// StopTicking must guarantee that no previously scheduled callback runs afterwards.
type Scheduler interface {
	StartTicking(callback func(), interval time.Duration)
	StopTicking()
}

// Renderer receives a snapshot after every state transition
type Renderer interface {
	Render(snapshot Snapshot)
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(snapshot Snapshot)

// Render calls f(snapshot)
func (f RendererFunc) Render(snapshot Snapshot) { f(snapshot) }

type noopScheduler struct{}

func (noopScheduler) StartTicking(func(), time.Duration) {}
func (noopScheduler) StopTicking()                       {}

type noopRenderer struct{}

func (noopRenderer) Render(Snapshot) {}

// Engine provides the main interface for game operations
type Engine interface {
	// Input and lifecycle
	SetDirection(d Direction) bool
	Start()
	Tick() TickResult
	Reset() Snapshot

	// Read side
	Snapshot() Snapshot
	Phase() Phase
	Score() int
	Config() *Config
}

// Option customises a GameEngine at construction
type Option func(*GameEngine)

// WithScheduler injects the tick driver
func WithScheduler(s Scheduler) Option {
	return func(e *GameEngine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithRenderer injects the renderer notified after each transition
func WithRenderer(r Renderer) Option {
	return func(e *GameEngine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithRand sets the random source used for food placement
func WithRand(rng *rand.Rand) Option {
	return func(e *GameEngine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// GameEngine implements the Engine interface.
// It is not safe for concurrent mutation; Snapshot may be called from any goroutine.
type GameEngine struct {
	config    *Config
	state     *GameState
	scheduler Scheduler
	renderer  Renderer
	rng       *rand.Rand
	snapshot  atomic.Pointer[Snapshot]
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *Config, opts ...Option) (*GameEngine, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:    config,
		scheduler: noopScheduler{},
		renderer:  noopRenderer{},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.state = e.initialState()
	e.publish()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with DefaultConfig
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		panic(fmt.Sprintf("engine: default config rejected: %v", err))
	}
	return e
}

// initialState builds a fresh not-started state with food placed
func (e *GameEngine) initialState() *GameState {
	heading := e.config.Heading()
	gs := &GameState{
		Snake:    []Cell{e.config.InitialPosition},
		Heading:  heading,
		Pending:  heading,
		GridSize: e.config.GridSize,
		Phase:    NotStarted,
	}
	gs.Food, gs.HasFood = e.placeFood(gs.Snake)
	return gs
}

func (e *GameEngine) placeFood(snake []Cell) (Cell, bool) {
	attempts := e.config.MaxFoodAttempts
	if attempts <= 0 {
		attempts = DefaultFoodAttempts
	}
	return PlaceFood(e.rng, e.config.GridSize, snake, attempts)
}

// publish stores a fresh snapshot and hands it to the renderer
func (e *GameEngine) publish() Snapshot {
	snap := e.state.Snapshot()
	e.snapshot.Store(&snap)
	e.renderer.Render(snap)
	return snap
}

// begin moves a not-started game into the running phase
func (e *GameEngine) begin() {
	e.state.Phase = Running
	e.scheduler.StartTicking(e.scheduledTick, e.config.TickInterval())
}

func (e *GameEngine) scheduledTick() {
	e.Tick()
}

// SetDirection buffers a turn for the next tick.
// Turns along the current axis of travel, reversals included, are ignored.
// The first directional input starts a game that has not started yet.
// Starting the game or accepting the turn publishes a snapshot.
func (e *GameEngine) SetDirection(d Direction) bool {
	gs := e.state
	if !d.Valid() || gs.Phase.Terminal() {
		return false
	}

	started := false
	if gs.Phase == NotStarted {
		e.begin()
		started = true
	}

	accepted := !d.Parallel(gs.Heading)
	if accepted {
		gs.Pending = d
	}
	if started || accepted {
		e.publish()
	}
	return accepted
}

// Start begins ticking a game that has not started yet
func (e *GameEngine) Start() {
	if e.state.Phase != NotStarted {
		return
	}
	e.begin()
	e.publish()
}

// Tick advances the snake by one cell. Outside the running phase it changes nothing.
func (e *GameEngine) Tick() TickResult {
	gs := e.state
	if gs.Phase != Running {
		return TickResult{
			GameOver: gs.Phase.Terminal(),
			Cause:    gs.Cause,
			Snapshot: e.Snapshot(),
		}
	}

	gs.Heading = gs.Pending
	next := gs.Head().Add(gs.Heading)

	if cause := gs.Collision(next); cause != NoCollision {
		gs.Phase = Over
		gs.Cause = cause
		e.scheduler.StopTicking()
		return TickResult{
			GameOver: true,
			Cause:    cause,
			Snapshot: e.publish(),
		}
	}

	ate := gs.HasFood && next == gs.Food
	gs.advance(next, ate)
	gs.Ticks++

	if ate {
		gs.Score += e.config.FoodReward
		gs.Food, gs.HasFood = e.placeFood(gs.Snake)
		if !gs.HasFood {
			gs.Phase = Won
			e.scheduler.StopTicking()
		}
	}

	return TickResult{
		Advanced: true,
		Ate:      ate,
		GameOver: gs.Phase.Terminal(),
		Snapshot: e.publish(),
	}
}

// Reset stops ticking, reinitialises the board and immediately resumes ticking
func (e *GameEngine) Reset() Snapshot {
	e.scheduler.StopTicking()
	e.state = e.initialState()
	e.begin()
	return e.publish()
}

// Snapshot returns the most recently published state
func (e *GameEngine) Snapshot() Snapshot {
	return *e.snapshot.Load()
}

// Phase returns the current lifecycle phase
func (e *GameEngine) Phase() Phase {
	return e.state.Phase
}

// Score returns the current score
func (e *GameEngine) Score() int {
	return e.state.Score
}

// Config returns the engine configuration
func (e *GameEngine) Config() *Config {
	return e.config
}

// SetState replaces the game state, e.g. to set up a specific board.
// The snake must be non-empty and on the board; the food, when present, must not overlap it.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Snake) == 0 {
		return fmt.Errorf("state snake cannot be empty")
	}
	if state.GridSize == 0 {
		state.GridSize = e.config.GridSize
	}
	if state.GridSize != e.config.GridSize {
		return fmt.Errorf("state grid size %d does not match config grid size %d", state.GridSize, e.config.GridSize)
	}
	for _, c := range state.Snake {
		if !InBounds(c, state.GridSize) {
			return fmt.Errorf("snake cell (%d,%d) is off the board", c.X, c.Y)
		}
	}
	if state.HasFood && state.Occupies(state.Food) {
		return fmt.Errorf("food (%d,%d) overlaps the snake", state.Food.X, state.Food.Y)
	}
	if !state.Heading.Valid() {
		state.Heading = e.config.Heading()
	}
	if !state.Pending.Valid() {
		state.Pending = state.Heading
	}
	if state.Phase == "" {
		state.Phase = NotStarted
	}

	cp := *state
	cp.Snake = append([]Cell(nil), state.Snake...)
	e.state = &cp
	e.publish()
	return nil
}
