package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/scheduler"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SetDirection(ctx context.Context, sessionID, direction string) (*DirectionResult, error)
	Start(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Tick(ctx context.Context, sessionID string, steps int) (*TickResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Config, error)
	SaveConfig(ctx context.Context, configName string, config *engine.Config) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.Config, opts CreateOptions) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Config
	SaveConfig(name string, config *engine.Config) error
}

// Session represents an active game session.
// Engine must only be mutated through Do; Engine.Snapshot is safe from any goroutine.
type Session struct {
	ID     string
	Engine *engine.GameEngine
	Config *engine.Config

	// Loop owns the engine. Exactly one of Ticker and Manual is set.
	Loop   *scheduler.Loop
	Ticker *scheduler.Ticker
	Manual *scheduler.Manual

	CreatedAt time.Time

	accessMu     sync.Mutex
	lastAccessed time.Time
}

// Touch records an access now
func (s *Session) Touch() {
	s.SetLastAccessed(time.Now())
}

// SetLastAccessed overrides the last access time
func (s *Session) SetLastAccessed(t time.Time) {
	s.accessMu.Lock()
	s.lastAccessed = t
	s.accessMu.Unlock()
}

// LastAccessed returns the last access time
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessed
}

// Do runs fn against the engine on the session loop and waits for it.
// An error means fn was never applied.
func (s *Session) Do(ctx context.Context, fn func(e *engine.GameEngine)) error {
	if s.Loop == nil {
		fn(s.Engine)
		return nil
	}
	return s.Loop.Do(ctx, func() { fn(s.Engine) })
}

// Mode reports whether the session ticks on its own or waits for Tick calls
func (s *Session) Mode() string {
	if s.Manual != nil {
		return ModeManual
	}
	return ModeRealtime
}

// Close stops ticking and shuts the loop down
func (s *Session) Close() {
	if s.Ticker != nil {
		s.Ticker.StopTicking()
	}
	if s.Loop != nil {
		s.Loop.Close()
	}
}
