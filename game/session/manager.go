package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/scheduler"
	"github.com/wricardo/snake-game/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds the retries when a generated ID is already taken
const maxIDAttempts = 16

// UpdateListener is notified with every snapshot a session engine publishes.
// It runs on the session loop and must not block.
type UpdateListener func(sessionID string, snapshot engine.Snapshot)

// RemoveListener is notified after a session is deleted or expires
type RemoveListener func(sessionID string)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex

	listener   UpdateListener
	onRemove   RemoveListener
	listenerMu sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// SetListener installs the callback receiving state updates from every session
func (m *Manager) SetListener(listener UpdateListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listener = listener
}

// SetRemoveListener installs the callback told about removed sessions
func (m *Manager) SetRemoveListener(listener RemoveListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.onRemove = listener
}

func (m *Manager) removed(id string) {
	m.listenerMu.RLock()
	listener := m.onRemove
	m.listenerMu.RUnlock()

	if listener != nil {
		listener(id)
	}
}

func (m *Manager) notify(id string, snap engine.Snapshot) {
	m.listenerMu.RLock()
	listener := m.listener
	m.listenerMu.RUnlock()

	if listener != nil {
		listener(id, snap)
	}
}

// Create creates a new session with the given ID and configuration.
// An empty id asks the manager to generate one.
func (m *Manager) Create(id string, config *engine.Config, opts service.CreateOptions) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		generated, err := m.uniqueSessionID()
		if err != nil {
			return nil, err
		}
		id = generated
	} else if strings.TrimSpace(id) != id || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	loop := scheduler.NewLoop(0)
	sess := &service.Session{
		ID:        id,
		Config:    config,
		Loop:      loop,
		CreatedAt: time.Now(),
	}
	sess.Touch()

	var sched engine.Scheduler
	if opts.Manual {
		sess.Manual = scheduler.NewManual()
		sched = sess.Manual
	} else {
		sess.Ticker = scheduler.NewTicker(loop.Post)
		sched = sess.Ticker
	}

	eng, err := engine.NewEngine(config,
		engine.WithScheduler(sched),
		engine.WithRenderer(engine.RendererFunc(func(snap engine.Snapshot) {
			m.notify(id, snap)
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	sess.Engine = eng

	go func() {
		if err := loop.Run(context.Background()); err != nil {
			log.Printf("Session %s loop stopped: %v", id, err)
		}
	}()

	m.sessions[strings.ToLower(id)] = sess
	log.Printf("Created session %s (%s, %s)", id, config.Name, sess.Mode())

	return sess, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session and stops its game loop
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if exists {
		delete(m.sessions, lowerID)
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	session.Close()
	m.removed(session.ID)
	log.Printf("Deleted session %s", session.ID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	session.Touch()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	cutoff := time.Now().Add(-maxAge)
	var expired []*service.Session

	for id, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
		m.removed(session.ID)
	}
	return len(expired)
}

// CloseAll stops every session, used on shutdown
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*service.Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// uniqueSessionID generates an unused ID; m.mu must be held
func (m *Manager) uniqueSessionID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := generateSessionID()
		if err != nil {
			return "", err
		}
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a free session ID after %d attempts", maxIDAttempts)
}

// generateSessionID generates a random 4-character session ID
func generateSessionID() (string, error) {
	// 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
