package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/snake-game/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks up a session and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	snap := sess.Engine.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Mode:           sess.Mode(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		State:          &snap,
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, opts CreateOptions) (*SessionInfo, error) {
	var config *engine.Config
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session and stops its game loop
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.sessions.Delete(sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return err
}

// SetDirection buffers a turn. Unknown direction names are ignored rather than rejected.
func (s *gameServiceImpl) SetDirection(ctx context.Context, sessionID, direction string) (*DirectionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &DirectionResult{Direction: direction}

	d, ok := engine.ParseDirection(direction)
	if !ok {
		result.Message = fmt.Sprintf("Ignored unknown direction '%s'. Use up, down, left or right.", direction)
		result.State = sess.Engine.Snapshot()
		return result, nil
	}

	err = sess.Do(ctx, func(e *engine.GameEngine) {
		result.Accepted = e.SetDirection(d)
		result.State = e.Snapshot()
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	result.Direction = d.String()
	switch {
	case result.State.GameOver:
		result.Message = "Game is over. Reset to play again."
	case result.Accepted:
		result.Message = fmt.Sprintf("Turning %s on the next tick", d)
	default:
		result.Message = fmt.Sprintf("Ignored %s: already moving along that axis (heading %s)", d, result.State.Direction)
	}
	return result, nil
}

// Start begins a game that has not started yet
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var snap engine.Snapshot
	err = sess.Do(ctx, func(e *engine.GameEngine) {
		e.Start()
		snap = e.Snapshot()
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return &snap, nil
}

// Tick advances a running game by up to steps moves, stopping early when it ends
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, steps int) (*TickResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if steps <= 0 {
		steps = 1
	}
	result := &TickResult{
		RequestedTicks: steps,
		Events:         []GameEvent{},
	}
	if steps > MaxTickSteps {
		steps = MaxTickSteps
		result.Truncated = true
		result.Limit = MaxTickSteps
	}

	err = sess.Do(ctx, func(e *engine.GameEngine) {
		startScore := e.Score()

		for i := 0; i < steps; i++ {
			if phase := e.Phase(); phase != engine.Running {
				result.StoppedReason = stoppedReason(phase)
				break
			}

			tick := e.Tick()
			if tick.Advanced {
				result.TicksExecuted++
			}
			if tick.Ate {
				result.FoodEaten++
				result.Events = append(result.Events, GameEvent{
					Type:      "food",
					Message:   fmt.Sprintf("Ate food, length %d", tick.Snapshot.Length),
					Tick:      tick.Snapshot.Ticks,
					Position:  tick.Snapshot.Head,
					Timestamp: time.Now(),
				})
			}
			if tick.GameOver {
				result.Events = append(result.Events, gameEndEvent(tick))
				result.StoppedReason = stoppedReason(tick.Snapshot.Phase)
				break
			}
		}

		result.ScoreDelta = e.Score() - startScore
		result.State = e.Snapshot()
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	result.GameOver = result.State.GameOver
	result.Cause = result.State.Cause
	return result, nil
}

func stoppedReason(phase engine.Phase) string {
	switch phase {
	case engine.NotStarted:
		return "not_started"
	case engine.Over:
		return "game_over"
	case engine.Won:
		return "won"
	}
	return ""
}

func gameEndEvent(tick engine.TickResult) GameEvent {
	event := GameEvent{
		Tick:      tick.Snapshot.Ticks,
		Position:  tick.Snapshot.Head,
		Timestamp: time.Now(),
	}
	if tick.Snapshot.Phase == engine.Won {
		event.Type = "won"
		event.Message = fmt.Sprintf("Board filled! Final score %d", tick.Snapshot.Score)
		return event
	}
	event.Type = "game_over"
	event.Message = fmt.Sprintf("Hit the %s. Final score %d", causeNoun(tick.Cause), tick.Snapshot.Score)
	return event
}

func causeNoun(cause engine.CollisionCause) string {
	if cause == engine.SelfCollision {
		return "snake body"
	}
	return "wall"
}

// Reset restarts the game; it is running again when Reset returns
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var snap engine.Snapshot
	err = sess.Do(ctx, func(e *engine.GameEngine) {
		snap = e.Reset()
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return &snap, nil
}

// GetGameState returns the latest published snapshot without waiting on the game loop
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Engine.Snapshot()
	return &snap, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Config, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.Config) error {
	return s.configs.SaveConfig(configName, config)
}
