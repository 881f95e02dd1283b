package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/scheduler"
	"github.com/wricardo/snake-game/game/service"
)

// MockSessionManager implements service.SessionManager for testing.
// Every session runs on a real loop with a manual scheduler.
type MockSessionManager struct {
	t        *testing.T
	sessions map[string]*service.Session
}

func NewMockSessionManager(t *testing.T) *MockSessionManager {
	m := &MockSessionManager{
		t:        t,
		sessions: make(map[string]*service.Session),
	}
	t.Cleanup(func() {
		for _, sess := range m.sessions {
			sess.Close()
		}
	})
	return m
}

func (m *MockSessionManager) Create(id string, config *engine.Config, opts service.CreateOptions) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	manual := scheduler.NewManual()
	eng, err := engine.NewEngine(config,
		engine.WithScheduler(manual),
		engine.WithRand(rand.New(rand.NewSource(1))),
	)
	if err != nil {
		return nil, err
	}

	loop := scheduler.NewLoop(0)
	go loop.Run(context.Background())

	session := &service.Session{
		ID:        id,
		Engine:    eng,
		Config:    config,
		Loop:      loop,
		Manual:    manual,
		CreatedAt: time.Now(),
	}
	session.Touch()
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	session, exists := m.sessions[id]
	if !exists {
		return service.ErrSessionNotFound
	}
	session.Close()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.Touch()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.Config
	saved   map[string]*engine.Config
}

func testConfig() *engine.Config {
	return &engine.Config{
		Name:             "test",
		Description:      "Test configuration",
		GridSize:         5,
		TickIntervalMs:   100,
		FoodReward:       10,
		InitialPosition:  engine.Cell{X: 2, Y: 2},
		InitialDirection: "right",
	}
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := testConfig()
	return &MockConfigManager{
		configs: map[string]*engine.Config{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
		saved: make(map[string]*engine.Config),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.Config, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			GridSize:    config.GridSize,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.Config {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.Config) error {
	if err := engine.ValidateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.saved[name] = config
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager) {
	sessions := NewMockSessionManager(t)
	return service.NewGameService(sessions, NewMockConfigManager()), sessions
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name       string
		configName string
		opts       service.CreateOptions
		wantMode   string
		wantErr    error
	}{
		{"create with default config", "", service.CreateOptions{}, service.ModeManual, nil},
		{"create with specific config", "test", service.CreateOptions{Manual: true}, service.ModeManual, nil},
		{"create with non-existent config", "non-existent", service.CreateOptions{}, "", service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
			if info.ID == "" {
				t.Error("Expected session ID to be generated")
			}
			if info.Mode != tt.wantMode {
				t.Errorf("Expected mode %s, got %s", tt.wantMode, info.Mode)
			}
			if info.State == nil || info.State.Phase != engine.NotStarted {
				t.Errorf("Expected a not-started game, got %+v", info.State)
			}
			if info.GameConfig == nil || info.GameConfig.GridSize != 5 {
				t.Errorf("Expected test config, got %+v", info.GameConfig)
			}
		})
	}
}

func TestGameService_CreateSession_ListsAvailableConfigs(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateSession(context.Background(), "missing", service.CreateOptions{})
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "Available configs") {
		t.Errorf("Expected available configs in error, got %v", err)
	}
}

func TestGameService_GetSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.CreateSession(ctx, "test", service.CreateOptions{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	info, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if info.ID != created.ID {
		t.Errorf("Expected session %s, got %s", created.ID, info.ID)
	}
	if info.ConfigName != "test" && info.ConfigName != "default" {
		t.Errorf("Expected config id for 'test', got %s", info.ConfigName)
	}

	if _, err := svc.GetSession(ctx, "nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, "", service.CreateOptions{}); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}

	if err := svc.DeleteSession(ctx, sessions[0].ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if err := svc.DeleteSession(ctx, sessions[0].ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}

	sessions, _ = svc.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions after delete, got %d", len(sessions))
	}
}

func TestGameService_SetDirection(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)

	info, _ := svc.CreateSession(ctx, "test", service.CreateOptions{Manual: true})

	t.Run("unknown direction is ignored", func(t *testing.T) {
		result, err := svc.SetDirection(ctx, info.ID, "sideways")
		if err != nil {
			t.Fatalf("SetDirection() error = %v", err)
		}
		if result.Accepted {
			t.Error("Expected unknown direction to be ignored")
		}
		if result.State.Phase != engine.NotStarted {
			t.Errorf("Unknown direction should not start the game, phase %s", result.State.Phase)
		}
	})

	t.Run("first turn starts the game", func(t *testing.T) {
		result, err := svc.SetDirection(ctx, info.ID, "UP")
		if err != nil {
			t.Fatalf("SetDirection() error = %v", err)
		}
		if !result.Accepted || result.Direction != "up" {
			t.Errorf("Expected accepted turn up, got %+v", result)
		}
		if result.State.Phase != engine.Running {
			t.Errorf("Expected running phase, got %s", result.State.Phase)
		}
		if !sessions.sessions[info.ID].Manual.Running() {
			t.Error("Expected scheduler to be ticking")
		}
	})

	t.Run("reversal is ignored", func(t *testing.T) {
		// Heading is still right until a tick applies the pending turn
		result, err := svc.SetDirection(ctx, info.ID, "left")
		if err != nil {
			t.Fatalf("SetDirection() error = %v", err)
		}
		if result.Accepted {
			t.Error("Expected reversal to be ignored")
		}
		if !strings.Contains(result.Message, "axis") {
			t.Errorf("Expected axis message, got %q", result.Message)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		if _, err := svc.SetDirection(ctx, "nope", "up"); !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestGameService_Tick(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	info, _ := svc.CreateSession(ctx, "test", service.CreateOptions{Manual: true})

	t.Run("not started", func(t *testing.T) {
		result, err := svc.Tick(ctx, info.ID, 3)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if result.TicksExecuted != 0 || result.StoppedReason != "not_started" {
			t.Errorf("Expected no ticks before start, got %+v", result)
		}
	})

	if _, err := svc.Start(ctx, info.ID); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Run("advance", func(t *testing.T) {
		result, err := svc.Tick(ctx, info.ID, 2)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if result.TicksExecuted != 2 {
			t.Errorf("Expected 2 ticks, got %d", result.TicksExecuted)
		}
		if result.State.Head != (engine.Cell{X: 4, Y: 2}) {
			t.Errorf("Expected head at (4,2), got %+v", result.State.Head)
		}
		if result.GameOver {
			t.Error("Game should still be running")
		}
		if result.ScoreDelta != result.FoodEaten*10 {
			t.Errorf("Score delta %d does not match %d foods", result.ScoreDelta, result.FoodEaten)
		}
	})

	t.Run("stops at the wall", func(t *testing.T) {
		result, err := svc.Tick(ctx, info.ID, 10)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if result.TicksExecuted != 0 {
			t.Errorf("Expected collision on the first tick, got %d moves", result.TicksExecuted)
		}
		if !result.GameOver || result.Cause != engine.WallCollision {
			t.Errorf("Expected wall game over, got %+v", result)
		}
		if result.StoppedReason != "game_over" {
			t.Errorf("Expected stopped reason game_over, got %s", result.StoppedReason)
		}
		last := result.Events[len(result.Events)-1]
		if last.Type != "game_over" {
			t.Errorf("Expected game_over event, got %s", last.Type)
		}
	})

	t.Run("terminal game ignores ticks", func(t *testing.T) {
		result, err := svc.Tick(ctx, info.ID, 1)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if result.TicksExecuted != 0 || !result.GameOver {
			t.Errorf("Expected game to stay over, got %+v", result)
		}
	})

	t.Run("steps are capped", func(t *testing.T) {
		result, err := svc.Tick(ctx, info.ID, service.MaxTickSteps+1)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if !result.Truncated || result.Limit != service.MaxTickSteps {
			t.Errorf("Expected truncation at %d, got %+v", service.MaxTickSteps, result)
		}
	})
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)

	info, _ := svc.CreateSession(ctx, "test", service.CreateOptions{Manual: true})
	svc.Start(ctx, info.ID)
	svc.Tick(ctx, info.ID, 5)

	snap, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if snap.Phase != engine.Running {
		t.Errorf("Expected running phase after reset, got %s", snap.Phase)
	}
	if snap.Score != 0 || snap.Length != 1 || snap.Head != (engine.Cell{X: 2, Y: 2}) {
		t.Errorf("Expected initial board, got %+v", snap)
	}
	if !sessions.sessions[info.ID].Manual.Running() {
		t.Error("Expected ticking to resume after reset")
	}

	state, err := svc.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if state.Phase != engine.Running {
		t.Errorf("Expected running state, got %s", state.Phase)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs() error = %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configs))
	}

	config, err := svc.LoadConfig(ctx, "test")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.GridSize != 5 {
		t.Errorf("Expected grid size 5, got %d", config.GridSize)
	}

	custom := testConfig()
	custom.Name = "custom"
	custom.GridSize = 12
	if err := svc.SaveConfig(ctx, "custom", custom); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	info, err := svc.CreateSession(ctx, "custom", service.CreateOptions{})
	if err != nil {
		t.Fatalf("Failed to create session from saved config: %v", err)
	}
	if info.State.GridSize != 12 {
		t.Errorf("Expected grid size 12, got %d", info.State.GridSize)
	}

	bad := testConfig()
	bad.GridSize = 0
	if err := svc.SaveConfig(ctx, "bad", bad); !errors.Is(err, service.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestSession_DoAfterClose(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)

	info, _ := svc.CreateSession(ctx, "test", service.CreateOptions{})
	sess := sessions.sessions[info.ID]
	sess.Close()

	err := sess.Do(ctx, func(e *engine.GameEngine) {})
	if !errors.Is(err, scheduler.ErrLoopClosed) {
		t.Errorf("Expected ErrLoopClosed, got %v", err)
	}
}
