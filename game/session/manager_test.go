package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/scheduler"
	"github.com/wricardo/snake-game/game/service"
)

func createTestConfig() *engine.Config {
	return &engine.Config{
		Name:             "Test Config",
		Description:      "Test configuration",
		GridSize:         6,
		TickIntervalMs:   engine.MinTickIntervalMs,
		FoodReward:       10,
		InitialPosition:  engine.Cell{X: 1, Y: 1},
		InitialDirection: "right",
	}
}

func newTestManager(t *testing.T) *Manager {
	manager := NewManager()
	t.Cleanup(manager.CloseAll)
	return manager
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	t.Run("create with ID", func(t *testing.T) {
		session, err := manager.Create("test-1", config, service.CreateOptions{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-1" {
			t.Errorf("Expected session ID 'test-1', got '%s'", session.ID)
		}
		if session.Engine == nil || session.Loop == nil {
			t.Fatal("Expected engine and loop to be initialized")
		}
		if session.Ticker == nil || session.Manual != nil {
			t.Error("Expected a realtime session to use the ticker")
		}
		if session.Mode() != service.ModeRealtime {
			t.Errorf("Expected realtime mode, got %s", session.Mode())
		}
	})

	t.Run("create manual session", func(t *testing.T) {
		session, err := manager.Create("", config, service.CreateOptions{Manual: true})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.Manual == nil || session.Ticker != nil {
			t.Error("Expected a manual session to use the manual scheduler")
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected generated 4-character ID, got '%s'", session.ID)
		}
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("TEST-1", config, service.CreateOptions{})
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", config, service.CreateOptions{})
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.GridSize = 0
		if _, err := manager.Create("bad", bad, service.CreateOptions{}); err == nil {
			t.Error("Expected error for invalid config")
		}
		if _, err := manager.Get("bad"); !errors.Is(err, ErrSessionNotFound) {
			t.Error("Failed session should not be stored")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := newTestManager(t)
	created, _ := manager.Create("abcd", createTestConfig(), service.CreateOptions{})

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"exact", "abcd", nil},
		{"case-insensitive", "ABCD", nil},
		{"missing", "zzzz", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := manager.Get(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to get session: %v", err)
			}
			if session != created {
				t.Error("Expected the created session")
			}
		})
	}
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager(t)
	session, _ := manager.Create("del1", createTestConfig(), service.CreateOptions{})

	if err := manager.Delete("DEL1"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be gone")
	}
	if err := manager.Delete("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	// The loop is closed with the session
	select {
	case <-session.Loop.Done():
	case <-time.After(time.Second):
		t.Error("Expected session loop to be closed")
	}
	if session.Ticker.Running() {
		t.Error("Expected ticker to be stopped")
	}
}

func TestManager_List(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	for i := 0; i < 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("list-%d", i), config, service.CreateOptions{}); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	if len(manager.List()) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(manager.List()))
	}
	if manager.Count() != 3 {
		t.Errorf("Expected count 3, got %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	old, _ := manager.Create("old", config, service.CreateOptions{})
	manager.Create("new", config, service.CreateOptions{})

	old.SetLastAccessed(time.Now().Add(-2 * time.Hour))

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected old session to be removed")
	}
	if _, err := manager.Get("new"); err != nil {
		t.Error("Expected new session to remain")
	}
	select {
	case <-old.Loop.Done():
	default:
		t.Error("Expected expired session loop to be closed")
	}
}

func TestManager_RemoveListener(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	var mu sync.Mutex
	var removed []string
	manager.SetRemoveListener(func(id string) {
		mu.Lock()
		defer mu.Unlock()
		removed = append(removed, id)
	})

	manager.Create("del1", config, service.CreateOptions{Manual: true})
	stale, _ := manager.Create("old1", config, service.CreateOptions{Manual: true})
	manager.Create("new1", config, service.CreateOptions{Manual: true})
	stale.SetLastAccessed(time.Now().Add(-2 * time.Hour))

	if err := manager.Delete("DEL1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	manager.CleanupExpiredSessions(time.Hour)
	manager.Delete("missing")

	mu.Lock()
	defer mu.Unlock()
	if len(removed) != 2 || removed[0] != "del1" || removed[1] != "old1" {
		t.Errorf("Expected [del1 old1] removed, got %v", removed)
	}
}

// stubConfigs satisfies service.ConfigManager without a config directory
type stubConfigs struct{}

func (stubConfigs) LoadConfig(string) (*engine.Config, error)   { return createTestConfig(), nil }
func (stubConfigs) ListConfigs() ([]*service.ConfigInfo, error) { return nil, nil }
func (stubConfigs) GetDefault() *engine.Config                  { return createTestConfig() }
func (stubConfigs) SaveConfig(string, *engine.Config) error     { return nil }

func TestManager_ConcurrentServiceReads(t *testing.T) {
	manager := newTestManager(t)
	svc := service.NewGameService(manager, stubConfigs{})
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "", service.CreateOptions{Manual: true})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				var err error
				if i%2 == 0 {
					_, err = svc.GetSession(ctx, created.ID)
				} else {
					_, err = svc.ListSessions(ctx)
					manager.CleanupExpiredSessions(time.Hour)
				}
				if err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent read failed: %v", err)
	}

	info, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if info.LastAccessedAt.Before(created.LastAccessedAt) {
		t.Error("Expected last accessed time to never move backwards")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := newTestManager(t)
	session, _ := manager.Create("touch", createTestConfig(), service.CreateOptions{})

	before := time.Now().Add(-time.Minute)
	session.SetLastAccessed(before)

	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessed().After(before) {
		t.Error("Expected last accessed time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ListenerReceivesTicks(t *testing.T) {
	manager := newTestManager(t)

	var mu sync.Mutex
	updates := map[string]int{}
	manager.SetListener(func(id string, snap engine.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		updates[id]++
	})

	session, err := manager.Create("live", createTestConfig(), service.CreateOptions{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	err = session.Do(context.Background(), func(e *engine.GameEngine) {
		e.SetDirection(engine.Down)
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	// Heading down from (1,1) on a 6x6 board crashes within five moves
	deadline := time.Now().Add(2 * time.Second)
	for !session.Engine.Snapshot().GameOver {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the realtime session to end")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	// construct, start, four moves and the crash
	if updates["live"] < 6 {
		t.Errorf("Expected at least 6 updates, got %d", updates["live"])
	}
	if session.Engine.Snapshot().Cause != engine.WallCollision {
		t.Errorf("Expected wall collision, got %s", session.Engine.Snapshot().Cause)
	}
}

func TestManager_ManualSessionWaitsForFire(t *testing.T) {
	manager := newTestManager(t)
	session, _ := manager.Create("", createTestConfig(), service.CreateOptions{Manual: true})

	ctx := context.Background()
	session.Do(ctx, func(e *engine.GameEngine) { e.Start() })

	time.Sleep(30 * time.Millisecond)
	if ticks := session.Engine.Snapshot().Ticks; ticks != 0 {
		t.Fatalf("Manual session ticked on its own: %d", ticks)
	}

	var fired bool
	session.Do(ctx, func(e *engine.GameEngine) { fired = session.Manual.Fire() })
	if !fired || session.Engine.Snapshot().Ticks != 1 {
		t.Errorf("Expected one tick after Fire, got %d", session.Engine.Snapshot().Ticks)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			session, err := manager.Create("", config, service.CreateOptions{Manual: true})
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(session.ID); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 100 {
		t.Errorf("Expected 100 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	session1, _ := manager.Create("iso1", config, service.CreateOptions{Manual: true})
	session2, _ := manager.Create("iso2", config, service.CreateOptions{Manual: true})

	ctx := context.Background()
	session1.Do(ctx, func(e *engine.GameEngine) {
		e.Start()
		e.Tick()
	})

	if session2.Engine.Snapshot().Head != (engine.Cell{X: 1, Y: 1}) {
		t.Error("Session 2 should not be affected by session 1 ticks")
	}
	if session1.Engine.Snapshot().Head != (engine.Cell{X: 2, Y: 1}) {
		t.Errorf("Expected session 1 head at (2,1), got %+v", session1.Engine.Snapshot().Head)
	}
}

func TestGenerateSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := generateSessionID()
		if err != nil {
			t.Fatalf("Failed to generate ID: %v", err)
		}
		if len(id) != 4 {
			t.Errorf("Expected 4-character ID, got %q", id)
		}
		seen[id] = true
	}
	if len(seen) < 40 {
		t.Errorf("Expected mostly unique IDs, got %d distinct of 50", len(seen))
	}
}

var _ engine.Scheduler = (*scheduler.Ticker)(nil)
var _ engine.Scheduler = (*scheduler.Manual)(nil)
