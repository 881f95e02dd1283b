package terminal

import (
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/snake-game/game/engine"
)

func testConfig() *engine.Config {
	return &engine.Config{
		Name:             "Test",
		GridSize:         5,
		TickIntervalMs:   100,
		FoodReward:       10,
		InitialPosition:  engine.Cell{X: 2, Y: 2},
		InitialDirection: "right",
		MaxFoodAttempts:  16,
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(testConfig(), engine.WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_InvalidConfig(t *testing.T) {
	config := testConfig()
	config.GridSize = 1
	_, err := NewModel(config)
	assert.Error(t, err)
}

func TestModel_FirstTurnStartsGame(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, engine.NotStarted, m.Engine().Phase())
	assert.Nil(t, m.Init())

	_, cmd := m.Update(key("up"))
	require.NotNil(t, cmd, "starting the game issues the first tick")
	assert.Equal(t, engine.Running, m.Engine().Phase())
	assert.True(t, m.Scheduler().Running())

	m.Update(TickMsg{Gen: m.Scheduler().Generation()})
	assert.Equal(t, engine.Cell{X: 2, Y: 1}, m.Engine().Snapshot().Head)
}

func TestModel_WASDAndIgnoredKeys(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("w"))
	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd, "turning while running keeps the current tick chain")

	_, cmd = m.Update(key("x"))
	assert.Nil(t, cmd)

	m.Update(TickMsg{Gen: m.Scheduler().Generation()})
	assert.Equal(t, engine.Cell{X: 2, Y: 3}, m.Engine().Snapshot().Head, "last buffered turn wins")
}

func TestModel_HitsWallAndStops(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("up"))

	for i := 0; i < 3; i++ {
		m.Update(TickMsg{Gen: m.Scheduler().Generation()})
	}
	snap := m.Engine().Snapshot()
	assert.Equal(t, engine.Over, snap.Phase)
	assert.Equal(t, engine.WallCollision, snap.Cause)
	assert.False(t, m.Scheduler().Running())
	assert.Contains(t, m.View(), "Game over: wall collision")
}

func TestModel_ResetRestartsTicking(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("up"))
	stale := TickMsg{Gen: m.Scheduler().Generation()}

	_, cmd := m.Update(key("r"))
	require.NotNil(t, cmd, "reset starts a new tick chain")
	assert.Equal(t, engine.Running, m.Engine().Phase())

	m.Update(stale)
	assert.Equal(t, 0, m.Engine().Snapshot().Ticks, "tick from before the reset is dropped")
}

func TestModel_SpaceStarts(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.NotNil(t, cmd)
	assert.Equal(t, engine.Running, m.Engine().Phase())
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := newTestModel(t)
		m.Update(key("up"))

		_, cmd := m.Update(key(k))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.False(t, m.Scheduler().Running())
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	assert.Contains(t, view, "Test  Score: 0  Length: 1")
	assert.Contains(t, view, "Press an arrow key to start")
	assert.Contains(t, view, "@")
	assert.Contains(t, view, "*")
	assert.Equal(t, 1, strings.Count(view, "@"))

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.GreaterOrEqual(t, strings.Count(m.View(), "\n"), 29)
}
