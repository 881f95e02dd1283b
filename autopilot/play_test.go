package autopilot

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/snake-game/api"
	"github.com/wricardo/snake-game/game/config"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/service"
	"github.com/wricardo/snake-game/game/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager("../configs")
	require.NoError(t, err)

	svc := service.NewGameService(session.NewManager(), configs)
	srv := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_CreateSessionIsManual(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	snap, err := client.CreateSession(ctx, "small")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.NotEmpty(t, client.SessionID())
	assert.Equal(t, 9, snap.GridSize)
	assert.Equal(t, engine.NotStarted, snap.Phase)

	result, err := client.Turn(ctx, engine.Up)
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	tick, err := client.Tick(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, tick.TicksExecuted)
	assert.Equal(t, engine.Cell{X: 4, Y: 2}, tick.State.Head)
}

func TestClient_UnknownSession(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)
	client.UseSession("missing")

	_, err := client.State(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPlay_EatsFood(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	_, err := client.CreateSession(ctx, "small")
	require.NoError(t, err)

	result, err := Play(ctx, client, NewStrategy(), Options{MaxTicks: 300})
	require.NoError(t, err)
	assert.Greater(t, result.Score, 0)
	assert.Greater(t, result.Length, 1)
	assert.LessOrEqual(t, result.Ticks, 300)
}

func TestPlay_ResetsFinishedGame(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	_, err := client.CreateSession(ctx, "small")
	require.NoError(t, err)

	// drive straight into the top wall
	_, err = client.Turn(ctx, engine.Up)
	require.NoError(t, err)
	_, err = client.Tick(ctx, 20)
	require.NoError(t, err)
	snap, err := client.State(ctx)
	require.NoError(t, err)
	require.True(t, snap.Phase.Terminal())

	result, err := Play(ctx, client, NewStrategy(), Options{MaxTicks: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Ticks)
	assert.Equal(t, engine.Running, result.Phase)
}
