package autopilot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/snake-game/game/engine"
)

func snapshot(size int, heading engine.Direction, food *engine.Cell, snake ...engine.Cell) engine.Snapshot {
	snap := engine.Snapshot{
		GridSize:  size,
		Snake:     snake,
		Head:      snake[0],
		Phase:     engine.Running,
		Direction: heading.String(),
		Length:    len(snake),
	}
	if food != nil {
		snap.Food, snap.HasFood = *food, true
	}
	return snap
}

func TestBFS_StraightLine(t *testing.T) {
	food := engine.Cell{X: 3, Y: 2}
	snap := snapshot(5, engine.Right, &food, engine.Cell{X: 1, Y: 2})

	path := NewStrategy().BFS(snap, snap.Head, food)
	assert.Equal(t, []engine.Direction{engine.Right, engine.Right}, path)
}

func TestBFS_FirstMoveNeverReverses(t *testing.T) {
	food := engine.Cell{X: 4, Y: 2}
	snap := snapshot(5, engine.Left, &food, engine.Cell{X: 2, Y: 2}, engine.Cell{X: 3, Y: 2})

	path := NewStrategy().BFS(snap, snap.Head, food)
	require.Len(t, path, 4)
	assert.NotEqual(t, engine.Right, path[0])
}

func TestBFS_Unreachable(t *testing.T) {
	// food sealed in the corner by the body
	food := engine.Cell{X: 0, Y: 0}
	snap := snapshot(4, engine.Down, &food,
		engine.Cell{X: 2, Y: 2}, engine.Cell{X: 2, Y: 1}, engine.Cell{X: 1, Y: 1},
		engine.Cell{X: 1, Y: 0}, engine.Cell{X: 0, Y: 1})

	assert.Nil(t, NewStrategy().BFS(snap, snap.Head, food))
}

func TestNextMove_FollowsPathToFood(t *testing.T) {
	food := engine.Cell{X: 2, Y: 0}
	snap := snapshot(5, engine.Right, &food, engine.Cell{X: 2, Y: 2})

	dir, ok := NewStrategy().NextMove(snap)
	require.True(t, ok)
	assert.Equal(t, engine.Up, dir)
}

func TestNextMove_OnlySafeMove(t *testing.T) {
	snap := snapshot(3, engine.Up, nil, engine.Cell{X: 0, Y: 0})

	dir, ok := NewStrategy().NextMove(snap)
	require.True(t, ok)
	assert.Equal(t, engine.Right, dir)
}

func TestNextMove_PrefersLargerArea(t *testing.T) {
	// the body walls off row 0, so up leaves 5 cells and down leaves 15
	snap := snapshot(5, engine.Left, nil,
		engine.Cell{X: 0, Y: 1}, engine.Cell{X: 1, Y: 1}, engine.Cell{X: 2, Y: 1},
		engine.Cell{X: 3, Y: 1}, engine.Cell{X: 4, Y: 1})

	dir, ok := NewStrategy().NextMove(snap)
	require.True(t, ok)
	assert.Equal(t, engine.Down, dir)
}

func TestNextMove_Boxed(t *testing.T) {
	snap := snapshot(3, engine.Up, nil,
		engine.Cell{X: 0, Y: 0}, engine.Cell{X: 0, Y: 1}, engine.Cell{X: 1, Y: 1}, engine.Cell{X: 1, Y: 0})

	_, ok := NewStrategy().NextMove(snap)
	assert.False(t, ok)
}

func TestFloodArea(t *testing.T) {
	snap := snapshot(3, engine.Right, nil, engine.Cell{X: 1, Y: 0}, engine.Cell{X: 1, Y: 1}, engine.Cell{X: 1, Y: 2})
	blocked := bodyCells(snap)

	assert.Equal(t, 3, floodArea(snap, engine.Cell{X: 0, Y: 0}, blocked))
	assert.Equal(t, 0, floodArea(snap, engine.Cell{X: 1, Y: 1}, blocked))
	assert.Equal(t, 0, floodArea(snap, engine.Cell{X: -1, Y: 0}, blocked))
}
