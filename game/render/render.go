// Package render draws engine snapshots as plain text for logs, tools and tests.
package render

import (
	"fmt"
	"strings"

	"github.com/wricardo/snake-game/game/engine"
)

// Board symbols
const (
	Empty = '.'
	Food  = 'F'
	Head  = 'H'
	Body  = 'o'
)

// Board returns the snapshot as rows of symbols, row 0 being the top edge
func Board(snap engine.Snapshot) [][]byte {
	size := snap.GridSize
	board := make([][]byte, size)
	for y := 0; y < size; y++ {
		board[y] = make([]byte, size)
		for x := 0; x < size; x++ {
			board[y][x] = Empty
		}
	}

	if snap.HasFood && engine.InBounds(snap.Food, size) {
		board[snap.Food.Y][snap.Food.X] = Food
	}

	// draw tail first so the head wins if cells ever overlap
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		c := snap.Snake[i]
		if !engine.InBounds(c, size) {
			continue
		}
		if i == 0 {
			board[c.Y][c.X] = Head
		} else {
			board[c.Y][c.X] = Body
		}
	}
	return board
}

// Grid returns the board as one string per row
func Grid(snap engine.Snapshot) []string {
	board := Board(snap)
	rows := make([]string, len(board))
	for y, row := range board {
		rows[y] = string(row)
	}
	return rows
}

// Header summarises score, phase, heading and tick count on one line
func Header(snap engine.Snapshot) string {
	header := fmt.Sprintf("Score: %d | Length: %d | Phase: %s | Heading: %s | Tick: %d",
		snap.Score, snap.Length, snap.Phase, snap.Direction, snap.Ticks)
	if snap.Cause != engine.NoCollision {
		header += fmt.Sprintf(" | Hit: %s", snap.Cause)
	}
	return header
}

// Text renders the header followed by the grid
func Text(snap engine.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(Header(snap))
	sb.WriteByte('\n')
	for _, row := range Grid(snap) {
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}
