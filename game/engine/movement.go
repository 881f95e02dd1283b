package engine

// InBounds reports whether c lies on a size x size board
func InBounds(c Cell, size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Collision tests next against the walls and the current body.
// The tail counts as occupied: it is only vacated after the move is accepted.
func (gs *GameState) Collision(next Cell) CollisionCause {
	if !InBounds(next, gs.GridSize) {
		return WallCollision
	}
	for _, seg := range gs.Snake {
		if seg == next {
			return SelfCollision
		}
	}
	return NoCollision
}

// Occupies reports whether c is part of the snake
func (gs *GameState) Occupies(c Cell) bool {
	for _, seg := range gs.Snake {
		if seg == c {
			return true
		}
	}
	return false
}

// Head returns the first snake cell
func (gs *GameState) Head() Cell {
	return gs.Snake[0]
}

// advance pushes next onto the front of the snake and pops the tail unless grow is set.
func (gs *GameState) advance(next Cell, grow bool) {
	gs.Snake = append(gs.Snake, Cell{})
	copy(gs.Snake[1:], gs.Snake)
	gs.Snake[0] = next
	if !grow {
		gs.Snake = gs.Snake[:len(gs.Snake)-1]
	}
}

// Snapshot copies the state into an immutable Snapshot
func (gs *GameState) Snapshot() Snapshot {
	body := make([]Cell, len(gs.Snake))
	copy(body, gs.Snake)

	snap := Snapshot{
		GridSize:  gs.GridSize,
		Snake:     body,
		Food:      gs.Food,
		HasFood:   gs.HasFood,
		Score:     gs.Score,
		Phase:     gs.Phase,
		Direction: gs.Heading.String(),
		Ticks:     gs.Ticks,
		GameOver:  gs.Phase.Terminal(),
		Cause:     gs.Cause,
		Length:    len(body),
	}
	if len(body) > 0 {
		snap.Head = body[0]
	}
	return snap
}
