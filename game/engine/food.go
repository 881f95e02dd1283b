package engine

import "math/rand"

// PlaceFood picks a uniformly random cell not occupied by snake.
//
// Up to attempts random draws are tried first; when they all land on the snake the
// board is scanned and one of the free cells is chosen. ok is false only when the
// snake covers the whole board.
func PlaceFood(rng *rand.Rand, size int, snake []Cell, attempts int) (food Cell, ok bool) {
	if size <= 0 {
		return Cell{}, false
	}

	occupied := make(map[Cell]struct{}, len(snake))
	for _, c := range snake {
		occupied[c] = struct{}{}
	}
	if len(occupied) >= size*size {
		return Cell{}, false
	}

	for i := 0; i < attempts; i++ {
		c := Cell{X: rng.Intn(size), Y: rng.Intn(size)}
		if _, taken := occupied[c]; !taken {
			return c, true
		}
	}

	free := FreeCells(size, occupied)
	if len(free) == 0 {
		return Cell{}, false
	}
	return free[rng.Intn(len(free))], true
}

// FreeCells lists every board cell not in occupied, row by row
func FreeCells(size int, occupied map[Cell]struct{}) []Cell {
	free := make([]Cell, 0, size*size-len(occupied))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := Cell{X: x, Y: y}
			if _, taken := occupied[c]; taken {
				continue
			}
			free = append(free, c)
		}
	}
	return free
}
