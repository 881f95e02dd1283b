package autopilot

import "github.com/wricardo/snake-game/game/engine"

// Strategy picks the next heading: the shortest path to the food when the snake
// keeps enough room after the first step, otherwise the safe move with the most room.
type Strategy struct {
	visitedCells map[engine.Cell]int
}

// NewStrategy creates a strategy with empty visit counts
func NewStrategy() *Strategy {
	return &Strategy{visitedCells: make(map[engine.Cell]int)}
}

// Reset forgets visit counts between games
func (s *Strategy) Reset() {
	s.visitedCells = make(map[engine.Cell]int)
}

// NextMove returns the direction to steer for the next tick; ok is false when every move collides
func (s *Strategy) NextMove(snap engine.Snapshot) (engine.Direction, bool) {
	if len(snap.Snake) == 0 {
		return engine.Direction{}, false
	}
	head := snap.Snake[0]
	s.visitedCells[head]++

	blocked := bodyCells(snap)
	if snap.HasFood {
		path := s.BFS(snap, head, snap.Food)
		if len(path) > 0 && floodArea(snap, head.Add(path[0]), blocked) >= len(snap.Snake) {
			return path[0], true
		}
	}
	return s.exploreMove(snap, blocked)
}

// candidates lists the headings the engine accepts from heading: straight on or a perpendicular turn
func candidates(snap engine.Snapshot) []engine.Direction {
	heading, ok := engine.ParseDirection(snap.Direction)
	if !ok {
		return engine.Directions
	}
	dirs := make([]engine.Direction, 0, 3)
	for _, d := range engine.Directions {
		if d != heading && d.Parallel(heading) {
			continue
		}
		dirs = append(dirs, d)
	}
	return dirs
}

// BFS returns the shortest list of moves from start to goal avoiding the walls and the body.
// The first move is never a reversal.
func (s *Strategy) BFS(snap engine.Snapshot, start, goal engine.Cell) []engine.Direction {
	if start == goal {
		return []engine.Direction{}
	}

	type queueItem struct {
		pos  engine.Cell
		path []engine.Direction
	}

	blocked := bodyCells(snap)
	queue := []queueItem{{pos: start}}
	visited := map[engine.Cell]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		dirs := engine.Directions
		if current.pos == start {
			dirs = candidates(snap)
		}
		for _, dir := range dirs {
			newPos := current.pos.Add(dir)
			if visited[newPos] || !passable(snap, newPos, blocked) {
				continue
			}

			newPath := append([]engine.Direction{}, current.path...)
			newPath = append(newPath, dir)
			if newPos == goal {
				return newPath
			}

			visited[newPos] = true
			queue = append(queue, queueItem{pos: newPos, path: newPath})
		}
	}
	return nil
}

// exploreMove picks the safe move with the largest reachable area, then the least visited cell
func (s *Strategy) exploreMove(snap engine.Snapshot, blocked map[engine.Cell]bool) (engine.Direction, bool) {
	head := snap.Snake[0]

	var best engine.Direction
	bestArea, bestVisits, found := -1, 0, false
	for _, dir := range candidates(snap) {
		next := head.Add(dir)
		if !passable(snap, next, blocked) {
			continue
		}
		area := floodArea(snap, next, blocked)
		visits := s.visitedCells[next]
		if area > bestArea || (area == bestArea && visits < bestVisits) {
			best, bestArea, bestVisits, found = dir, area, visits, true
		}
	}
	return best, found
}

func bodyCells(snap engine.Snapshot) map[engine.Cell]bool {
	blocked := make(map[engine.Cell]bool, len(snap.Snake))
	for _, c := range snap.Snake {
		blocked[c] = true
	}
	return blocked
}

func passable(snap engine.Snapshot, c engine.Cell, blocked map[engine.Cell]bool) bool {
	return engine.InBounds(c, snap.GridSize) && !blocked[c]
}

// floodArea counts the free cells reachable from start, start included
func floodArea(snap engine.Snapshot, start engine.Cell, blocked map[engine.Cell]bool) int {
	if !passable(snap, start, blocked) {
		return 0
	}
	visited := map[engine.Cell]bool{start: true}
	queue := []engine.Cell{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dir := range engine.Directions {
			next := current.Add(dir)
			if visited[next] || !passable(snap, next, blocked) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return len(visited)
}
