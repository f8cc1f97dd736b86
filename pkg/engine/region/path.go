package region

import (
	"github.com/zyedidia/generic/heap"

	"dungeonforge/pkg/engine/world"
)

// CostFunc returns the cost (>= 1) of stepping onto (x, y), or a negative value if the cell is blocked.
type CostFunc func(x, y int) int

type pathNode struct {
	idx int
	f   int
	seq int
}

// ShortestPath runs A* with a Manhattan heuristic over 4-connected cells.
// It gives up after maxExpansions node expansions (0 means width*height).
// The returned path starts at from and ends at to. Ties are broken by insertion
// order, so equal inputs always yield the same path.
func ShortestPath(width, height int, from, to world.Point, cost CostFunc, maxExpansions int) ([]world.Point, bool) {
	inside := func(p world.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
	}
	if !inside(from) || !inside(to) {
		return nil, false
	}
	if from == to {
		return []world.Point{from}, true
	}
	if cost(to.X, to.Y) < 0 {
		return nil, false
	}
	if maxExpansions <= 0 {
		maxExpansions = width * height
	}

	n := width * height
	gScore := make([]int, n)
	cameFrom := make([]int32, n)
	closed := world.NewBitGrid(width, height)
	for i := range gScore {
		gScore[i] = -1
		cameFrom[i] = -1
	}

	open := heap.New[pathNode](func(a, b pathNode) bool {
		if a.f != b.f {
			return a.f < b.f
		}
		return a.seq < b.seq
	})
	seq := 0
	start := from.Y*width + from.X
	goal := to.Y*width + to.X
	gScore[start] = 0
	open.Push(pathNode{idx: start, f: from.Manhattan(to), seq: seq})

	for expansions := 0; expansions < maxExpansions; expansions++ {
		current, ok := open.Pop()
		if !ok {
			return nil, false
		}
		if closed.GetIndex(current.idx) {
			continue
		}
		if current.idx == goal {
			return rebuildPath(cameFrom, goal, width), true
		}
		closed.SetIndex(current.idx)
		cx, cy := current.idx%width, current.idx/width

		for _, dir := range world.AllDirections() {
			dx, dy := dir.Delta()
			next := world.Point{X: cx + dx, Y: cy + dy}
			if !inside(next) {
				continue
			}
			ni := next.Y*width + next.X
			if closed.GetIndex(ni) {
				continue
			}
			step := cost(next.X, next.Y)
			if step < 0 {
				continue
			}
			if step == 0 {
				step = 1
			}
			tentative := gScore[current.idx] + step
			if gScore[ni] >= 0 && tentative >= gScore[ni] {
				continue
			}
			gScore[ni] = tentative
			cameFrom[ni] = int32(current.idx)
			seq++
			open.Push(pathNode{idx: ni, f: tentative + next.Manhattan(to), seq: seq})
		}
	}
	return nil, false
}

func rebuildPath(cameFrom []int32, goal, width int) []world.Point {
	var reversed []world.Point
	for i := goal; i >= 0; i = int(cameFrom[i]) {
		reversed = append(reversed, world.Point{X: i % width, Y: i / width})
		if len(reversed) > len(cameFrom) {
			panic("region: cycle in A* parent chain")
		}
	}
	path := make([]world.Point, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path
}
