// Package region implements flood fill and connected-component analysis over a world.Grid.
package region

import (
	"github.com/zyedidia/generic/queue"

	"dungeonforge/pkg/engine/world"
)

// seed is the first cell of a run on row y that still has to be expanded.
type seed struct {
	x, y int
}

// ScanlineFill collects every cell 4-connected to start whose type equals target.
// visited may be nil; when given it is updated and cells already marked are skipped.
// Each row is extended left and right once, and the rows above and below are scanned
// once per contiguous run rather than once per cell.
func ScanlineFill(grid *world.Grid, start world.Point, target world.CellType, visited *world.BitGrid) []uint32 {
	if !grid.InBounds(start.X, start.Y) || grid.GetPoint(start) != target {
		return nil
	}
	w, h := grid.Width(), grid.Height()
	if visited == nil {
		visited = world.NewBitGrid(w, h)
	}
	if visited.Get(start.X, start.Y) {
		return nil
	}

	match := func(x, y int) bool {
		return grid.Get(x, y) == target && !visited.Get(x, y)
	}

	var points []uint32
	stack := []seed{{start.X, start.Y}}
	// Each processed run pushes at most one seed per neighbouring run, so 4*w*h bounds the pops.
	for iterations := 0; len(stack) > 0 && iterations <= 4*w*h; iterations++ {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x := s.x
		if !match(x, s.y) {
			continue
		}
		left := x
		for left-1 >= 0 && match(left-1, s.y) {
			left--
		}
		right := x
		for right+1 < w && match(right+1, s.y) {
			right++
		}
		for cx := left; cx <= right; cx++ {
			visited.Set(cx, s.y, true)
			points = append(points, world.Pack(cx, s.y, w))
		}
		for _, ny := range [2]int{s.y - 1, s.y + 1} {
			if ny < 0 || ny >= h {
				continue
			}
			inRun := false
			for cx := left; cx <= right; cx++ {
				if match(cx, ny) {
					if !inRun {
						stack = append(stack, seed{cx, ny})
						inRun = true
					}
				} else {
					inRun = false
				}
			}
		}
	}
	return points
}

// BFSFill collects every cell 4-connected to start for which visit returns true.
// The queue holds packed coordinates; visited may be nil and is updated when given.
func BFSFill(width, height int, start world.Point, visit func(x, y int) bool, visited *world.BitGrid) []uint32 {
	if start.X < 0 || start.X >= width || start.Y < 0 || start.Y >= height || !visit(start.X, start.Y) {
		return nil
	}
	if visited == nil {
		visited = world.NewBitGrid(width, height)
	}
	if visited.Get(start.X, start.Y) {
		return nil
	}

	var points []uint32
	q := queue.New[uint32]()
	first := world.Pack(start.X, start.Y, width)
	visited.SetIndex(int(first))
	q.Enqueue(first)

	limit := width * height
	for !q.Empty() && len(points) < limit {
		current := q.Dequeue()
		points = append(points, current)
		cx, cy := world.Unpack(current, width)

		for _, dir := range world.AllDirections() {
			dx, dy := dir.Delta()
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			idx := ny*width + nx
			if visited.GetIndex(idx) || !visit(nx, ny) {
				continue
			}
			visited.SetIndex(idx)
			q.Enqueue(uint32(idx))
		}
	}
	return points
}

// FillType is BFSFill with a "cell equals target" predicate.
func FillType(grid *world.Grid, start world.Point, target world.CellType, visited *world.BitGrid) []uint32 {
	return BFSFill(grid.Width(), grid.Height(), start, func(x, y int) bool {
		return grid.Get(x, y) == target
	}, visited)
}
