package generator

import (
	"math"

	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/rng"
	"dungeonforge/pkg/engine/world"
	gameworld "dungeonforge/pkg/game/world"
)

// LPath returns an L-shaped 4-connected path from a to b. When horizontalFirst
// is set the path runs along a's row before turning.
func LPath(a, b world.Point, horizontalFirst bool) []world.Point {
	path := []world.Point{a}
	cur := a
	stepX := func() {
		for cur.X != b.X {
			cur.X += sign(b.X - cur.X)
			path = append(path, cur)
		}
	}
	stepY := func() {
		for cur.Y != b.Y {
			cur.Y += sign(b.Y - cur.Y)
			path = append(path, cur)
		}
	}
	if horizontalFirst {
		stepX()
		stepY()
	} else {
		stepY()
		stepX()
	}
	return path
}

// StraightPath interpolates from a to b, rounding each sample to the nearest
// cell. Diagonal moves are split so consecutive points are always 4-adjacent.
func StraightPath(a, b world.Point) []world.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := max(abs(dx), abs(dy))
	path := []world.Point{a}
	if steps == 0 {
		return path
	}
	prev := a
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		next := world.Point{
			X: a.X + int(math.Round(float64(dx)*t)),
			Y: a.Y + int(math.Round(float64(dy)*t)),
		}
		if next.X != prev.X && next.Y != prev.Y {
			path = append(path, world.Point{X: next.X, Y: prev.Y})
		}
		if next != prev {
			path = append(path, next)
		}
		prev = next
	}
	return path
}

// corridorCost prices cells for A* corridors between rooms a and b: the grid
// border and every other room are blocked, and cells already claimed by
// corridors are cheap so paths merge instead of running side by side.
// roomMask marks every room cell.
func corridorCost(grid *world.Grid, roomMask, claimed *world.BitGrid, a, b world.Rect) region.CostFunc {
	return func(x, y int) int {
		inEnds := a.Contains(x, y) || b.Contains(x, y)
		switch {
		case !grid.IsPlayablePosition(x, y):
			return -1
		case roomMask.Get(x, y) && !inEnds:
			return -1
		case inEnds, claimed.Get(x, y):
			return 1
		default:
			return 2
		}
	}
}

// markRooms sets every room cell in mask
func markRooms(mask *world.BitGrid, rooms []gameworld.Room) {
	for _, r := range rooms {
		for y := r.Rect.Y; y < r.Rect.Bottom(); y++ {
			for x := r.Rect.X; x < r.Rect.Right(); x++ {
				mask.Set(x, y, true)
			}
		}
	}
}

// markPath sets every path cell in mask
func markPath(mask *world.BitGrid, path []world.Point) {
	for _, p := range path {
		mask.Set(p.X, p.Y, true)
	}
}

// doorPosition returns the first path cell outside room, or false when the path never leaves it.
func doorPosition(room world.Rect, path []world.Point) (world.Point, bool) {
	for _, p := range path {
		if !room.ContainsPoint(p) {
			return p, true
		}
	}
	return world.Point{}, false
}

// finishConnection normalises endpoints and records the door cell.
func finishConnection(rooms []gameworld.Room, a, b int, path []world.Point, tags ...string) gameworld.Connection {
	conn := gameworld.NewConnection(rooms[a].ID, rooms[b].ID, path)
	from := rooms[a]
	if from.ID != conn.A {
		from = rooms[b]
	}
	if p, ok := doorPosition(from.Rect, conn.Path); ok {
		conn.Door = &p
	}
	conn.Tags = append(conn.Tags, tags...)
	return conn
}

// rollDoors decides door and secret types for every connection from the connection stream.
func rollDoors(r *rng.Rand, conns []gameworld.Connection, doorP, secretP float64) {
	for i := range conns {
		secret := r.Probability(secretP)
		door := r.Probability(doorP)
		switch {
		case conns[i].Door == nil:
		case secret:
			conns[i].Type = gameworld.Secret
			conns[i].Visible = false
		case door:
			conns[i].Type = gameworld.Door
		}
	}
}

// Carve writes rooms as floor, corridor paths (with a square brush of the given
// width) as corridor wherever rock remains, and door cells for every connection
// that is not a plain corridor. The grid border is never touched. Carving the
// same layout twice leaves the grid unchanged.
func Carve(grid *world.Grid, rooms []gameworld.Room, conns []gameworld.Connection, width int) {
	width = max(width, 1)
	for _, r := range rooms {
		grid.FillRect(r.Rect, world.Floor)
	}
	lo := -(width - 1) / 2
	for _, c := range conns {
		for _, p := range c.Path {
			for dy := lo; dy < lo+width; dy++ {
				for dx := lo; dx < lo+width; dx++ {
					x, y := p.X+dx, p.Y+dy
					if grid.IsPlayablePosition(x, y) && grid.Get(x, y) == world.Wall {
						grid.Set(x, y, world.Corridor)
					}
				}
			}
		}
	}
	for _, c := range conns {
		if c.Type != gameworld.Corridor && c.Door != nil && grid.IsPlayablePosition(c.Door.X, c.Door.Y) {
			grid.SetPoint(*c.Door, world.Door)
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
