package progression

import (
	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/world"
	gameworld "dungeonforge/pkg/game/world"
)

// gridGate checks a set of locks against the carved grid. Corridors can cross
// other rooms and merge with each other, so a lock that splits the room graph
// may still have a walkable way round it.
type gridGate struct {
	grid    *world.Grid
	visited *world.BitGrid
}

func newGridGate(grid *world.Grid) *gridGate {
	if grid == nil {
		return nil
	}
	return &gridGate{grid: grid, visited: world.NewBitGrid(grid.Width(), grid.Height())}
}

// holds reports whether walling off every locked door cell separates the grid
// exactly as removing the locked connections separates the room graph: two
// rooms that can walk to each other on the grid must share a graph component.
// A lock without a door cell never holds.
func (gg *gridGate) holds(g *gameworld.Graph, rooms []gameworld.Room, conns []gameworld.Connection, locks []Lock) bool {
	shut := make(map[world.Point]bool, len(locks))
	locked := make(map[int]bool, len(locks))
	for _, l := range locks {
		door := conns[l.Connection].Door
		if door == nil {
			return false
		}
		shut[*door] = true
		locked[l.Connection] = true
	}

	component := graphComponents(g, func(conn int) bool { return !locked[conn] })

	gg.visited.Clear()
	w, h := gg.grid.Width(), gg.grid.Height()
	open := func(x, y int) bool {
		return gg.grid.Get(x, y).IsWalkable() && !shut[world.Point{X: x, Y: y}]
	}
	// Rooms are solid floor, so the centre stands for the whole room.
	area := make([]int, len(rooms))
	for i := range area {
		area[i] = -1
	}
	for i, room := range rooms {
		if shut[room.Center()] {
			return false
		}
		if area[i] >= 0 {
			continue
		}
		region.BFSFill(w, h, room.Center(), open, gg.visited)
		for j := i; j < len(rooms); j++ {
			if c := rooms[j].Center(); area[j] < 0 && gg.visited.Get(c.X, c.Y) {
				area[j] = i
				if component[j] != component[i] {
					return false
				}
			}
		}
	}
	return true
}

// graphComponents labels each room index with the smallest index it can reach
// over passable connections.
func graphComponents(g *gameworld.Graph, passable func(conn int) bool) []int {
	component := make([]int, g.Len())
	for i := range component {
		component[i] = -1
	}
	for i := range component {
		if component[i] >= 0 {
			continue
		}
		for j, d := range g.Distances(i, passable) {
			if d >= 0 {
				component[j] = i
			}
		}
	}
	return component
}
