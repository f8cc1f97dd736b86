package generator

import (
	"cmp"
	"math"
	"slices"

	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
)

// placementAttempts bounds room placement tries per requested room
const placementAttempts = 40

// CellularGenerator grows caves by smoothing random noise, then places rooms
// inside the caverns and links them along a spanning tree of room centres.
type CellularGenerator struct {
	caverns  []*region.Region
	cavernOf []int // per room: index into caverns, -1 when placed outside any cavern
}

// NewCellular returns a generator for one run
func NewCellular() *CellularGenerator {
	return &CellularGenerator{}
}

// Algorithm returns config.AlgorithmCellular
func (g *CellularGenerator) Algorithm() config.Algorithm {
	return config.AlgorithmCellular
}

// Steps returns the noise, smooth, regions, place, connect and carve phases
func (g *CellularGenerator) Steps() []Step {
	return []Step{
		{Name: "noise", Run: g.noise},
		{Name: "smooth", Run: g.smooth},
		{Name: "regions", Run: g.regions},
		{Name: "place", Run: g.place},
		{Name: "connect", Run: g.connect},
		{Name: "carve", Run: g.carve},
	}
}

func (g *CellularGenerator) noise(ctx *Context) error {
	grid := ctx.Grid
	r := ctx.Streams.Layout
	p := ctx.Config.Cellular.FillProbability
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if !grid.IsPlayablePosition(x, y) || r.Probability(p) {
				grid.Set(x, y, world.Wall)
			} else {
				grid.Set(x, y, world.Floor)
			}
		}
	}
	return nil
}

// smooth applies the birth/death rule into a second buffer and swaps, so every
// cell of one iteration sees the previous generation only.
func (g *CellularGenerator) smooth(ctx *Context) error {
	opts := ctx.Config.Cellular
	src := ctx.Grid
	dst := src.Clone()
	for i := 0; i < opts.Iterations; i++ {
		for y := 0; y < src.Height(); y++ {
			for x := 0; x < src.Width(); x++ {
				if !src.IsPlayablePosition(x, y) {
					dst.Set(x, y, world.Wall)
					continue
				}
				walls := src.CountNeighbors(x, y, world.Wall)
				switch {
				case walls >= opts.BirthLimit:
					dst.Set(x, y, world.Wall)
				case walls < opts.DeathLimit:
					dst.Set(x, y, world.Floor)
				default:
					dst.Set(x, y, src.Get(x, y))
				}
			}
		}
		src, dst = dst, src
	}
	if src != ctx.Grid {
		ctx.Grid.CopyFrom(src)
	}
	return nil
}

// regions keeps floor regions of at least MinCavernSize cells as caverns,
// largest first, and fills the smaller pockets back in.
func (g *CellularGenerator) regions(ctx *Context) error {
	minSize := ctx.Config.Cellular.MinCavernSize
	g.caverns = g.caverns[:0]
	for _, reg := range ctx.Finder.FindRegions(ctx.Grid, world.Floor) {
		if reg.Size() >= minSize {
			g.caverns = append(g.caverns, reg)
			continue
		}
		reg.Each(func(p world.Point) {
			ctx.Grid.SetPoint(p, world.Wall)
		})
	}
	slices.SortStableFunc(g.caverns, func(a, b *region.Region) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	return nil
}

// place drops rooms centred on random cavern cells, visiting caverns round
// robin. A room must sit inside the grid interior, keep its spacing from other
// rooms, and be at least half floor.
func (g *CellularGenerator) place(ctx *Context) error {
	cfg := ctx.Config
	grid := ctx.Grid
	r := ctx.Streams.Rooms
	w, h := grid.Width(), grid.Height()
	maxSide := min(cfg.RoomSize.Max, w-2, h-2)
	if maxSide < cfg.RoomSize.Min {
		return nil
	}

	for i := 0; i < cfg.RoomCount*placementAttempts && len(ctx.Rooms) < cfg.RoomCount; i++ {
		rw := r.Range(cfg.RoomSize.Min, maxSide)
		rh := r.Range(cfg.RoomSize.Min, maxSide)
		cavern := -1
		var rect world.Rect
		if len(g.caverns) > 0 {
			cavern = i % len(g.caverns)
			c := g.caverns[cavern]
			anchor := c.Point(r.Intn(c.Size()))
			rect = world.Rect{X: anchor.X - rw/2, Y: anchor.Y - rh/2, Width: rw, Height: rh}
		} else {
			rect = world.Rect{X: r.Range(1, w-1-rw), Y: r.Range(1, h-1-rh), Width: rw, Height: rh}
		}
		if !insideInterior(rect, w, h) || ctx.overlapsRoom(rect) {
			continue
		}
		if cavern >= 0 && 2*floorCells(grid, rect) < rect.Area() {
			continue
		}
		ctx.addRoom(rect)
		g.cavernOf = append(g.cavernOf, cavern)
	}

	if len(ctx.Rooms) == 0 {
		g.placeFallback(ctx)
	}
	return nil
}

// placeFallback puts one minimum-size room on the largest cavern's centroid,
// or the grid centre when there are no caverns.
func (g *CellularGenerator) placeFallback(ctx *Context) {
	w, h := ctx.Grid.Width(), ctx.Grid.Height()
	side := ctx.Config.RoomSize.Min
	cx, cy := ctx.Grid.CenterPosition()
	centre := world.Pt(cx, cy)
	cavern := -1
	if largest := region.FindLargestRegion(g.caverns); largest != nil {
		centre = largest.Centroid()
		cavern = slices.Index(g.caverns, largest)
	}
	rect := world.Rect{X: centre.X - side/2, Y: centre.Y - side/2, Width: side, Height: side}
	// Slide the room back inside the interior
	rect.X = max(1, min(rect.X, w-1-side))
	rect.Y = max(1, min(rect.Y, h-1-side))
	if insideInterior(rect, w, h) {
		ctx.addRoom(rect)
		g.cavernOf = append(g.cavernOf, cavern)
	}
}

func insideInterior(r world.Rect, w, h int) bool {
	return r.X >= 1 && r.Y >= 1 && r.Right() <= w-1 && r.Bottom() <= h-1
}

func floorCells(grid *world.Grid, r world.Rect) int {
	n := 0
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if grid.Get(x, y) == world.Floor {
				n++
			}
		}
	}
	return n
}

// connect links rooms along a Prim spanning tree over their centres. Rooms in
// the same cavern are joined by a path through the cave floor; everything else
// gets a tunnel.
func (g *CellularGenerator) connect(ctx *Context) error {
	n := len(ctx.Rooms)
	if n < 2 {
		return nil
	}
	w, h := ctx.Grid.Width(), ctx.Grid.Height()
	roomMask := ctx.Pool.Acquire(w, h)
	defer ctx.Pool.Release(roomMask)
	markRooms(roomMask, ctx.Rooms)

	for _, e := range spanningTree(ctx) {
		a, b := e[0], e[1]
		if g.cavernOf[a] >= 0 && g.cavernOf[a] == g.cavernOf[b] {
			cost := func(x, y int) int {
				if ctx.Grid.Get(x, y).IsWalkable() || roomMask.Get(x, y) {
					return 1
				}
				return -1
			}
			from, to := ctx.Rooms[a].Center(), ctx.Rooms[b].Center()
			if path, ok := region.ShortestPath(w, h, from, to, cost, 0); ok {
				ctx.Connections = append(ctx.Connections, finishConnection(ctx.Rooms, a, b, path, "cavern"))
				continue
			}
		}
		path := LPath(ctx.Rooms[a].Center(), ctx.Rooms[b].Center(), ctx.Streams.Connections.Bool())
		ctx.Connections = append(ctx.Connections, finishConnection(ctx.Rooms, a, b, path, "tunnel"))
	}
	return nil
}

// spanningTree returns Prim's minimum spanning tree over room centres as
// (parent, child) index pairs in the order rooms join the tree. Ties go to the
// lowest room index.
func spanningTree(ctx *Context) [][2]int {
	n := len(ctx.Rooms)
	inTree := make([]bool, n)
	best := make([]int, n)
	parent := make([]int, n)
	inTree[0] = true
	for i := 1; i < n; i++ {
		best[i] = ctx.Rooms[0].Center().DistanceSquared(ctx.Rooms[i].Center())
	}

	edges := make([][2]int, 0, n-1)
	for len(edges) < n-1 {
		next, nextD := -1, math.MaxInt
		for i := 0; i < n; i++ {
			if !inTree[i] && best[i] < nextD {
				next, nextD = i, best[i]
			}
		}
		inTree[next] = true
		edges = append(edges, [2]int{parent[next], next})
		c := ctx.Rooms[next].Center()
		for i := 0; i < n; i++ {
			if inTree[i] {
				continue
			}
			if d := c.DistanceSquared(ctx.Rooms[i].Center()); d < best[i] {
				best[i], parent[i] = d, next
			}
		}
	}
	return edges
}

func (g *CellularGenerator) carve(ctx *Context) error {
	ctx.CorridorWidth = 1
	Carve(ctx.Grid, ctx.Rooms, ctx.Connections, ctx.CorridorWidth)
	return nil
}
