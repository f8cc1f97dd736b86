package generator

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/rng"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
)

// bspNode is one partition in the tree arena. Children are addressed by index.
type bspNode struct {
	rect        world.Rect
	depth       int
	left, right int  // child indices, -1 for a leaf
	horizontal  bool // split by a horizontal line into top and bottom halves
	room        int  // room index, -1 when the leaf holds no room
}

func newLeaf(rect world.Rect, depth int) bspNode {
	return bspNode{rect: rect, depth: depth, left: -1, right: -1, room: -1}
}

func (n *bspNode) isLeaf() bool {
	return n.left < 0
}

// BSPGenerator lays out rooms with binary space partitioning: partition the
// interior, place at most one room per leaf, then connect sibling subtrees.
type BSPGenerator struct {
	nodes []bspNode

	padding      int
	minPartition int
	maxDepth     int
}

// NewBSP returns a generator for one run
func NewBSP() *BSPGenerator {
	return &BSPGenerator{}
}

// Algorithm returns config.AlgorithmBSP
func (g *BSPGenerator) Algorithm() config.Algorithm {
	return config.AlgorithmBSP
}

// Steps returns the partition, place, connect and carve phases
func (g *BSPGenerator) Steps() []Step {
	return []Step{
		{Name: "partition", Run: g.partition},
		{Name: "place", Run: g.place},
		{Name: "connect", Run: g.connect},
		{Name: "carve", Run: g.carve},
	}
}

// minPadding is the smallest leaf padding that still keeps rooms in
// neighbouring leaves the configured spacing apart.
func minPadding(cfg config.Config) int {
	return (cfg.Spacing + 1) / 2
}

func (g *BSPGenerator) resolve(cfg config.Config) {
	g.padding = max(cfg.BSP.Padding, minPadding(cfg))
	g.minPartition = cfg.BSP.MinPartitionSize
	if g.minPartition == 0 {
		g.minPartition = cfg.RoomSize.Min + 2*g.padding
	}
	g.minPartition = max(g.minPartition, 1)
	g.maxDepth = cfg.BSP.MaxDepth
	if g.maxDepth == 0 {
		g.maxDepth = bits.Len(uint(cfg.RoomCount)) + 1
	}
}

func (g *BSPGenerator) partition(ctx *Context) error {
	g.resolve(ctx.Config)
	w, h := ctx.Grid.Width(), ctx.Grid.Height()
	// Leave the outer ring of the grid as wall
	g.nodes = append(g.nodes[:0], newLeaf(world.Rect{X: 1, Y: 1, Width: w - 2, Height: h - 2}, 0))

	r := ctx.Streams.Layout
	// Children are appended behind their parent, so one forward pass visits
	// every node and the loop ends once no leaf can split further.
	for i := 0; i < len(g.nodes); i++ {
		n := g.nodes[i]
		if n.depth >= g.maxDepth {
			continue
		}
		horizontal, ok := g.chooseSplit(n.rect, r)
		if !ok {
			continue
		}
		length := n.rect.Width
		if horizontal {
			length = n.rect.Height
		}
		a, b := splitRect(n.rect, horizontal, r.Range(g.minPartition, length-g.minPartition))
		left := len(g.nodes)
		g.nodes = append(g.nodes, newLeaf(a, n.depth+1), newLeaf(b, n.depth+1))
		g.nodes[i].left, g.nodes[i].right, g.nodes[i].horizontal = left, left+1, horizontal
	}
	g.checkTree()
	return nil
}

// chooseSplit prefers cutting across the longer side and falls back to the
// other axis. ok is false when neither axis leaves two children of at least
// minPartition cells.
func (g *BSPGenerator) chooseSplit(rect world.Rect, r *rng.Rand) (horizontal, ok bool) {
	canH := rect.Height >= 2*g.minPartition
	canV := rect.Width >= 2*g.minPartition
	if !canH && !canV {
		return false, false
	}
	var preferH bool
	switch {
	case rect.Height > rect.Width:
		preferH = true
	case rect.Width > rect.Height:
		preferH = false
	default:
		preferH = r.Bool()
	}
	if preferH {
		return canH, true
	}
	return !canV, true
}

func splitRect(rect world.Rect, horizontal bool, at int) (world.Rect, world.Rect) {
	if horizontal {
		return world.Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: at},
			world.Rect{X: rect.X, Y: rect.Y + at, Width: rect.Width, Height: rect.Height - at}
	}
	return world.Rect{X: rect.X, Y: rect.Y, Width: at, Height: rect.Height},
		world.Rect{X: rect.X + at, Y: rect.Y, Width: rect.Width - at, Height: rect.Height}
}

// checkTree panics if the arena is not a proper partition: every internal node
// has two children that exactly tile it.
func (g *BSPGenerator) checkTree() {
	for i, n := range g.nodes {
		if n.isLeaf() {
			if n.right >= 0 {
				panic(fmt.Sprintf("bsp: leaf %d has a right child", i))
			}
			continue
		}
		if n.left <= i || n.right != n.left+1 || n.right >= len(g.nodes) {
			panic(fmt.Sprintf("bsp: node %d has bad children %d,%d", i, n.left, n.right))
		}
		a, b := g.nodes[n.left].rect, g.nodes[n.right].rect
		if a.Intersects(b) || a.Area()+b.Area() != n.rect.Area() ||
			a.Empty() || b.Empty() ||
			a.X < n.rect.X || a.Y < n.rect.Y || b.Right() > n.rect.Right() || b.Bottom() > n.rect.Bottom() {
			panic(fmt.Sprintf("bsp: children of node %d do not tile %+v", i, n.rect))
		}
	}
}

func (g *BSPGenerator) place(ctx *Context) error {
	cfg := ctx.Config
	r := ctx.Streams.Rooms

	var leaves []int
	for i := range g.nodes {
		if g.nodes[i].isLeaf() {
			leaves = append(leaves, i)
		}
	}
	// More leaves than rooms: pick which leaves stay empty at random
	if len(leaves) > cfg.RoomCount {
		r.Shuffle(len(leaves), func(i, j int) {
			leaves[i], leaves[j] = leaves[j], leaves[i]
		})
	}

	type placement struct {
		node int
		rect world.Rect
	}
	var chosen []placement
	for _, li := range leaves {
		if len(chosen) == cfg.RoomCount {
			break
		}
		if rect, ok := g.roomIn(g.nodes[li].rect, cfg, r); ok {
			chosen = append(chosen, placement{node: li, rect: rect})
		}
	}
	if len(chosen) == 0 {
		// No leaf could hold a room; a lone room needs no spacing from anything.
		if rect, ok := fitRoom(g.nodes[0].rect, 0, cfg, r); ok {
			chosen = append(chosen, placement{node: -1, rect: rect})
		}
	}

	// Ids follow arena order so they do not depend on the shuffle
	slices.SortFunc(chosen, func(a, b placement) int { return cmp.Compare(a.node, b.node) })
	for _, p := range chosen {
		idx := ctx.addRoom(p.rect)
		if p.node >= 0 {
			g.nodes[p.node].room = idx
		}
	}
	return nil
}

// roomIn sizes a room for a leaf, retrying with the minimum padding when the
// configured padding leaves too little space.
func (g *BSPGenerator) roomIn(leaf world.Rect, cfg config.Config, r *rng.Rand) (world.Rect, bool) {
	if rect, ok := fitRoom(leaf, g.padding, cfg, r); ok {
		return rect, true
	}
	if pad := minPadding(cfg); pad < g.padding {
		return fitRoom(leaf, pad, cfg, r)
	}
	return world.Rect{}, false
}

// fitRoom places a room inside area shrunk by padding. Each side is a random
// ratio of the available space, clamped to the configured size range.
func fitRoom(area world.Rect, padding int, cfg config.Config, r *rng.Rand) (world.Rect, bool) {
	inner := world.Rect{
		X:      area.X + padding,
		Y:      area.Y + padding,
		Width:  area.Width - 2*padding,
		Height: area.Height - 2*padding,
	}
	if inner.Width < cfg.RoomSize.Min || inner.Height < cfg.RoomSize.Min {
		return world.Rect{}, false
	}
	w := roomSide(inner.Width, r.Float(cfg.BSP.MinRatio, cfg.BSP.MaxRatio), cfg.RoomSize)
	h := roomSide(inner.Height, r.Float(cfg.BSP.MinRatio, cfg.BSP.MaxRatio), cfg.RoomSize)
	return world.Rect{
		X:      inner.X + r.Range(0, inner.Width-w),
		Y:      inner.Y + r.Range(0, inner.Height-h),
		Width:  w,
		Height: h,
	}, true
}

func roomSide(space int, ratio float64, size config.SizeRange) int {
	side := int(math.Round(float64(space) * ratio))
	return max(size.Min, min(side, size.Max, space))
}

func (g *BSPGenerator) connect(ctx *Context) error {
	w, h := ctx.Grid.Width(), ctx.Grid.Height()
	claimed := ctx.Pool.Acquire(w, h)
	defer ctx.Pool.Release(claimed)
	roomMask := ctx.Pool.Acquire(w, h)
	defer ctx.Pool.Release(roomMask)
	markRooms(roomMask, ctx.Rooms)

	// Children sit at higher indices than their parent, so walking the arena
	// backwards handles both subtrees before the node joining them.
	members := make([][]int, len(g.nodes))
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		if n.isLeaf() {
			if n.room >= 0 {
				members[i] = []int{n.room}
			}
			continue
		}
		left, right := members[n.left], members[n.right]
		if len(left) > 0 && len(right) > 0 {
			a, b := closestPair(ctx, left, right)
			g.link(ctx, a, b, claimed, roomMask)
		}
		members[i] = slices.Concat(left, right)
		members[n.left], members[n.right] = nil, nil
	}

	g.addExtraConnections(ctx, claimed, roomMask)
	opts := ctx.Config.BSP
	rollDoors(ctx.Streams.Connections, ctx.Connections, opts.DoorProbability, opts.SecretProbability)
	return nil
}

// closestPair returns the pair of rooms, one from each side, with the nearest
// centres. The first pair found wins ties.
func closestPair(ctx *Context, left, right []int) (int, int) {
	bestA, bestB, bestD := -1, -1, math.MaxInt
	for _, a := range left {
		ca := ctx.Rooms[a].Center()
		for _, b := range right {
			if d := ca.DistanceSquared(ctx.Rooms[b].Center()); d < bestD {
				bestA, bestB, bestD = a, b, d
			}
		}
	}
	return bestA, bestB
}

func (g *BSPGenerator) link(ctx *Context, a, b int, claimed, roomMask *world.BitGrid, tags ...string) {
	path := g.corridor(ctx, a, b, claimed, roomMask)
	markPath(claimed, path)
	ctx.Connections = append(ctx.Connections, finishConnection(ctx.Rooms, a, b, path, tags...))
}

// corridor shapes the path between two room centres. A* falls back to an L
// when the search finds nothing.
func (g *BSPGenerator) corridor(ctx *Context, a, b int, claimed, roomMask *world.BitGrid) []world.Point {
	from, to := ctx.Rooms[a].Center(), ctx.Rooms[b].Center()
	switch ctx.Config.BSP.Corridor {
	case config.CorridorStraight:
		return StraightPath(from, to)
	case config.CorridorAStar:
		cost := corridorCost(ctx.Grid, roomMask, claimed, ctx.Rooms[a].Rect, ctx.Rooms[b].Rect)
		if path, ok := region.ShortestPath(ctx.Grid.Width(), ctx.Grid.Height(), from, to, cost, 0); ok {
			return path
		}
	}
	return LPath(from, to, ctx.Streams.Connections.Bool())
}

// addExtraConnections adds loops between the globally closest rooms that are
// not yet directly connected.
func (g *BSPGenerator) addExtraConnections(ctx *Context, claimed, roomMask *world.BitGrid) {
	extra := ctx.Config.BSP.ExtraConnections
	n := len(ctx.Rooms)
	if extra == 0 || n < 3 {
		return
	}

	type pair struct{ a, b, dist int }
	linked := make(map[[2]int]bool, len(ctx.Connections))
	degree := make([]int, n)
	for _, c := range ctx.Connections {
		linked[[2]int{c.A, c.B}] = true
		degree[c.A]++
		degree[c.B]++
	}
	var pairs []pair
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if !linked[[2]int{a, b}] {
				pairs = append(pairs, pair{a, b, ctx.Rooms[a].Center().DistanceSquared(ctx.Rooms[b].Center())})
			}
		}
	}
	slices.SortFunc(pairs, func(x, y pair) int {
		return cmp.Or(cmp.Compare(x.dist, y.dist), cmp.Compare(x.a, y.a), cmp.Compare(x.b, y.b))
	})

	added := 0
	for _, p := range pairs {
		if added == extra {
			break
		}
		// Both rooms must keep a neighbour even if this edge were dropped later
		if degree[p.a] == 0 || degree[p.b] == 0 {
			continue
		}
		g.link(ctx, p.a, p.b, claimed, roomMask, "extra")
		degree[p.a]++
		degree[p.b]++
		added++
	}
}

func (g *BSPGenerator) carve(ctx *Context) error {
	ctx.CorridorWidth = max(ctx.Config.BSP.CorridorWidth, 1)
	Carve(ctx.Grid, ctx.Rooms, ctx.Connections, ctx.CorridorWidth)
	return nil
}
