package region

import (
	"slices"

	"dungeonforge/pkg/engine/world"
)

// Region is a maximal 4-connected set of cells sharing one type.
// Regions are immutable once returned; callers must not modify Points.
type Region struct {
	ID     int
	Type   world.CellType
	Bounds world.Rect
	// Points holds packed coordinates (world.Pack with the grid width), sorted ascending.
	Points []uint32

	stride int
}

func newRegion(id int, t world.CellType, points []uint32, stride int) *Region {
	slices.Sort(points)
	minX, minY := stride, int(^uint(0)>>1)
	maxX, maxY := -1, -1
	for _, p := range points {
		x, y := world.Unpack(p, stride)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	return &Region{
		ID:     id,
		Type:   t,
		Bounds: world.Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1},
		Points: points,
		stride: stride,
	}
}

// Size returns the number of cells in the region
func (r *Region) Size() int {
	return len(r.Points)
}

// Contains returns true if the point belongs to the region
func (r *Region) Contains(p world.Point) bool {
	if !r.Bounds.ContainsPoint(p) {
		return false
	}
	_, found := slices.BinarySearch(r.Points, world.Pack(p.X, p.Y, r.stride))
	return found
}

// Point returns the i-th cell of the region in row-major order
func (r *Region) Point(i int) world.Point {
	x, y := world.Unpack(r.Points[i], r.stride)
	return world.Point{X: x, Y: y}
}

// Each calls fn for every cell in row-major order
func (r *Region) Each(fn func(p world.Point)) {
	for i := range r.Points {
		fn(r.Point(i))
	}
}

// Centroid returns the region cell closest to the mean of its cells.
// Ties are resolved by row-major order.
func (r *Region) Centroid() world.Point {
	if len(r.Points) == 0 {
		return world.Point{}
	}
	sx, sy := 0, 0
	r.Each(func(p world.Point) {
		sx += p.X
		sy += p.Y
	})
	mean := world.Point{X: sx / len(r.Points), Y: sy / len(r.Points)}
	best := r.Point(0)
	bestDist := best.DistanceSquared(mean)
	for i := 1; i < len(r.Points); i++ {
		p := r.Point(i)
		if d := p.DistanceSquared(mean); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// Method selects the flood-fill algorithm used by a Finder.
type Method int

const (
	// Scanline fills whole row runs at a time.
	Scanline Method = iota
	// BFS fills one cell at a time from a FIFO queue.
	BFS
)

// Finder extracts regions from a grid. The zero value uses scanline fill and no pool.
type Finder struct {
	Pool   *world.BitGridPool
	Method Method
}

func (f Finder) fill(grid *world.Grid, start world.Point, target world.CellType, visited *world.BitGrid) []uint32 {
	if f.Method == BFS {
		return FillType(grid, start, target, visited)
	}
	return ScanlineFill(grid, start, target, visited)
}

// FindRegions returns one region per connected component of cells of type target,
// in row-major discovery order.
func (f Finder) FindRegions(grid *world.Grid, target world.CellType) []*Region {
	visited := f.Pool.Acquire(grid.Width(), grid.Height())
	defer f.Pool.Release(visited)

	var regions []*Region
	grid.ForEachCell(func(x, y int, t world.CellType) {
		if t != target || visited.Get(x, y) {
			return
		}
		points := f.fill(grid, world.Point{X: x, Y: y}, target, visited)
		regions = append(regions, newRegion(len(regions), target, points, grid.Width()))
	})
	return regions
}

// FindAllRegions returns every connected component of every cell type,
// in row-major discovery order.
func (f Finder) FindAllRegions(grid *world.Grid) []*Region {
	visited := f.Pool.Acquire(grid.Width(), grid.Height())
	defer f.Pool.Release(visited)

	var regions []*Region
	grid.ForEachCell(func(x, y int, t world.CellType) {
		if visited.Get(x, y) {
			return
		}
		points := f.fill(grid, world.Point{X: x, Y: y}, t, visited)
		regions = append(regions, newRegion(len(regions), t, points, grid.Width()))
	})
	return regions
}

// AreConnected reports whether b is reached by a full flood from a over cells of a's type.
func (f Finder) AreConnected(grid *world.Grid, a, b world.Point) bool {
	if !grid.InBounds(a.X, a.Y) || !grid.InBounds(b.X, b.Y) {
		return false
	}
	t := grid.GetPoint(a)
	if grid.GetPoint(b) != t {
		return false
	}
	visited := f.Pool.Acquire(grid.Width(), grid.Height())
	defer f.Pool.Release(visited)
	f.fill(grid, a, t, visited)
	return visited.Get(b.X, b.Y)
}

// FindRegions is Finder{}.FindRegions.
func FindRegions(grid *world.Grid, target world.CellType) []*Region {
	return Finder{}.FindRegions(grid, target)
}

// FindAllRegions is Finder{}.FindAllRegions.
func FindAllRegions(grid *world.Grid) []*Region {
	return Finder{}.FindAllRegions(grid)
}

// AreConnected is Finder{}.AreConnected.
func AreConnected(grid *world.Grid, a, b world.Point) bool {
	return Finder{}.AreConnected(grid, a, b)
}

// FindLargestRegion returns the region with the most cells; the first one
// encountered wins ties. Returns nil for an empty slice.
func FindLargestRegion(regions []*Region) *Region {
	var largest *Region
	for _, r := range regions {
		if largest == nil || r.Size() > largest.Size() {
			largest = r
		}
	}
	return largest
}
