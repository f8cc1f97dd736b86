package world

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Manhattan returns the Manhattan distance between two points
func (p Point) Manhattan(o Point) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// DistanceSquared returns the squared Euclidean distance between two points
func (p Point) DistanceSquared(o Point) int {
	dx, dy := p.X-o.X, p.Y-o.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned rectangle; X,Y is the top-left cell.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Center returns the center cell of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Right returns the first column past the rectangle
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the first row past the rectangle
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Area returns the number of cells covered by the rectangle
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Empty returns true if the rectangle covers no cells
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the given point is inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// ContainsPoint is Contains for a Point.
func (r Rect) ContainsPoint(p Point) bool {
	return r.Contains(p.X, p.Y)
}

// Intersects returns true if this rectangle overlaps another one
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Expand grows the rectangle by n cells on every side.
func (r Rect) Expand(n int) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, Width: r.Width + 2*n, Height: r.Height + 2*n}
}

// Within returns true if the rectangle lies entirely inside [0,width) x [0,height).
func (r Rect) Within(width, height int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= width && r.Bottom() <= height
}

// Pack encodes (x, y) into a single index using width as the row stride.
func Pack(x, y, width int) uint32 {
	return uint32(y*width + x)
}

// Unpack is the inverse of Pack.
func Unpack(p uint32, width int) (x, y int) {
	i := int(p)
	return i % width, i / width
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
