package world

import (
	"errors"
	"fmt"
	"log"
)

// ErrGridTooLarge is returned by Allocate when the requested grid exceeds the cell ceiling.
var ErrGridTooLarge = errors.New("grid exceeds cell ceiling")

// debugLog receives out-of-bounds writes when non-nil. Production callers leave it unset.
var debugLog *log.Logger

// SetDebugLogger enables logging of out-of-bounds writes. Pass nil to disable.
func SetDebugLogger(l *log.Logger) {
	debugLog = l
}

// Grid is a dense width x height array of cell codes stored in row-major order
type Grid struct {
	width  int
	height int
	cells  []CellType
}

// NewGrid creates a new grid filled with walls
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic("Grid dimensions must be positive")
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]CellType, width*height),
	}
}

// Allocate creates a grid after checking width*height against maxCells.
// Allocation panics raised by the runtime are converted into ErrGridTooLarge.
func Allocate(width, height, maxCells int) (g *Grid, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	if maxCells > 0 && width > maxCells/height {
		return nil, fmt.Errorf("%w: %dx%d > %d cells", ErrGridTooLarge, width, height, maxCells)
	}
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = fmt.Errorf("%w: %dx%d: %v", ErrGridTooLarge, width, height, r)
		}
	}()
	return NewGrid(width, height), nil
}

// Width returns the number of columns in the grid
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows in the grid
func (g *Grid) Height() int {
	return g.height
}

// Len returns the number of cells in the grid
func (g *Grid) Len() int {
	return len(g.cells)
}

// InBounds checks if an x/y position is within grid bounds
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsPlayablePosition checks if a position is within the playable area (not on the perimeter)
// This ensures a 1-cell wall border around the entire map
func (g *Grid) IsPlayablePosition(x, y int) bool {
	return x >= 1 && x < g.width-1 && y >= 1 && y < g.height-1
}

// IsOnPerimeter checks if a position is on the edge of the grid
func (g *Grid) IsOnPerimeter(x, y int) bool {
	return g.InBounds(x, y) && !g.IsPlayablePosition(x, y)
}

// Get returns the cell at the given position, or Wall if out of bounds
func (g *Grid) Get(x, y int) CellType {
	if !g.InBounds(x, y) {
		return Wall
	}
	return g.cells[y*g.width+x]
}

// GetPoint is Get for a Point.
func (g *Grid) GetPoint(p Point) CellType {
	return g.Get(p.X, p.Y)
}

// Set writes a cell. Returns false (and changes nothing) if out of bounds.
func (g *Grid) Set(x, y int, t CellType) bool {
	if !g.InBounds(x, y) {
		if debugLog != nil {
			debugLog.Printf("world: ignoring out-of-bounds set (%d,%d)=%v on %dx%d grid", x, y, t, g.width, g.height)
		}
		return false
	}
	g.cells[y*g.width+x] = t
	return true
}

// SetPoint is Set for a Point.
func (g *Grid) SetPoint(p Point, t CellType) bool {
	return g.Set(p.X, p.Y, t)
}

// Fill sets every cell to t
func (g *Grid) Fill(t CellType) {
	for i := range g.cells {
		g.cells[i] = t
	}
}

// FillRect sets every in-bounds cell of r to t
func (g *Grid) FillRect(r Rect, t CellType) {
	for y := max(r.Y, 0); y < min(r.Bottom(), g.height); y++ {
		for x := max(r.X, 0); x < min(r.Right(), g.width); x++ {
			g.cells[y*g.width+x] = t
		}
	}
}

// Count returns the number of cells of type t
func (g *Grid) Count(t CellType) int {
	n := 0
	for _, c := range g.cells {
		if c == t {
			n++
		}
	}
	return n
}

// CountNeighbors counts cells of type t in the 8-neighbourhood of (x, y).
// Out-of-bounds neighbours count as Wall.
func (g *Grid) CountNeighbors(x, y int, t CellType) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.Get(x+dx, y+dy) == t {
				count++
			}
		}
	}
	return count
}

// CenterPosition returns the x and y of the grid center
func (g *Grid) CenterPosition() (int, int) {
	return g.width / 2, g.height / 2
}

// ForEachCell iterates over all cells in row-major order
func (g *Grid) ForEachCell(fn func(x, y int, t CellType)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			fn(x, y, g.cells[y*g.width+x])
		}
	}
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, cells: make([]CellType, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// CopyFrom overwrites g with the contents of src. Both grids must have equal dimensions.
func (g *Grid) CopyFrom(src *Grid) {
	if g.width != src.width || g.height != src.height {
		panic(fmt.Sprintf("world: CopyFrom %dx%d into %dx%d", src.width, src.height, g.width, g.height))
	}
	copy(g.cells, src.cells)
}

// Equal reports whether two grids have identical dimensions and contents
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns a row-major 2D copy of the grid
func (g *Grid) Rows() [][]CellType {
	rows := make([][]CellType, g.height)
	for y := range rows {
		rows[y] = make([]CellType, g.width)
		copy(rows[y], g.cells[y*g.width:(y+1)*g.width])
	}
	return rows
}

// Bytes returns the raw cell codes in row-major order (a copy).
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.cells))
	for i, c := range g.cells {
		out[i] = byte(c)
	}
	return out
}

// Validate checks the grid for common issues and returns an error description or empty string if valid
func (g *Grid) Validate() string {
	if g.width <= 0 || g.height <= 0 {
		return "Grid has invalid dimensions"
	}
	if len(g.cells) != g.width*g.height {
		return "Grid storage does not match its dimensions"
	}
	for i, c := range g.cells {
		if !c.IsValid() {
			return fmt.Sprintf("Grid cell %d has unknown type %d", i, c)
		}
	}
	return ""
}
