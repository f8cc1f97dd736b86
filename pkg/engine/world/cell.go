// Package world provides generic 2D grid-based world primitives.
// These are engine-level constructs usable by any tile-based generator.
package world

// CellType is the code stored in every grid cell.
type CellType uint8

// Cell types. Wall is the zero value so a fresh grid is solid rock.
const (
	Wall CellType = iota
	Floor
	Corridor
	Door
)

// cellTypeCount is the number of defined cell types (for iteration).
const cellTypeCount = 4

// AllCellTypes returns every defined cell type in code order.
func AllCellTypes() []CellType {
	return []CellType{Wall, Floor, Corridor, Door}
}

// String returns the string representation of a cell type
func (c CellType) String() string {
	switch c {
	case Wall:
		return "wall"
	case Floor:
		return "floor"
	case Corridor:
		return "corridor"
	case Door:
		return "door"
	default:
		return "unknown"
	}
}

// IsValid returns true if the cell type is one of the defined codes
func (c CellType) IsValid() bool {
	return c < cellTypeCount
}

// IsWalkable returns true if an actor can stand on the cell
func (c CellType) IsWalkable() bool {
	return c == Floor || c == Corridor || c == Door
}
