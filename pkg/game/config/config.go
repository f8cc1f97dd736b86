// Package config holds the generation configuration and its validation rules.
package config

// MaxCells is the largest grid (width*height) a generation may allocate.
// It is checked before any allocation is attempted.
const MaxCells = 1 << 24

// Algorithm selects the structural generator.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmBSP      Algorithm = "bsp"
	AlgorithmCellular Algorithm = "cellular"
)

// Algorithms lists every supported algorithm
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmBSP, AlgorithmCellular}
}

// IsValid returns true for a supported algorithm
func (a Algorithm) IsValid() bool {
	return a == AlgorithmBSP || a == AlgorithmCellular
}

// CorridorStyle selects how BSP corridors are shaped.
type CorridorStyle string

// Corridor styles.
const (
	CorridorLShape   CorridorStyle = "lshape"
	CorridorStraight CorridorStyle = "straight"
	CorridorAStar    CorridorStyle = "astar"
)

// IsValid returns true for a known corridor style
func (c CorridorStyle) IsValid() bool {
	return c == CorridorLShape || c == CorridorStraight || c == CorridorAStar
}

// SizeRange is an inclusive [Min, Max] room side length range.
type SizeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Config describes one dungeon generation.
type Config struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	RoomCount int       `json:"roomCount"`
	RoomSize  SizeRange `json:"roomSizeRange"`
	Algorithm Algorithm `json:"algorithm"`
	// Spacing is the minimum number of wall cells kept between any two rooms.
	Spacing int `json:"spacing"`

	BSP         BSPOptions         `json:"bsp"`
	Cellular    CellularOptions    `json:"cellular"`
	Progression ProgressionOptions `json:"progression"`
}

// BSPOptions tunes the binary space partition generator.
type BSPOptions struct {
	// MaxDepth of the partition tree; 0 derives it from the room count.
	MaxDepth int `json:"maxDepth"`
	// MinPartitionSize is the smallest side a partition may have; 0 uses RoomSize.Min + 2*Padding.
	MinPartitionSize  int           `json:"minPartitionSize"`
	Padding           int           `json:"padding"`
	MinRatio          float64       `json:"minRatio"`
	MaxRatio          float64       `json:"maxRatio"`
	Corridor          CorridorStyle `json:"corridor"`
	CorridorWidth     int           `json:"corridorWidth"`
	ExtraConnections  int           `json:"extraConnections"`
	DoorProbability   float64       `json:"doorProbability"`
	SecretProbability float64       `json:"secretProbability"`
}

// CellularOptions tunes the cave generator.
type CellularOptions struct {
	FillProbability float64 `json:"fillProbability"`
	Iterations      int     `json:"iterations"`
	// A wall cell with at least BirthLimit wall neighbours stays or becomes wall.
	BirthLimit int `json:"birthLimit"`
	// A wall cell with fewer than DeathLimit wall neighbours becomes floor.
	DeathLimit    int `json:"deathLimit"`
	MinCavernSize int `json:"minCavernSize"`
}

// ProgressionOptions tunes lock and key placement.
type ProgressionOptions struct {
	LockProbability float64  `json:"lockProbability"`
	MaxLocks        int      `json:"maxLocks"`
	KeyTypes        []string `json:"keyTypes"`
}

// MaxLocks is the upper bound for ProgressionOptions.MaxLocks (one bit per key type).
const MaxLocks = 64

// DefaultKeyTypes are the key tags handed out in order.
var DefaultKeyTypes = []string{"red", "blue", "green", "gold", "silver", "bronze"}

// Default returns a ready-to-use configuration
func Default() Config {
	return Config{
		Width:       80,
		Height:      50,
		RoomCount:   10,
		RoomSize:    SizeRange{Min: 5, Max: 12},
		Algorithm:   AlgorithmBSP,
		Spacing:     1,
		BSP:         DefaultBSPOptions(),
		Cellular:    DefaultCellularOptions(),
		Progression: DefaultProgressionOptions(),
	}
}

// DefaultBSPOptions returns the BSP defaults
func DefaultBSPOptions() BSPOptions {
	return BSPOptions{
		Padding:           1,
		MinRatio:          0.45,
		MaxRatio:          0.9,
		Corridor:          CorridorLShape,
		CorridorWidth:     1,
		DoorProbability:   0.25,
		SecretProbability: 0.1,
	}
}

// DefaultCellularOptions returns the cave defaults
func DefaultCellularOptions() CellularOptions {
	return CellularOptions{
		FillProbability: 0.45,
		Iterations:      5,
		BirthLimit:      5,
		DeathLimit:      4,
		MinCavernSize:   30,
	}
}

// DefaultProgressionOptions returns the lock and key defaults
func DefaultProgressionOptions() ProgressionOptions {
	return ProgressionOptions{
		LockProbability: 0.5,
		MaxLocks:        3,
		KeyTypes:        append([]string(nil), DefaultKeyTypes...),
	}
}

// WithDefaults returns a copy of c where every option block left entirely
// unset, and an empty algorithm, take their defaults. Top-level sizes are kept as given.
func (c Config) WithDefaults() Config {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBSP
	}
	if c.BSP == (BSPOptions{}) {
		c.BSP = DefaultBSPOptions()
	}
	if c.Cellular == (CellularOptions{}) {
		c.Cellular = DefaultCellularOptions()
	}
	p := c.Progression
	if p.LockProbability == 0 && p.MaxLocks == 0 && len(p.KeyTypes) == 0 {
		c.Progression = DefaultProgressionOptions()
	} else {
		c.Progression.KeyTypes = append([]string(nil), p.KeyTypes...)
	}
	return c
}

// Cells returns width*height
func (c Config) Cells() int {
	return c.Width * c.Height
}
