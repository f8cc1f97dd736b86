package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is matched by every *ValidationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validation limits.
const (
	MinDimension    = 10
	MaxDimension    = 10000
	MinRooms        = 1
	MaxRooms        = 1000
	CellsPerRoom    = 25
	MinRoomSide     = 3
	MaxRoomSide     = 100
	MaxSpacing      = 10
	MaxCorridorSide = 3
	MaxIterations   = 20
)

// FieldError is one violated rule.
type FieldError struct {
	Path    string
	Message string
}

func (f FieldError) String() string {
	return f.Path + ": " + f.Message
}

// ValidationError lists every violated field of a configuration.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// Has reports whether path is among the violations
func (e *ValidationError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// Paths returns the violated field paths in report order
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		paths[i] = f.Path
	}
	return paths
}

type checker struct {
	fields []FieldError
}

func (c *checker) fail(path, format string, args ...any) {
	c.fields = append(c.fields, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) intRange(path string, v, lo, hi int) {
	if v < lo || v > hi {
		c.fail(path, "must be in [%d, %d], got %d", lo, hi, v)
	}
}

func (c *checker) probability(path string, v float64) {
	if !(v >= 0 && v <= 1) {
		c.fail(path, "must be in [0, 1], got %v", v)
	}
}

// Validate checks every rule and returns a *ValidationError naming all violated
// fields, or nil.
func (c Config) Validate() error {
	var ck checker

	ck.intRange("width", c.Width, MinDimension, MaxDimension)
	ck.intRange("height", c.Height, MinDimension, MaxDimension)

	ck.intRange("roomCount", c.RoomCount, MinRooms, MaxRooms)
	if c.Width > 0 && c.Height > 0 && c.RoomCount*CellsPerRoom > c.Width*c.Height {
		ck.fail("roomCount", "at most one room per %d cells: %d rooms need %d cells, grid has %d",
			CellsPerRoom, c.RoomCount, c.RoomCount*CellsPerRoom, c.Width*c.Height)
	}

	if c.RoomSize.Min < MinRoomSide {
		ck.fail("roomSizeRange.min", "must be at least %d, got %d", MinRoomSide, c.RoomSize.Min)
	}
	if c.RoomSize.Min > c.RoomSize.Max {
		ck.fail("roomSizeRange", "min %d exceeds max %d", c.RoomSize.Min, c.RoomSize.Max)
	}
	if c.RoomSize.Max > MaxRoomSide {
		ck.fail("roomSizeRange.max", "must be at most %d, got %d", MaxRoomSide, c.RoomSize.Max)
	}
	if c.RoomSize.Max >= c.Width {
		ck.fail("roomSizeRange.max", "must be less than width %d, got %d", c.Width, c.RoomSize.Max)
	}
	if c.RoomSize.Max >= c.Height {
		ck.fail("roomSizeRange.max", "must be less than height %d, got %d", c.Height, c.RoomSize.Max)
	}

	if !c.Algorithm.IsValid() {
		ck.fail("algorithm", "must be one of %v, got %q", Algorithms(), c.Algorithm)
	}
	ck.intRange("spacing", c.Spacing, 0, MaxSpacing)

	c.BSP.validate(&ck)
	c.Cellular.validate(&ck)
	c.Progression.validate(&ck)

	if len(ck.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: ck.fields}
}

func (o BSPOptions) validate(ck *checker) {
	if o.MaxDepth < 0 || o.MaxDepth > 32 {
		ck.fail("bsp.maxDepth", "must be in [0, 32], got %d", o.MaxDepth)
	}
	if o.MinPartitionSize < 0 {
		ck.fail("bsp.minPartitionSize", "must not be negative, got %d", o.MinPartitionSize)
	}
	ck.intRange("bsp.padding", o.Padding, 0, MaxSpacing)
	if !(o.MinRatio > 0 && o.MinRatio <= 1) {
		ck.fail("bsp.minRatio", "must be in (0, 1], got %v", o.MinRatio)
	}
	if !(o.MaxRatio > 0 && o.MaxRatio <= 1) {
		ck.fail("bsp.maxRatio", "must be in (0, 1], got %v", o.MaxRatio)
	}
	if o.MinRatio > o.MaxRatio {
		ck.fail("bsp.minRatio", "exceeds maxRatio %v", o.MaxRatio)
	}
	if !o.Corridor.IsValid() {
		ck.fail("bsp.corridor", "unknown corridor style %q", o.Corridor)
	}
	ck.intRange("bsp.corridorWidth", o.CorridorWidth, 1, MaxCorridorSide)
	ck.intRange("bsp.extraConnections", o.ExtraConnections, 0, MaxRooms)
	ck.probability("bsp.doorProbability", o.DoorProbability)
	ck.probability("bsp.secretProbability", o.SecretProbability)
}

func (o CellularOptions) validate(ck *checker) {
	ck.probability("cellular.fillProbability", o.FillProbability)
	ck.intRange("cellular.iterations", o.Iterations, 0, MaxIterations)
	ck.intRange("cellular.birthLimit", o.BirthLimit, 0, 8)
	ck.intRange("cellular.deathLimit", o.DeathLimit, 0, 8)
	if o.MinCavernSize < 0 {
		ck.fail("cellular.minCavernSize", "must not be negative, got %d", o.MinCavernSize)
	}
}

func (o ProgressionOptions) validate(ck *checker) {
	ck.probability("progression.lockProbability", o.LockProbability)
	ck.intRange("progression.maxLocks", o.MaxLocks, 0, MaxLocks)
	seen := make(map[string]bool, len(o.KeyTypes))
	for i, k := range o.KeyTypes {
		path := fmt.Sprintf("progression.keyTypes[%d]", i)
		switch {
		case strings.TrimSpace(k) == "":
			ck.fail(path, "must not be blank")
		case seen[k]:
			ck.fail(path, "duplicate key type %q", k)
		}
		seen[k] = true
	}
	if o.MaxLocks > 0 && len(o.KeyTypes) == 0 {
		ck.fail("progression.keyTypes", "must not be empty when maxLocks is %d", o.MaxLocks)
	}
}
