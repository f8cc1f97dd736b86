// Package seed turns one primary seed into the bundle of independent stream
// seeds that drives every generation phase, and encodes bundles as share codes.
package seed

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dungeonforge/pkg/engine/rng"
)

// Version is the current bundle format. Bumping it changes how streams are derived.
const Version uint8 = 1

// MaxPrimary is the largest accepted primary seed.
const MaxPrimary = math.MaxUint32

// ErrInvalidSeed is returned for out-of-range or malformed primary seeds and bundles.
var ErrInvalidSeed = errors.New("invalid seed")

// Stream identifies one of the independent random streams.
type Stream int

// Streams, one per generation phase.
const (
	Layout Stream = iota
	Rooms
	Connections
	Details
)

// String returns the stream name
func (s Stream) String() string {
	switch s {
	case Layout:
		return "layout"
	case Rooms:
		return "rooms"
	case Connections:
		return "connections"
	case Details:
		return "details"
	default:
		return "unknown"
	}
}

// Fixed salts (the stream names as big-endian ASCII) keep derivation stable across releases.
var streamSalts = [...]uint64{
	Layout:      0x6c61796f7574,   // "layout"
	Rooms:       0x726f6f6d73,     // "rooms"
	Connections: 0x636f6e6e656374, // "connect"
	Details:     0x64657461696c73, // "details"
}

// Bundle is a primary seed plus the four stream seeds derived from it.
// The bundle, not the primary seed alone, determines a dungeon.
type Bundle struct {
	Primary     uint32
	Layout      uint64
	Rooms       uint64
	Connections uint64
	Details     uint64
	Version     uint8
	// Timestamp is informational (unix milliseconds); it never affects generation.
	Timestamp int64
}

// Primary validates a caller supplied seed and narrows it to the primary seed type.
func Primary(s int64) (uint32, error) {
	if s < 0 || s > MaxPrimary {
		return 0, fmt.Errorf("%w: %d is outside [0, %d]", ErrInvalidSeed, s, uint64(MaxPrimary))
	}
	return uint32(s), nil
}

// Derive builds the bundle for a primary seed. The four stream seeds come from a
// fixed mixing function, not from successive draws of one generator, so no
// stream ever observes another's consumption.
func Derive(primary uint32) Bundle {
	return Bundle{
		Primary:     primary,
		Layout:      deriveStream(primary, Layout),
		Rooms:       deriveStream(primary, Rooms),
		Connections: deriveStream(primary, Connections),
		Details:     deriveStream(primary, Details),
		Version:     Version,
	}
}

// New is Derive stamped with the given time.
func New(primary uint32, at time.Time) Bundle {
	b := Derive(primary)
	b.Timestamp = at.UnixMilli()
	return b
}

func deriveStream(primary uint32, s Stream) uint64 {
	return rng.Mix(uint64(primary), streamSalts[s])
}

// Stream returns the seed for one stream
func (b Bundle) Stream(s Stream) uint64 {
	switch s {
	case Layout:
		return b.Layout
	case Rooms:
		return b.Rooms
	case Connections:
		return b.Connections
	case Details:
		return b.Details
	default:
		panic(fmt.Sprintf("seed: unknown stream %d", s))
	}
}

// Rand returns a fresh generator for one stream
func (b Bundle) Rand(s Stream) *rng.Rand {
	return rng.New(b.Stream(s))
}

// Sub derives a child seed from a stream, e.g. one per room.
func (b Bundle) Sub(s Stream, salt uint64) uint64 {
	return rng.Mix(b.Stream(s), salt)
}

// Validate checks that the bundle uses a known format and that its streams are
// exactly the ones derived from its primary seed.
func (b Bundle) Validate() error {
	if b.Version != Version {
		return fmt.Errorf("%w: unsupported bundle version %d", ErrInvalidSeed, b.Version)
	}
	want := Derive(b.Primary)
	if b.Layout != want.Layout || b.Rooms != want.Rooms ||
		b.Connections != want.Connections || b.Details != want.Details {
		return fmt.Errorf("%w: stream seeds do not match primary %d", ErrInvalidSeed, b.Primary)
	}
	return nil
}

// Equal reports whether two bundles are identical, timestamp included
func (b Bundle) Equal(o Bundle) bool {
	return b == o
}
