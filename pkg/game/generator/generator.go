package generator

import (
	"errors"
	"fmt"

	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/rng"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/seed"
	gameworld "dungeonforge/pkg/game/world"
)

// ErrUnknownAlgorithm is returned by Registry.New for an algorithm with no constructor.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Generator is a structural layout algorithm expressed as ordered phases.
// A Generator value holds the intermediate state of one run and must not be reused.
type Generator interface {
	Algorithm() config.Algorithm
	Steps() []Step
}

// Step is one phase of a generator. Steps run in order on the same Context and
// never concurrently, since later phases read state earlier ones wrote.
type Step struct {
	Name string
	Run  func(ctx *Context) error
}

// Constructor builds a fresh generator for one run.
type Constructor func() Generator

// Registry maps algorithms to constructors. It is owned by the caller; there is
// no package-level registry.
type Registry map[config.Algorithm]Constructor

// NewRegistry returns a registry holding every built-in algorithm
func NewRegistry() Registry {
	return Registry{
		config.AlgorithmBSP:      func() Generator { return NewBSP() },
		config.AlgorithmCellular: func() Generator { return NewCellular() },
	}
}

// New constructs the generator for alg
func (r Registry) New(alg config.Algorithm) (Generator, error) {
	ctor, ok := r[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	return ctor(), nil
}

// Streams are the random sources a generator may draw from. Each is seeded
// from its own bundle stream so phases never perturb each other.
type Streams struct {
	Layout      *rng.Rand
	Rooms       *rng.Rand
	Connections *rng.Rand
}

// Context is the mutable state shared by the steps of one generation.
type Context struct {
	Config      config.Config
	Seeds       seed.Bundle
	Grid        *world.Grid
	Pool        *world.BitGridPool
	Finder      region.Finder
	Streams     Streams
	Rooms       []gameworld.Room
	Connections []gameworld.Connection
	// CorridorWidth is the brush the carve step used; re-carving must use the same.
	CorridorWidth int
}

// NewContext prepares a context over an allocated, wall-filled grid.
func NewContext(cfg config.Config, seeds seed.Bundle, grid *world.Grid, pool *world.BitGridPool) *Context {
	return &Context{
		Config: cfg,
		Seeds:  seeds,
		Grid:   grid,
		Pool:   pool,
		Finder: region.Finder{Pool: pool},
		Streams: Streams{
			Layout:      seeds.Rand(seed.Layout),
			Rooms:       seeds.Rand(seed.Rooms),
			Connections: seeds.Rand(seed.Connections),
		},
		CorridorWidth: 1,
	}
}

// Layout returns the rooms, connections and grid produced so far. The result
// shares storage with the context.
func (c *Context) Layout() *gameworld.Layout {
	return &gameworld.Layout{Grid: c.Grid, Rooms: c.Rooms, Connections: c.Connections}
}

// addRoom appends a room with the next sequential id and its detail sub-seed
func (c *Context) addRoom(rect world.Rect) int {
	id := len(c.Rooms)
	c.Rooms = append(c.Rooms, gameworld.Room{
		ID:   id,
		Rect: rect,
		Type: gameworld.Normal,
		Seed: c.Seeds.Sub(seed.Details, uint64(id)),
	})
	return id
}

// overlapsRoom reports whether r, grown by the configured spacing, touches any placed room
func (c *Context) overlapsRoom(r world.Rect) bool {
	grown := r.Expand(c.Config.Spacing)
	for _, room := range c.Rooms {
		if grown.Intersects(room.Rect) {
			return true
		}
	}
	return false
}

// Run executes every step of g in order
func Run(ctx *Context, g Generator) error {
	for _, step := range g.Steps() {
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", g.Algorithm(), step.Name, err)
		}
	}
	return nil
}
