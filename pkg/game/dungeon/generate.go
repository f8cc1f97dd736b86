package dungeon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dungeonforge/pkg/engine/telemetry"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/generator"
	"dungeonforge/pkg/game/progression"
	"dungeonforge/pkg/game/seed"
	"dungeonforge/pkg/game/theme"
)

// ProgressFunc receives the completed percentage (0 to 100, never decreasing)
// and the name of the phase about to run. The final call is (100, "done").
type ProgressFunc func(percent int, phase string)

// Generate builds a dungeon synchronously.
func Generate(seedValue int64, cfg config.Config) (*Dungeon, error) {
	return GenerateAsync(context.Background(), seedValue, cfg, nil)
}

// GenerateAsync builds a dungeon, reporting progress and checking ctx between
// phases. A cancelled ctx yields an error matching ErrAborted.
func GenerateAsync(ctx context.Context, seedValue int64, cfg config.Config, progress ProgressFunc) (*Dungeon, error) {
	primary, err := seed.Primary(seedValue)
	if err != nil {
		return nil, err
	}
	return run(ctx, seed.New(primary, time.Now()), cfg, progress)
}

// Regenerate rebuilds a dungeon from a bundle, typically one decoded from a
// share code. Equal bundles and configs produce equal checksums.
func Regenerate(ctx context.Context, bundle seed.Bundle, cfg config.Config) (*Dungeon, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return run(ctx, bundle, cfg, nil)
}

// FromShareCode decodes a share code and regenerates its dungeon.
func FromShareCode(ctx context.Context, code string, cfg config.Config) (*Dungeon, error) {
	bundle, err := seed.Decode(code)
	if err != nil {
		return nil, err
	}
	return Regenerate(ctx, bundle, cfg)
}

// runner carries one generation through its phases.
type runner struct {
	ctx    context.Context
	tracer trace.Tracer

	progress ProgressFunc
	total    int
	done     int
	last     int

	grid  *world.Grid
	stats Stats
}

func run(ctx context.Context, bundle seed.Bundle, cfg config.Config, progress ProgressFunc) (*Dungeon, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gen, err := generator.NewRegistry().New(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	tracer := telemetry.Tracer("dungeon")
	ctx, span := tracer.Start(ctx, "dungeon.generate",
		trace.WithAttributes(
			attribute.String("dungeon.run_id", runID),
			attribute.String("dungeon.algorithm", string(cfg.Algorithm)),
			attribute.Int("dungeon.width", cfg.Width),
			attribute.Int("dungeon.height", cfg.Height),
			attribute.Int("dungeon.room_count", cfg.RoomCount),
			attribute.Int64("dungeon.seed", int64(bundle.Primary)),
		))
	defer span.End()

	steps := gen.Steps()
	r := &runner{
		ctx:      ctx,
		tracer:   tracer,
		progress: progress,
		// allocate + generator steps + progression, name, validate, checksum
		total: 1 + len(steps) + 4,
		stats: Stats{Algorithm: cfg.Algorithm, RunID: runID},
	}

	d, err := r.generate(bundle, cfg, gen, steps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("dungeon.rooms", len(d.Rooms)),
		attribute.Int("dungeon.locks", len(d.Locks)),
		attribute.String("dungeon.checksum", d.Checksum),
	)
	r.report(100, "done")
	return d, nil
}

func (r *runner) generate(bundle seed.Bundle, cfg config.Config, gen generator.Generator, steps []generator.Step) (*Dungeon, error) {
	pool := world.NewBitGridPool(0, 0)

	if err := r.phase("allocate", func() error {
		grid, err := world.Allocate(cfg.Width, cfg.Height, config.MaxCells)
		if errors.Is(err, world.ErrGridTooLarge) {
			return fmt.Errorf("%w: %w", ErrMemoryExhausted, err)
		}
		r.grid = grid
		return err
	}); err != nil {
		return nil, err
	}

	gctx := generator.NewContext(cfg, bundle, r.grid, pool)
	for _, step := range steps {
		if err := r.phase(string(gen.Algorithm())+"."+step.Name, func() error {
			if err := step.Run(gctx); err != nil {
				return fmt.Errorf("%s %s: %w", gen.Algorithm(), step.Name, err)
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	d := &Dungeon{Config: cfg, Seeds: bundle, Grid: r.grid}

	var depth []int
	if err := r.phase("progression", func() error {
		res := progression.Apply(gctx.Layout(), cfg.Progression, bundle.Rand(seed.Details))
		d.Rooms = res.Rooms
		d.Connections = res.Connections
		d.Locks = res.Locks
		d.Keys = res.Keys
		d.Entrance = res.Entrance
		d.Exit = res.Exit
		d.Path = res.Path
		depth = res.Depth
		// Locked connections now need their door cells.
		generator.Carve(r.grid, d.Rooms, d.Connections, gctx.CorridorWidth)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.phase("name", func() error {
		theme.Apply(d.Rooms, depth)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.phase("validate", func() error {
		if err := r.grid.Validate(); err != "" {
			panic("Generated invalid grid: " + err)
		}
		if report := d.Validate(); !report.Valid() {
			panic(fmt.Sprintf("Generated invalid dungeon (seed %d): %v", bundle.Primary, report.Errors()))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.phase("checksum", func() error {
		d.Checksum = Checksum(d)
		return nil
	}); err != nil {
		return nil, err
	}

	r.stats.Pool = pool.Stats()
	d.Stats = r.stats
	return d, nil
}

// phase runs one unit of work under its own span, after a cancellation check.
func (r *runner) phase(name string, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("%w before %s: %w", ErrAborted, name, err)
	}
	r.report(r.done*100/r.total, name)
	r.done++

	_, span := r.tracer.Start(r.ctx, "dungeon."+name)
	defer span.End()

	start := time.Now()
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	stat := PhaseStat{Name: name, Duration: time.Since(start)}
	if r.grid != nil {
		stat.Walkable = walkable(r.grid)
	}
	span.SetAttributes(attribute.Int("dungeon.walkable", stat.Walkable))
	r.stats.Phases = append(r.stats.Phases, stat)
	return nil
}

func (r *runner) report(percent int, phase string) {
	percent = max(percent, r.last)
	r.last = percent
	if r.progress != nil {
		r.progress(percent, phase)
	}
}

func walkable(g *world.Grid) int {
	return g.Count(world.Floor) + g.Count(world.Corridor) + g.Count(world.Door)
}
