package dungeon

import (
	"context"
	"errors"
	"testing"

	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/progression"
	"dungeonforge/pkg/game/seed"
	gameworld "dungeonforge/pkg/game/world"
)

func exampleConfig() config.Config {
	cfg := config.Default()
	cfg.Width = 60
	cfg.Height = 40
	cfg.RoomCount = 8
	cfg.RoomSize = config.SizeRange{Min: 5, Max: 12}
	cfg.Algorithm = config.AlgorithmBSP
	return cfg
}

func TestExampleScenario(t *testing.T) {
	d, err := Generate(12345, exampleConfig())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(d.Rooms) < 1 {
		t.Errorf("len(Rooms) = %d, want at least 1", len(d.Rooms))
	}
	if d.Checksum == "" {
		t.Error("Checksum is empty")
	}
	if report := d.Validate(); report.Count() != 0 {
		t.Errorf("violations = %d, want 0: %v", report.Count(), report.Errors())
	}
	if d.Width() != 60 || d.Height() != 40 {
		t.Errorf("size = %dx%d, want 60x40", d.Width(), d.Height())
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, alg := range config.Algorithms() {
		cfg := exampleConfig()
		cfg.Algorithm = alg
		a, err := Generate(777, cfg)
		if err != nil {
			t.Fatalf("%s: Generate() error = %v", alg, err)
		}
		b, err := Generate(777, cfg)
		if err != nil {
			t.Fatalf("%s: Generate() error = %v", alg, err)
		}
		if a.Checksum != b.Checksum {
			t.Errorf("%s: checksums differ: %s vs %s", alg, a.Checksum, b.Checksum)
		}
		if !a.Grid.Equal(b.Grid) {
			t.Errorf("%s: grids differ for the same seed", alg)
		}
		if len(a.Rooms) != len(b.Rooms) {
			t.Fatalf("%s: room counts differ: %d vs %d", alg, len(a.Rooms), len(b.Rooms))
		}
		for i := range a.Rooms {
			if a.Rooms[i] != b.Rooms[i] {
				t.Errorf("%s: room %d differs: %+v vs %+v", alg, i, a.Rooms[i], b.Rooms[i])
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	seen := make(map[string]int64)
	for s := int64(0); s < 20; s++ {
		d, err := Generate(s, exampleConfig())
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", s, err)
		}
		if prev, ok := seen[d.Checksum]; ok {
			t.Errorf("seeds %d and %d share checksum %s", prev, s, d.Checksum)
		}
		seen[d.Checksum] = s
	}
}

func TestGeneratedDungeonsAreValid(t *testing.T) {
	for _, alg := range config.Algorithms() {
		cfg := exampleConfig()
		cfg.Algorithm = alg
		for s := int64(0); s < 15; s++ {
			d, err := Generate(s*7919, cfg)
			if err != nil {
				t.Fatalf("%s seed %d: Generate() error = %v", alg, s, err)
			}
			if report := d.Validate(); !report.Valid() {
				t.Errorf("%s seed %d: %v", alg, s, report.Errors())
			}
			for _, r := range d.Rooms {
				if r.Name == "" {
					t.Errorf("%s seed %d: room %d has no name", alg, s, r.ID)
				}
			}
			for _, l := range d.Locks {
				c := d.Connections[l.Connection]
				if c.Type != gameworld.Locked {
					t.Errorf("%s seed %d: lock on %v connection", alg, s, c.Type)
				}
				if c.Door != nil && d.Grid.GetPoint(*c.Door) != world.Door {
					t.Errorf("%s seed %d: locked door at %v not carved", alg, s, *c.Door)
				}
			}
		}
	}
}

func TestLockedDoorsCannotBeWalkedAround(t *testing.T) {
	cfg := exampleConfig()
	cfg.Progression.LockProbability = 1
	cfg.Progression.MaxLocks = 6
	for s := int64(0); s < 30; s++ {
		d, err := Generate(s, cfg)
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", s, err)
		}
		shut := make(map[world.Point]bool)
		for _, l := range d.Locks {
			shut[*d.Connections[l.Connection].Door] = true
		}
		g := gameworld.BuildGraph(d.Rooms, d.Connections)
		open := progression.Reachable(g, 0, d.Locks, nil, -1)

		visited := world.NewBitGrid(d.Width(), d.Height())
		region.BFSFill(d.Width(), d.Height(), d.Rooms[0].Center(), func(x, y int) bool {
			return d.Grid.Get(x, y).IsWalkable() && !shut[world.Pt(x, y)]
		}, visited)
		for i, r := range d.Rooms {
			if c := r.Center(); visited.Get(c.X, c.Y) && !open.Has(i) {
				t.Errorf("seed %d: room %d is locked away but walkable without a key", s, r.ID)
			}
		}
	}
}

func TestRegenerateFromShareCode(t *testing.T) {
	cfg := exampleConfig()
	d, err := Generate(4242, cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	again, err := FromShareCode(context.Background(), d.ShareCode(), cfg)
	if err != nil {
		t.Fatalf("FromShareCode() error = %v", err)
	}
	if again.Checksum != d.Checksum {
		t.Errorf("checksum = %s, want %s", again.Checksum, d.Checksum)
	}
	if !again.Seeds.Equal(d.Seeds) {
		t.Errorf("Seeds = %+v, want %+v", again.Seeds, d.Seeds)
	}
}

func TestRegenerateRejectsTamperedBundle(t *testing.T) {
	bundle := seed.Derive(99)
	bundle.Rooms++
	_, err := Regenerate(context.Background(), bundle, exampleConfig())
	if !errors.Is(err, seed.ErrInvalidSeed) {
		t.Errorf("Regenerate() error = %v, want ErrInvalidSeed", err)
	}
}

func TestInvalidSeed(t *testing.T) {
	for _, s := range []int64{-1, int64(seed.MaxPrimary) + 1} {
		if _, err := Generate(s, exampleConfig()); !errors.Is(err, seed.ErrInvalidSeed) {
			t.Errorf("Generate(%d) error = %v, want ErrInvalidSeed", s, err)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := exampleConfig()
	cfg.Width = 2
	cfg.RoomSize = config.SizeRange{Min: 9, Max: 4}
	_, err := Generate(1, cfg)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("Generate() error = %v, want ErrInvalidConfig", err)
	}
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Generate() error is %T, want *config.ValidationError", err)
	}
	for _, path := range []string{"width", "roomSizeRange"} {
		if !verr.Has(path) {
			t.Errorf("ValidationError missing %q: %v", path, verr)
		}
	}
}

func TestMemoryExhausted(t *testing.T) {
	cfg := exampleConfig()
	cfg.Width = 10000
	cfg.Height = 10000
	_, err := Generate(1, cfg)
	if !errors.Is(err, ErrMemoryExhausted) {
		t.Fatalf("Generate() error = %v, want ErrMemoryExhausted", err)
	}
	if !errors.Is(err, world.ErrGridTooLarge) {
		t.Errorf("Generate() error = %v, want it to wrap ErrGridTooLarge", err)
	}
}

func TestCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateAsync(ctx, 1, exampleConfig(), nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("GenerateAsync() error = %v, want ErrAborted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateAsync() error = %v, want it to wrap context.Canceled", err)
	}
}

func TestCancelledBetweenPhases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var phases []string
	_, err := GenerateAsync(ctx, 1, exampleConfig(), func(percent int, phase string) {
		phases = append(phases, phase)
		if phase == "bsp.connect" {
			cancel()
		}
	})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("GenerateAsync() error = %v, want ErrAborted", err)
	}
	if last := phases[len(phases)-1]; last != "bsp.connect" {
		t.Errorf("last reported phase = %q, want bsp.connect", last)
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	var percents []int
	var phases []string
	d, err := GenerateAsync(context.Background(), 5, exampleConfig(), func(percent int, phase string) {
		percents = append(percents, percent)
		phases = append(phases, phase)
	})
	if err != nil {
		t.Fatalf("GenerateAsync() error = %v", err)
	}
	if len(percents) == 0 || percents[0] != 0 {
		t.Fatalf("first progress = %v, want 0", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress went backwards at %d: %v", i, percents)
		}
	}
	if got := percents[len(percents)-1]; got != 100 {
		t.Errorf("final progress = %d, want 100", got)
	}
	if got := phases[len(phases)-1]; got != "done" {
		t.Errorf("final phase = %q, want done", got)
	}
	if len(d.Stats.Phases) != len(phases)-1 {
		t.Errorf("len(Stats.Phases) = %d, want %d", len(d.Stats.Phases), len(phases)-1)
	}
	if d.Stats.RunID == "" {
		t.Error("Stats.RunID is empty")
	}
}

func TestExports(t *testing.T) {
	d, err := Generate(8, exampleConfig())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	cells := d.CellTypes()
	walk := d.Walkable()
	if len(cells) != d.Height() || len(walk) != d.Height() {
		t.Fatalf("row counts = %d, %d, want %d", len(cells), len(walk), d.Height())
	}
	for y := range cells {
		if len(cells[y]) != d.Width() {
			t.Fatalf("row %d has %d cells, want %d", y, len(cells[y]), d.Width())
		}
		for x := range cells[y] {
			if walk[y][x] != cells[y][x].IsWalkable() {
				t.Errorf("Walkable()[%d][%d] = %v for %v", y, x, walk[y][x], cells[y][x])
			}
		}
	}
	for _, r := range d.Rooms {
		got, ok := d.RoomAt(r.Center())
		if !ok || got.ID != r.ID {
			t.Errorf("RoomAt(%v) = %d, %v, want %d", r.Center(), got.ID, ok, r.ID)
		}
	}
}

func TestChecksumTracksContent(t *testing.T) {
	d, err := Generate(3, exampleConfig())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := Checksum(d); got != d.Checksum {
		t.Fatalf("Checksum() = %s, want stored %s", got, d.Checksum)
	}

	stamped := *d
	stamped.Seeds.Timestamp += 1000
	if got := Checksum(&stamped); got != d.Checksum {
		t.Errorf("timestamp changed checksum: %s vs %s", got, d.Checksum)
	}

	edited := *d
	edited.Grid = d.Grid.Clone()
	edited.Grid.Set(0, 0, world.Floor)
	if got := Checksum(&edited); got == d.Checksum {
		t.Error("grid edit did not change checksum")
	}
}
