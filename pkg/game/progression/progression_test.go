package progression

import (
	"slices"
	"testing"

	"dungeonforge/pkg/engine/region"
	"dungeonforge/pkg/engine/rng"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/generator"
	"dungeonforge/pkg/game/seed"
	gameworld "dungeonforge/pkg/game/world"
)

// spine builds a layout from room count and edge list. Rooms are 4x4 squares
// laid out on a row; positions do not matter to the solver.
func spine(n int, edges ...[2]int) *gameworld.Layout {
	l := &gameworld.Layout{}
	for i := 0; i < n; i++ {
		l.Rooms = append(l.Rooms, gameworld.Room{ID: i, Rect: world.Rect{X: 1 + i*6, Y: 1, Width: 4, Height: 4}})
	}
	for _, e := range edges {
		a, b := l.Rooms[e[0]].Center(), l.Rooms[e[1]].Center()
		l.Connections = append(l.Connections, gameworld.NewConnection(e[0], e[1], []world.Point{a, b}))
	}
	return l
}

// branched is a corridor 0-1-2-3-4 with dead ends 5, 6 and 7 hanging off 1, 2 and 3.
func branched() *gameworld.Layout {
	return spine(8,
		[2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4},
		[2]int{1, 5}, [2]int{2, 6}, [2]int{3, 7},
	)
}

func alwaysLock(maxLocks int, keys ...string) config.ProgressionOptions {
	if len(keys) == 0 {
		keys = config.DefaultKeyTypes
	}
	return config.ProgressionOptions{LockProbability: 1, MaxLocks: maxLocks, KeyTypes: keys}
}

func TestApplyRoomTypes(t *testing.T) {
	res := Apply(branched(), alwaysLock(0), rng.New(1))
	if res.Entrance != 0 || res.Rooms[0].Type != gameworld.Entrance {
		t.Errorf("entrance = %d (%v), want room 0", res.Entrance, res.Rooms[0].Type)
	}
	// Rooms 4 and 7 are both four hops away; the lower id wins
	if res.Exit != 4 || res.Rooms[4].Type != gameworld.Exit {
		t.Errorf("exit = %d (%v), want room 4", res.Exit, res.Rooms[4].Type)
	}
	if res.Rooms[7].Type != gameworld.Boss {
		t.Errorf("room 7 type = %v, want boss", res.Rooms[7].Type)
	}
	for _, i := range []int{1, 2, 3} {
		if res.Rooms[i].Type != gameworld.Normal {
			t.Errorf("corridor room %d type = %v, want normal", i, res.Rooms[i].Type)
		}
	}
	if want := []int{0, 1, 2, 3, 4, 2, 3, 4}; !slices.Equal(res.Depth, want) {
		t.Errorf("Depth = %v, want %v", res.Depth, want)
	}
}

func TestApplyLocksDeepestFirst(t *testing.T) {
	layout := branched()
	res := Apply(layout, alwaysLock(3), rng.New(2))

	// Only 1-2 and 2-3 join two rooms that each have another way out
	if len(res.Locks) != 2 {
		t.Fatalf("placed %d locks, want 2: %+v", len(res.Locks), res.Locks)
	}
	if res.Locks[0].Connection != 2 || res.Locks[1].Connection != 1 {
		t.Errorf("locked connections %d,%d, want 2 then 1", res.Locks[0].Connection, res.Locks[1].Connection)
	}
	if res.Locks[0].KeyType != "red" || res.Locks[1].KeyType != "blue" {
		t.Errorf("key types %q,%q, want red, blue", res.Locks[0].KeyType, res.Locks[1].KeyType)
	}
	for _, l := range res.Locks {
		if res.Connections[l.Connection].Type != gameworld.Locked {
			t.Errorf("connection %d type = %v, want locked", l.Connection, res.Connections[l.Connection].Type)
		}
	}
	if layout.Connections[2].Type != gameworld.Corridor {
		t.Error("Apply modified the input layout")
	}
	if !res.Solvable {
		t.Error("result not solvable")
	}
	checkKeysBeforeLocks(t, res)
}

// checkKeysBeforeLocks asserts every key is reachable without crossing its own lock.
func checkKeysBeforeLocks(t *testing.T, res *Result) {
	t.Helper()
	g := gameworld.BuildGraph(res.Rooms, res.Connections)
	if len(res.Keys) != len(res.Locks) {
		t.Fatalf("%d keys for %d locks", len(res.Keys), len(res.Locks))
	}
	for i, l := range res.Locks {
		k := res.Keys[i]
		if k.KeyType != l.KeyType {
			t.Errorf("key %d type %q does not match lock %q", i, k.KeyType, l.KeyType)
		}
		room, ok := gameworld.RoomByID(res.Rooms, k.Room)
		if !ok || !room.Contains(k.Position) {
			t.Errorf("key %d at %v is not inside room %d", i, k.Position, k.Room)
		}
		if !Reachable(g, 0, res.Locks, res.Keys, l.Connection).Has(g.Index[k.Room]) {
			t.Errorf("key %q in room %d is behind its own lock on connection %d", k.KeyType, k.Room, l.Connection)
		}
	}
}

func TestApplyBudgets(t *testing.T) {
	tests := []struct {
		name string
		opts config.ProgressionOptions
		want int
	}{
		{"max locks", alwaysLock(1), 1},
		{"key pool", alwaysLock(3, "bone"), 1},
		{"no probability", config.ProgressionOptions{LockProbability: 0, MaxLocks: 3, KeyTypes: config.DefaultKeyTypes}, 0},
		{"disabled", alwaysLock(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(branched(), tt.opts, rng.New(3))
			if len(res.Locks) != tt.want {
				t.Errorf("%d locks, want %d", len(res.Locks), tt.want)
			}
			if !res.Solvable {
				t.Error("not solvable")
			}
		})
	}
}

func TestApplyNeverIsolatesLeaves(t *testing.T) {
	star := spine(5, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4})
	res := Apply(star, alwaysLock(4), rng.New(4))
	if len(res.Locks) != 0 {
		t.Errorf("locked %d star edges, want 0", len(res.Locks))
	}
}

func TestApplyEmptyLayout(t *testing.T) {
	res := Apply(&gameworld.Layout{}, alwaysLock(3), rng.New(5))
	if !res.Solvable || len(res.Locks) != 0 || res.Entrance != -1 {
		t.Errorf("empty layout result = %+v", res)
	}
}

func TestApplySkipsSecretPassages(t *testing.T) {
	l := spine(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 0})
	for i := range l.Connections {
		l.Connections[i].Type = gameworld.Secret
	}
	if res := Apply(l, alwaysLock(3), rng.New(6)); len(res.Locks) != 0 {
		t.Errorf("locked %d secret passages", len(res.Locks))
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	a := Apply(branched(), alwaysLock(3), rng.New(77))
	b := Apply(branched(), alwaysLock(3), rng.New(77))
	if !slices.Equal(a.Locks, b.Locks) || !slices.Equal(a.Keys, b.Keys) {
		t.Errorf("locks or keys differ: %+v / %+v", a, b)
	}
	for i := range a.Rooms {
		if a.Rooms[i].Type != b.Rooms[i].Type {
			t.Errorf("room %d type differs", i)
		}
	}
}

func TestReachableAndSolvable(t *testing.T) {
	l := spine(3, [2]int{0, 1}, [2]int{1, 2})
	g := l.Graph()
	locks := []Lock{{Connection: 1, KeyType: "red"}}

	behind := []Key{{Room: 2, KeyType: "red"}}
	if got := Reachable(g, 0, locks, behind, -1); got.Size() != 2 || got.Has(2) {
		t.Errorf("Reachable with key behind lock has %d rooms", got.Size())
	}
	if Solvable(g, 0, locks, behind) {
		t.Error("key behind its own lock reported solvable")
	}

	before := []Key{{Room: 1, KeyType: "red"}}
	if !Solvable(g, 0, locks, before) {
		t.Error("key before lock reported unsolvable")
	}
	if got := Reachable(g, 0, locks, before, 0); got.Size() != 1 {
		t.Errorf("blocking connection 0 still reaches %d rooms", got.Size())
	}
}

func TestReachableChainsKeys(t *testing.T) {
	// 0 -red- 1 -blue- 2, red key in 0, blue key in 1
	l := spine(3, [2]int{0, 1}, [2]int{1, 2})
	locks := []Lock{{0, "red"}, {1, "blue"}}
	keys := []Key{{Room: 0, KeyType: "red"}, {Room: 1, KeyType: "blue"}}
	if !Solvable(l.Graph(), 0, locks, keys) {
		t.Error("chained keys not followed to the fixed point")
	}
}

func TestShortestKeyedPath(t *testing.T) {
	// 0 - 1 - 2 with 1-2 locked, key hanging off 1 in room 3
	l := spine(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{1, 3})
	g := l.Graph()
	locks := []Lock{{Connection: 1, KeyType: "red"}}
	keys := []Key{{Room: 3, KeyType: "red"}}

	path, ok := ShortestKeyedPath(g, l.Rooms, 0, 2, locks, keys)
	if !ok {
		t.Fatal("no keyed path found")
	}
	if want := []int{0, 1, 3, 1, 2}; !slices.Equal(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}

	if _, ok := ShortestKeyedPath(g, l.Rooms, 0, 2, locks, nil); ok {
		t.Error("found a path through a lock with no key")
	}
	if p, ok := ShortestKeyedPath(g, l.Rooms, 2, 2, nil, nil); !ok || !slices.Equal(p, []int{2}) {
		t.Errorf("path to self = %v, %v", p, ok)
	}
}

func TestGeneratedLayoutsStaySolvable(t *testing.T) {
	cfg := config.Default()
	cfg.BSP.ExtraConnections = 4
	cfg.Progression = alwaysLock(6)
	for _, alg := range config.Algorithms() {
		cfg.Algorithm = alg
		for s := uint32(0); s < 20; s++ {
			bundle := seed.Derive(s)
			ctx := generator.NewContext(cfg, bundle, world.NewGrid(cfg.Width, cfg.Height), nil)
			g, _ := generator.NewRegistry().New(alg)
			if err := generator.Run(ctx, g); err != nil {
				t.Fatal(err)
			}
			res := Apply(ctx.Layout(), cfg.Progression, bundle.Rand(seed.Details))
			if !res.Solvable {
				t.Errorf("%s seed %d: unsolvable with %d locks", alg, s, len(res.Locks))
			}
			checkKeysBeforeLocks(t, res)
			if len(res.Path) == 0 || res.Path[0] != res.Entrance || res.Path[len(res.Path)-1] != res.Exit {
				t.Errorf("%s seed %d: keyed path %v does not run entrance %d to exit %d", alg, s, res.Path, res.Entrance, res.Exit)
			}
		}
	}
}

// carvedChain is a 0-1-2-3 chain carved into a grid with L corridors. With
// bypass set, an extra corridor below the rooms joins room 1 to room 2.
func carvedChain(bypass bool) *gameworld.Layout {
	l := spine(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	for i := range l.Connections {
		c := &l.Connections[i]
		a, b := l.Rooms[c.A].Center(), l.Rooms[c.B].Center()
		c.Path = generator.LPath(a, b, true)
		door := world.Pt(l.Rooms[c.A].Rect.Right(), a.Y)
		c.Door = &door
	}
	l.Grid = world.NewGrid(24, 10)
	generator.Carve(l.Grid, l.Rooms, l.Connections, 1)
	if bypass {
		for y := 5; y <= 6; y++ {
			l.Grid.Set(8, y, world.Corridor)
		}
		for x := 8; x <= 14; x++ {
			l.Grid.Set(x, 6, world.Corridor)
		}
		l.Grid.Set(14, 5, world.Corridor)
	}
	return l
}

func TestApplyLocksChokepointOnGrid(t *testing.T) {
	res := Apply(carvedChain(false), alwaysLock(3), rng.New(1))
	if len(res.Locks) != 1 || res.Locks[0].Connection != 1 {
		t.Fatalf("locks = %+v, want one on connection 1", res.Locks)
	}
	if rooms := walkableAroundLocks(t, carvedChain(false).Grid, res); len(rooms) != 0 {
		t.Errorf("rooms %v reachable past the lock", rooms)
	}
}

func TestApplySkipsLocksWithGridBypass(t *testing.T) {
	if res := Apply(carvedChain(true), alwaysLock(3), rng.New(1)); len(res.Locks) != 0 {
		t.Errorf("locked %+v although a corridor runs round the door", res.Locks)
	}
}

func TestGeneratedLocksHoldOnGrid(t *testing.T) {
	cfg := config.Default()
	cfg.Width, cfg.Height, cfg.RoomCount = 60, 40, 8
	cfg.Progression = alwaysLock(6)
	total := 0
	for _, style := range []config.CorridorStyle{config.CorridorLShape, config.CorridorAStar} {
		cfg.BSP.Corridor = style
		for s := uint32(0); s < 40; s++ {
			bundle := seed.Derive(s)
			ctx := generator.NewContext(cfg, bundle, world.NewGrid(cfg.Width, cfg.Height), nil)
			g, _ := generator.NewRegistry().New(config.AlgorithmBSP)
			if err := generator.Run(ctx, g); err != nil {
				t.Fatal(err)
			}
			res := Apply(ctx.Layout(), cfg.Progression, bundle.Rand(seed.Details))
			total += len(res.Locks)
			if rooms := walkableAroundLocks(t, ctx.Grid, res); len(rooms) != 0 {
				t.Errorf("%s seed %d: rooms %v are behind a lock but walkable without a key", style, s, rooms)
			}
		}
	}
	if total == 0 {
		t.Error("no locks placed in any layout")
	}
}

// walkableAroundLocks walls off every locked door, walks the grid from the
// entrance, and returns the ids of rooms it reaches that the room graph says
// need a key.
func walkableAroundLocks(t *testing.T, grid *world.Grid, res *Result) []int {
	t.Helper()
	shut := make(map[world.Point]bool)
	for _, l := range res.Locks {
		door := res.Connections[l.Connection].Door
		if door == nil {
			t.Fatalf("lock on connection %d has no door cell", l.Connection)
		}
		shut[*door] = true
	}
	g := gameworld.BuildGraph(res.Rooms, res.Connections)
	open := Reachable(g, 0, res.Locks, nil, -1)

	visited := world.NewBitGrid(grid.Width(), grid.Height())
	region.BFSFill(grid.Width(), grid.Height(), res.Rooms[0].Center(), func(x, y int) bool {
		return grid.Get(x, y).IsWalkable() && !shut[world.Pt(x, y)]
	}, visited)

	var rooms []int
	for i, r := range res.Rooms {
		c := r.Center()
		if visited.Get(c.X, c.Y) && !open.Has(i) {
			rooms = append(rooms, r.ID)
		}
	}
	return rooms
}
