// Package progression turns a connected room layout into a lock-and-key
// puzzle that is guaranteed to be solvable from the entrance.
package progression

import (
	"cmp"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"dungeonforge/pkg/engine/rng"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	gameworld "dungeonforge/pkg/game/world"
)

// Lock gates one connection behind a key type.
type Lock struct {
	Connection int // index into the connection slice
	KeyType    string
}

// Key opens every lock of its type.
type Key struct {
	Room     int // room id
	Position world.Point
	KeyType  string
}

// treasureChance is the probability that a spare dead end becomes a treasure room
const treasureChance = 0.5

// Result is the progression layered over a layout.
type Result struct {
	Rooms       []gameworld.Room
	Connections []gameworld.Connection
	Locks       []Lock
	Keys        []Key
	Entrance    int // room id
	Exit        int // room id
	// Depth is the hop distance of each room (by index) from the entrance before locking.
	Depth []int
	// Path is the shortest entrance-to-exit room sequence honouring key order.
	Path     []int
	Solvable bool
}

// Apply types the rooms, places locks and keys, and verifies solvability.
// The layout is not modified; the result holds updated copies. r should be a
// stream dedicated to progression.
func Apply(layout *gameworld.Layout, opts config.ProgressionOptions, r *rng.Rand) *Result {
	res := &Result{
		Rooms:       slices.Clone(layout.Rooms),
		Connections: make([]gameworld.Connection, len(layout.Connections)),
		Entrance:    -1,
		Exit:        -1,
	}
	for i, c := range layout.Connections {
		res.Connections[i] = c.Clone()
	}
	if len(res.Rooms) == 0 {
		res.Solvable = true
		return res
	}

	g := gameworld.BuildGraph(res.Rooms, res.Connections)
	res.Depth = g.Distances(0, nil)
	exit := deepestRoom(res.Depth)
	res.Entrance = res.Rooms[0].ID
	res.Exit = res.Rooms[exit].ID
	assignRoomTypes(res.Rooms, g, res.Depth, exit, r)

	placeLocks(res, g, newGridGate(layout.Grid), opts, r)

	res.Solvable = Solvable(g, 0, res.Locks, res.Keys)
	res.Path, _ = ShortestKeyedPath(g, res.Rooms, 0, exit, res.Locks, res.Keys)
	return res
}

// deepestRoom returns the index with the greatest distance; the lowest index wins ties.
func deepestRoom(depth []int) int {
	best := 0
	for i, d := range depth {
		if d > depth[best] {
			best = i
		}
	}
	return best
}

// assignRoomTypes marks the entrance and exit, turns the deepest remaining
// dead end into a boss room when there are at least four rooms, and makes
// other dead ends treasure rooms at random.
func assignRoomTypes(rooms []gameworld.Room, g *gameworld.Graph, depth []int, exit int, r *rng.Rand) {
	rooms[0].Type = gameworld.Entrance
	if exit != 0 {
		rooms[exit].Type = gameworld.Exit
	}

	var deadEnds []int
	for i := 1; i < len(rooms); i++ {
		if i != exit && g.Degree(i) == 1 {
			deadEnds = append(deadEnds, i)
		}
	}
	slices.SortStableFunc(deadEnds, func(a, b int) int {
		return cmp.Compare(depth[b], depth[a])
	})
	if len(rooms) >= 4 && len(deadEnds) > 0 {
		rooms[deadEnds[0]].Type = gameworld.Boss
		deadEnds = deadEnds[1:]
	}
	for _, i := range deadEnds {
		if r.Probability(treasureChance) {
			rooms[i].Type = gameworld.Treasure
		}
	}
}

// placeLocks walks candidate connections deepest first and locks those that
// pass the probability roll, the lock and key budget and the degree check, and
// for which a key room exists on the entrance side. With a grid, a lock is also
// dropped when the carved corridors offer a way round its door.
func placeLocks(res *Result, g *gameworld.Graph, gate *gridGate, opts config.ProgressionOptions, r *rng.Rand) {
	budget := min(opts.MaxLocks, len(opts.KeyTypes), config.MaxLocks)
	if budget == 0 {
		return
	}

	candidates := make([]int, 0, len(res.Connections))
	for ci, c := range res.Connections {
		_, okA := g.Index[c.A]
		_, okB := g.Index[c.B]
		// Hidden passages stay unlocked
		if !okA || !okB || c.Type == gameworld.Secret {
			continue
		}
		candidates = append(candidates, ci)
	}
	connDepth := func(ci int) int {
		c := res.Connections[ci]
		return max(res.Depth[g.Index[c.A]], res.Depth[g.Index[c.B]])
	}
	slices.SortStableFunc(candidates, func(a, b int) int {
		return cmp.Compare(connDepth(b), connDepth(a))
	})

	for _, ci := range candidates {
		if len(res.Locks) == budget {
			break
		}
		if !r.Probability(opts.LockProbability) {
			continue
		}
		c := res.Connections[ci]
		a, b := g.Index[c.A], g.Index[c.B]
		// Never lock the only way into or out of a room
		if g.Degree(a) <= 1 || g.Degree(b) <= 1 {
			continue
		}

		// Recomputed per candidate: every lock placed so far changes reachability
		reach := Reachable(g, 0, res.Locks, res.Keys, ci)
		if !reach.Has(a) && !reach.Has(b) {
			continue
		}
		keyRoom, ok := chooseKeyRoom(reach, r)
		if !ok {
			continue
		}

		keyType := opts.KeyTypes[len(res.Locks)]
		lock := Lock{Connection: ci, KeyType: keyType}
		key := Key{Room: res.Rooms[keyRoom].ID, Position: keySpot(res.Rooms[keyRoom].Rect, r), KeyType: keyType}
		locks := append(slices.Clone(res.Locks), lock)
		keys := append(slices.Clone(res.Keys), key)
		if !Solvable(g, 0, locks, keys) {
			continue
		}
		if gate != nil && !gate.holds(g, res.Rooms, res.Connections, locks) {
			continue
		}
		res.Locks, res.Keys = locks, keys
		res.Connections[ci].Type = gameworld.Locked
		res.Connections[ci].Visible = true
		res.Connections[ci].Tags = append(res.Connections[ci].Tags, "lock:"+keyType)
	}
}

// chooseKeyRoom picks a reachable room at random, avoiding the entrance when
// any other room is available.
func chooseKeyRoom(reach mapset.Set[int], r *rng.Rand) (int, bool) {
	var rooms []int
	reach.Each(func(i int) {
		if i != 0 {
			rooms = append(rooms, i)
		}
	})
	if len(rooms) == 0 {
		if reach.Has(0) {
			return 0, true
		}
		return 0, false
	}
	slices.Sort(rooms)
	return rng.Choice(r, rooms), true
}

// keySpot picks a cell inside the room
func keySpot(rect world.Rect, r *rng.Rand) world.Point {
	return world.Point{
		X: r.Range(rect.X, rect.Right()-1),
		Y: r.Range(rect.Y, rect.Bottom()-1),
	}
}
