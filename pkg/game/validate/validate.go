// Package validate checks a finished dungeon layout against its structural
// invariants. It shares no code with the generators it checks.
package validate

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"dungeonforge/pkg/game/progression"
	gameworld "dungeonforge/pkg/game/world"
)

// ErrViolation is wrapped by every error returned from Report.Errors.
var ErrViolation = errors.New("invariant violation")

// Category groups violations so callers can assert or report selectively.
type Category int

const (
	Bounds Category = iota
	Overlap
	DuplicateID
	DanglingConnection
	EmptyPath
	RepeatedWaypoint
	PathBounds
	Disconnected
	Unsolvable
	KeyMismatch
)

// Categories lists every category in report order
func Categories() []Category {
	return []Category{Bounds, Overlap, DuplicateID, DanglingConnection, EmptyPath, RepeatedWaypoint, PathBounds, Disconnected, Unsolvable, KeyMismatch}
}

// String returns the string representation of a category
func (c Category) String() string {
	switch c {
	case Bounds:
		return "bounds"
	case Overlap:
		return "overlap"
	case DuplicateID:
		return "duplicate-id"
	case DanglingConnection:
		return "dangling-connection"
	case EmptyPath:
		return "empty-path"
	case RepeatedWaypoint:
		return "repeated-waypoint"
	case PathBounds:
		return "path-bounds"
	case Disconnected:
		return "disconnected"
	case Unsolvable:
		return "unsolvable"
	case KeyMismatch:
		return "key-mismatch"
	default:
		return "unknown"
	}
}

// Violation is one broken invariant.
type Violation struct {
	Category Category
	Message  string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Category, v.Message)
}

func (v Violation) Unwrap() error {
	return ErrViolation
}

// Report collects violations per category.
type Report struct {
	byCategory map[Category][]Violation
	count      int
}

func (r *Report) add(c Category, format string, args ...any) {
	if r.byCategory == nil {
		r.byCategory = make(map[Category][]Violation)
	}
	r.byCategory[c] = append(r.byCategory[c], Violation{Category: c, Message: fmt.Sprintf(format, args...)})
	r.count++
}

// Valid returns true when no invariant is broken
func (r *Report) Valid() bool {
	return r.count == 0
}

// Count returns the total number of violations
func (r *Report) Count() int {
	return r.count
}

// Has returns true if the category has at least one violation
func (r *Report) Has(c Category) bool {
	return len(r.byCategory[c]) > 0
}

// Get returns the violations of one category
func (r *Report) Get(c Category) []Violation {
	return r.byCategory[c]
}

// All returns every violation, grouped in category order
func (r *Report) All() []Violation {
	var out []Violation
	for _, c := range Categories() {
		out = append(out, r.byCategory[c]...)
	}
	return out
}

// Errors joins every violation into one error, or nil when valid.
func (r *Report) Errors() error {
	var errs []error
	for _, v := range r.All() {
		errs = append(errs, v)
	}
	return errors.Join(errs...)
}

// Input is everything the validator looks at.
type Input struct {
	Width, Height int
	Spacing       int
	Rooms         []gameworld.Room
	Connections   []gameworld.Connection
	Locks         []progression.Lock
	Keys          []progression.Key
}

// Check runs every invariant and returns the collected report. It never
// modifies its input.
func Check(in Input) *Report {
	r := &Report{}
	checkRooms(r, in)
	ids := checkIDs(r, in.Rooms)
	checkConnections(r, in, ids)
	checkKeys(r, in, ids)
	checkReachability(r, in)
	return r
}

func checkRooms(r *Report, in Input) {
	for i, room := range in.Rooms {
		if room.Rect.Empty() {
			r.add(Bounds, "room %d has non-positive size %dx%d", room.ID, room.Rect.Width, room.Rect.Height)
			continue
		}
		if !room.Rect.Within(in.Width, in.Height) {
			r.add(Bounds, "room %d %+v lies outside the %dx%d grid", room.ID, room.Rect, in.Width, in.Height)
		}
		grown := room.Rect.Expand(in.Spacing)
		for _, other := range in.Rooms[i+1:] {
			if !other.Rect.Empty() && grown.Intersects(other.Rect) {
				r.add(Overlap, "rooms %d and %d are closer than %d cells", room.ID, other.ID, in.Spacing)
			}
		}
	}
}

func checkIDs(r *Report, rooms []gameworld.Room) mapset.Set[int] {
	ids := mapset.New[int]()
	reported := mapset.New[int]()
	for _, room := range rooms {
		if ids.Has(room.ID) {
			if !reported.Has(room.ID) {
				r.add(DuplicateID, "room id %d is used more than once", room.ID)
				reported.Put(room.ID)
			}
			continue
		}
		ids.Put(room.ID)
	}
	return ids
}

func checkConnections(r *Report, in Input, ids mapset.Set[int]) {
	for ci, c := range in.Connections {
		for _, end := range []int{c.A, c.B} {
			if !ids.Has(end) {
				r.add(DanglingConnection, "connection %d references missing room %d", ci, end)
			}
		}
		if len(c.Path) == 0 {
			r.add(EmptyPath, "connection %d (%d-%d) has no path", ci, c.A, c.B)
			continue
		}
		for k, p := range c.Path {
			if p.X < 0 || p.Y < 0 || p.X >= in.Width || p.Y >= in.Height {
				r.add(PathBounds, "connection %d waypoint %d %v lies outside the grid", ci, k, p)
			}
			if k > 0 && p == c.Path[k-1] {
				r.add(RepeatedWaypoint, "connection %d repeats waypoint %v at %d", ci, p, k)
			}
		}
	}
	for i, l := range in.Locks {
		if l.Connection < 0 || l.Connection >= len(in.Connections) {
			r.add(DanglingConnection, "lock %d references missing connection %d", i, l.Connection)
		}
	}
}

// checkKeys requires exactly one key for every lock type, no key without a
// lock, and every key inside an existing room.
func checkKeys(r *Report, in Input, ids mapset.Set[int]) {
	keys := make(map[string]int, len(in.Keys))
	for i, k := range in.Keys {
		keys[k.KeyType]++
		if !ids.Has(k.Room) {
			r.add(KeyMismatch, "key %d (%q) lies in missing room %d", i, k.KeyType, k.Room)
		}
	}
	locked := mapset.New[string]()
	for i, l := range in.Locks {
		if locked.Has(l.KeyType) {
			continue
		}
		locked.Put(l.KeyType)
		if n := keys[l.KeyType]; n != 1 {
			r.add(KeyMismatch, "lock %d (%q) has %d matching keys, want 1", i, l.KeyType, n)
		}
	}
	for i, k := range in.Keys {
		if !locked.Has(k.KeyType) {
			r.add(KeyMismatch, "key %d (%q) opens no lock", i, k.KeyType)
		}
	}
}

// checkReachability requires the room graph to be connected ignoring locks,
// and every room to be reachable once locks and keys are taken into account.
func checkReachability(r *Report, in Input) {
	if len(in.Rooms) == 0 {
		return
	}
	g := gameworld.BuildGraph(in.Rooms, in.Connections)
	entrance := 0
	for i, room := range in.Rooms {
		if room.Type == gameworld.Entrance {
			entrance = i
			break
		}
	}

	open := g.Distances(entrance, nil)
	for i, d := range open {
		if d < 0 {
			r.add(Disconnected, "room %d cannot be reached from the entrance", in.Rooms[i].ID)
		}
	}
	if r.Has(Disconnected) || len(in.Locks) == 0 {
		return
	}

	for i, ok := range unlockable(g, entrance, in) {
		if !ok {
			r.add(Unsolvable, "room %d stays locked away from the entrance", in.Rooms[i].ID)
		}
	}
}

// unlockable walks from the entrance, picking up keys and opening their locks,
// until no new key turns up. It reports which rooms were reached.
func unlockable(g *gameworld.Graph, entrance int, in Input) []bool {
	lockType := make(map[int]string, len(in.Locks))
	for _, l := range in.Locks {
		lockType[l.Connection] = l.KeyType
	}
	held := mapset.New[string]()
	reached := make([]bool, g.Len())
	for range len(in.Keys) + 1 {
		dist := g.Distances(entrance, func(conn int) bool {
			kt, locked := lockType[conn]
			return !locked || held.Has(kt)
		})
		before := held.Size()
		for i, d := range dist {
			reached[i] = d >= 0
		}
		for _, k := range in.Keys {
			if idx, ok := g.Index[k.Room]; ok && reached[idx] {
				held.Put(k.KeyType)
			}
		}
		if held.Size() == before {
			break
		}
	}
	return reached
}
