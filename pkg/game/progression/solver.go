package progression

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	gameworld "dungeonforge/pkg/game/world"
)

// maxKeyedStates caps the (room, key set) states the keyed path search visits
const maxKeyedStates = 1 << 20

// keyIndex maps each lock to its bit, and each room index to the mask of keys found there.
type keyIndex struct {
	lockBit map[int]uint64 // connection index -> bit
	inRoom  map[int]uint64 // room index -> key bits
}

func indexKeys(g *gameworld.Graph, locks []Lock, keys []Key) keyIndex {
	ki := keyIndex{lockBit: make(map[int]uint64, len(locks)), inRoom: make(map[int]uint64, len(keys))}
	typeBit := make(map[string]uint64, len(locks))
	for i, l := range locks {
		bit := uint64(1) << uint(i%64)
		if b, ok := typeBit[l.KeyType]; ok {
			bit = b
		}
		typeBit[l.KeyType] = bit
		ki.lockBit[l.Connection] |= bit
	}
	for _, k := range keys {
		idx, ok := g.Index[k.Room]
		if !ok {
			continue
		}
		ki.inRoom[idx] |= typeBit[k.KeyType]
	}
	return ki
}

// opens reports whether the connection can be crossed with the held keys
func (ki keyIndex) opens(conn int, held uint64) bool {
	need, locked := ki.lockBit[conn]
	return !locked || held&need == need
}

// Reachable returns the room indices a player can reach from entrance by
// repeatedly walking every open connection and picking up every key found,
// until nothing changes. The connection at index blocked (use -1 for none) is
// never crossed.
func Reachable(g *gameworld.Graph, entrance int, locks []Lock, keys []Key, blocked int) mapset.Set[int] {
	ki := indexKeys(g, locks, keys)
	reached := mapset.New[int]()
	if entrance < 0 || entrance >= g.Len() {
		return reached
	}

	var held uint64
	// Each pass either picks up a new key or reaches the fixed point
	for pass := 0; pass <= len(locks)+1; pass++ {
		reached = mapset.New[int]()
		reached.Put(entrance)
		q := queue.New[int]()
		q.Enqueue(entrance)
		for !q.Empty() {
			cur := q.Dequeue()
			for _, e := range g.Adjacent[cur] {
				if e.Connection == blocked || reached.Has(e.To) || !ki.opens(e.Connection, held) {
					continue
				}
				reached.Put(e.To)
				q.Enqueue(e.To)
			}
		}
		next := held
		reached.Each(func(room int) {
			next |= ki.inRoom[room]
		})
		if next == held {
			break
		}
		held = next
	}
	return reached
}

// Solvable reports whether every room can be reached from entrance given the keys
func Solvable(g *gameworld.Graph, entrance int, locks []Lock, keys []Key) bool {
	return Reachable(g, entrance, locks, keys, -1).Size() == g.Len()
}

type keyedState struct {
	room int
	held uint64
}

// ShortestKeyedPath returns the shortest room sequence (as room ids) from room
// index from to room index to, where a locked connection may only be crossed
// once its key has been picked up on the way. Keys are collected on entering a
// room. The search gives up after maxKeyedStates states.
func ShortestKeyedPath(g *gameworld.Graph, rooms []gameworld.Room, from, to int, locks []Lock, keys []Key) ([]int, bool) {
	if from < 0 || from >= g.Len() || to < 0 || to >= g.Len() {
		return nil, false
	}
	ki := indexKeys(g, locks, keys)
	start := keyedState{room: from, held: ki.inRoom[from]}
	parent := map[keyedState]keyedState{start: start}
	q := queue.New[keyedState]()
	q.Enqueue(start)

	for !q.Empty() {
		cur := q.Dequeue()
		if cur.room == to {
			return rebuildRooms(parent, cur, rooms), true
		}
		for _, e := range g.Adjacent[cur.room] {
			if !ki.opens(e.Connection, cur.held) {
				continue
			}
			next := keyedState{room: e.To, held: cur.held | ki.inRoom[e.To]}
			if _, seen := parent[next]; seen {
				continue
			}
			if len(parent) >= maxKeyedStates {
				return nil, false
			}
			parent[next] = cur
			q.Enqueue(next)
		}
	}
	return nil, false
}

func rebuildRooms(parent map[keyedState]keyedState, end keyedState, rooms []gameworld.Room) []int {
	var reversed []int
	for cur := end; ; cur = parent[cur] {
		reversed = append(reversed, rooms[cur.room].ID)
		if parent[cur] == cur {
			break
		}
	}
	path := make([]int, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}
