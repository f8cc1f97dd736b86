package world

import (
	"github.com/zyedidia/generic/queue"
)

// Edge is one side of a connection as seen from a room.
type Edge struct {
	To         int // room index
	Connection int // connection index
}

// Graph is the room adjacency induced by connections. Rooms are addressed by
// their index in the room slice; Index maps room ids to indices.
type Graph struct {
	Adjacent [][]Edge
	Index    map[int]int
}

// BuildGraph builds the adjacency of rooms. Connections naming unknown rooms
// are skipped. Edge lists keep connection order.
func BuildGraph(rooms []Room, conns []Connection) *Graph {
	g := &Graph{
		Adjacent: make([][]Edge, len(rooms)),
		Index:    make(map[int]int, len(rooms)),
	}
	for i, r := range rooms {
		if _, dup := g.Index[r.ID]; !dup {
			g.Index[r.ID] = i
		}
	}
	for ci, c := range conns {
		a, okA := g.Index[c.A]
		b, okB := g.Index[c.B]
		if !okA || !okB {
			continue
		}
		g.Adjacent[a] = append(g.Adjacent[a], Edge{To: b, Connection: ci})
		if a != b {
			g.Adjacent[b] = append(g.Adjacent[b], Edge{To: a, Connection: ci})
		}
	}
	return g
}

// Len returns the number of rooms
func (g *Graph) Len() int {
	return len(g.Adjacent)
}

// Degree returns the number of connections touching room index i
func (g *Graph) Degree(i int) int {
	return len(g.Adjacent[i])
}

// Distances returns the BFS hop distance of every room from start, with -1
// for unreachable rooms. passable may be nil; otherwise edges it rejects are skipped.
func (g *Graph) Distances(start int, passable func(conn int) bool) []int {
	dist := make([]int, g.Len())
	for i := range dist {
		dist[i] = -1
	}
	if start < 0 || start >= g.Len() {
		return dist
	}
	dist[start] = 0
	q := queue.New[int]()
	q.Enqueue(start)
	for !q.Empty() {
		cur := q.Dequeue()
		for _, e := range g.Adjacent[cur] {
			if dist[e.To] >= 0 {
				continue
			}
			if passable != nil && !passable(e.Connection) {
				continue
			}
			dist[e.To] = dist[cur] + 1
			q.Enqueue(e.To)
		}
	}
	return dist
}

// Connected reports whether every room is reachable from room index 0
func (g *Graph) Connected() bool {
	for _, d := range g.Distances(0, nil) {
		if d < 0 {
			return false
		}
	}
	return true
}
