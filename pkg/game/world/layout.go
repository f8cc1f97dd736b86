package world

import "dungeonforge/pkg/engine/world"

// Layout is the structural output of a generator: a carved grid plus the rooms
// and connections laid into it.
type Layout struct {
	Grid        *world.Grid
	Rooms       []Room
	Connections []Connection
}

// Graph builds the room adjacency of the layout
func (l *Layout) Graph() *Graph {
	return BuildGraph(l.Rooms, l.Connections)
}

// Connected reports whether two rooms already share a connection
func (l *Layout) Connected(a, b int) bool {
	for _, c := range l.Connections {
		if c.Joins(a, b) {
			return true
		}
	}
	return false
}
