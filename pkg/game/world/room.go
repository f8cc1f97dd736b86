// Package world provides the dungeon-level layout types built on top of the
// generic engine/world grid primitives: rooms, connections and their graph.
package world

import (
	"dungeonforge/pkg/engine/world"
)

// RoomType is the semantic role of a room.
type RoomType int

const (
	Normal RoomType = iota
	Entrance
	Exit
	Treasure
	Boss
)

// String returns the string representation of a room type
func (t RoomType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Entrance:
		return "entrance"
	case Exit:
		return "exit"
	case Treasure:
		return "treasure"
	case Boss:
		return "boss"
	default:
		return "unknown"
	}
}

// Room is a rectangular area carved as floor.
type Room struct {
	ID   int
	Rect world.Rect
	Type RoomType
	// Seed is the isolated sub-seed for per-room detail generation.
	Seed uint64
	Name string
}

// Center returns the center cell of the room
func (r Room) Center() world.Point {
	return r.Rect.Center()
}

// Contains returns true if the point lies inside the room
func (r Room) Contains(p world.Point) bool {
	return r.Rect.ContainsPoint(p)
}

// RoomByID returns the room with the given id, or false.
func RoomByID(rooms []Room, id int) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}
