package world

import (
	"slices"

	"dungeonforge/pkg/engine/world"
)

// ConnectionType is how a connection is traversed.
type ConnectionType int

const (
	Corridor ConnectionType = iota
	Door
	Locked
	Secret
)

// String returns the string representation of a connection type
func (t ConnectionType) String() string {
	switch t {
	case Corridor:
		return "corridor"
	case Door:
		return "door"
	case Locked:
		return "locked"
	case Secret:
		return "secret"
	default:
		return "unknown"
	}
}

// Connection joins two rooms. It is unordered: A is always the smaller id and
// Path runs from room A to room B.
type Connection struct {
	A, B int
	Path []world.Point
	Type ConnectionType
	// Door is the door cell, when the connection has one.
	Door    *world.Point
	Visible bool
	Tags    []string
}

// NewConnection returns a visible corridor between a and b, normalising the
// endpoint order and reversing the path when needed.
func NewConnection(a, b int, path []world.Point) Connection {
	p := slices.Clone(path)
	if a > b {
		a, b = b, a
		slices.Reverse(p)
	}
	return Connection{A: a, B: b, Path: p, Type: Corridor, Visible: true}
}

// Other returns the endpoint that is not id
func (c Connection) Other(id int) int {
	if c.A == id {
		return c.B
	}
	return c.A
}

// Joins reports whether the connection links a and b in either order
func (c Connection) Joins(a, b int) bool {
	return (c.A == a && c.B == b) || (c.A == b && c.B == a)
}

// HasTag returns true if the connection carries the tag
func (c Connection) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// Clone returns a deep copy
func (c Connection) Clone() Connection {
	out := c
	out.Path = slices.Clone(c.Path)
	out.Tags = slices.Clone(c.Tags)
	if c.Door != nil {
		d := *c.Door
		out.Door = &d
	}
	return out
}
