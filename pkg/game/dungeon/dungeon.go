// Package dungeon is the entry point of generation. It runs a structural
// generator, layers progression over the result, names the rooms, checks every
// invariant and seals the artifact with a checksum.
package dungeon

import (
	"time"

	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/progression"
	"dungeonforge/pkg/game/seed"
	"dungeonforge/pkg/game/validate"
	gameworld "dungeonforge/pkg/game/world"
)

// Dungeon is a finished, validated layout. It must be treated as read-only;
// callers that need to edit it should work on copies.
type Dungeon struct {
	Config      config.Config
	Seeds       seed.Bundle
	Grid        *world.Grid
	Rooms       []gameworld.Room
	Connections []gameworld.Connection
	Locks       []progression.Lock
	Keys        []progression.Key

	// Entrance and Exit are room ids, -1 when the dungeon has no rooms.
	Entrance int
	Exit     int
	// Path is the shortest entrance-to-exit room sequence that honours key order.
	Path []int

	Checksum string
	Stats    Stats
}

// PhaseStat describes one completed phase.
type PhaseStat struct {
	Name     string
	Duration time.Duration
	// Walkable is the number of walkable cells once the phase finished.
	Walkable int
}

// Stats is run metadata. None of it feeds the checksum.
type Stats struct {
	Algorithm config.Algorithm
	RunID     string
	Phases    []PhaseStat
	Pool      world.PoolStats
}

// Width returns the number of columns
func (d *Dungeon) Width() int {
	return d.Grid.Width()
}

// Height returns the number of rows
func (d *Dungeon) Height() int {
	return d.Grid.Height()
}

// CellTypes returns a row-major copy of the grid
func (d *Dungeon) CellTypes() [][]world.CellType {
	return d.Grid.Rows()
}

// Walkable returns a row-major walkability mask
func (d *Dungeon) Walkable() [][]bool {
	rows := make([][]bool, d.Grid.Height())
	for y := range rows {
		rows[y] = make([]bool, d.Grid.Width())
	}
	d.Grid.ForEachCell(func(x, y int, t world.CellType) {
		rows[y][x] = t.IsWalkable()
	})
	return rows
}

// Room looks a room up by id
func (d *Dungeon) Room(id int) (gameworld.Room, bool) {
	return gameworld.RoomByID(d.Rooms, id)
}

// RoomAt returns the room containing p
func (d *Dungeon) RoomAt(p world.Point) (gameworld.Room, bool) {
	for _, r := range d.Rooms {
		if r.Contains(p) {
			return r, true
		}
	}
	return gameworld.Room{}, false
}

// LockOn returns the lock on a connection index, if any
func (d *Dungeon) LockOn(conn int) (progression.Lock, bool) {
	for _, l := range d.Locks {
		if l.Connection == conn {
			return l, true
		}
	}
	return progression.Lock{}, false
}

// ShareCode returns the share code that regenerates this dungeon with its config.
func (d *Dungeon) ShareCode() string {
	return seed.Encode(d.Seeds)
}

// Validate re-runs the invariant checks over the artifact.
func (d *Dungeon) Validate() *validate.Report {
	return validate.Check(d.validateInput())
}

func (d *Dungeon) validateInput() validate.Input {
	return validate.Input{
		Width:       d.Grid.Width(),
		Height:      d.Grid.Height(),
		Spacing:     d.Config.Spacing,
		Rooms:       d.Rooms,
		Connections: d.Connections,
		Locks:       d.Locks,
		Keys:        d.Keys,
	}
}
