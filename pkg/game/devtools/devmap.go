package devtools

import (
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/dungeon"
	"dungeonforge/pkg/game/generator"
	"dungeonforge/pkg/game/progression"
	"dungeonforge/pkg/game/seed"
	"dungeonforge/pkg/game/theme"
	gameworld "dungeonforge/pkg/game/world"
)

// Dev map geometry: five 4x4 rooms in a row with a 4-cell gap between each.
const (
	devMapWidth  = 40
	devMapHeight = 12
	devRoomSize  = 4
	devRoomStep  = 8
	devRoomY     = 4
	devHallY     = 5
)

// DevDungeon returns a hand-built 40x12 dungeon that shows every room type and
// every connection type at once: entrance, plain corridor, door, treasure room,
// secret passage to the boss, and a red-locked door to the exit whose key lies
// in the treasure room.
func DevDungeon() *dungeon.Dungeon {
	cfg := config.Default()
	cfg.Width = devMapWidth
	cfg.Height = devMapHeight
	cfg.RoomCount = 5
	cfg.RoomSize = config.SizeRange{Min: devRoomSize, Max: devRoomSize}

	types := []gameworld.RoomType{
		gameworld.Entrance, gameworld.Normal, gameworld.Treasure, gameworld.Boss, gameworld.Exit,
	}
	bundle := seed.Derive(0)
	rooms := make([]gameworld.Room, len(types))
	depth := make([]int, len(types))
	for i, t := range types {
		rooms[i] = gameworld.Room{
			ID:   i,
			Rect: world.Rect{X: 2 + i*devRoomStep, Y: devRoomY, Width: devRoomSize, Height: devRoomSize},
			Type: t,
			Seed: bundle.Sub(seed.Details, uint64(i)),
		}
		depth[i] = i
	}
	theme.Apply(rooms, depth)

	connTypes := []gameworld.ConnectionType{
		gameworld.Corridor, gameworld.Door, gameworld.Secret, gameworld.Locked,
	}
	conns := make([]gameworld.Connection, len(connTypes))
	for i, t := range connTypes {
		from := rooms[i].Rect.Right() - 1
		to := rooms[i+1].Rect.X
		path := make([]world.Point, 0, to-from+1)
		for x := from; x <= to; x++ {
			path = append(path, world.Point{X: x, Y: devHallY})
		}
		c := gameworld.NewConnection(i, i+1, path)
		c.Type = t
		door := world.Point{X: from + 1, Y: devHallY}
		c.Door = &door
		if t == gameworld.Secret {
			c.Visible = false
		}
		if t == gameworld.Locked {
			c.Tags = append(c.Tags, "lock:red")
		}
		conns[i] = c
	}

	grid := world.NewGrid(devMapWidth, devMapHeight)
	generator.Carve(grid, rooms, conns, 1)

	locks := []progression.Lock{{Connection: 3, KeyType: "red"}}
	keys := []progression.Key{{Room: 2, Position: world.Pt(rooms[2].Rect.X, rooms[2].Rect.Y), KeyType: "red"}}

	d := &dungeon.Dungeon{
		Config:      cfg,
		Seeds:       bundle,
		Grid:        grid,
		Rooms:       rooms,
		Connections: conns,
		Locks:       locks,
		Keys:        keys,
		Entrance:    0,
		Exit:        4,
		Path:        []int{0, 1, 2, 3, 4},
	}
	d.Checksum = dungeon.Checksum(d)
	return d
}
