// Package theme gives rooms their names. The dungeon is split into depth bands,
// each with a functional type and its own pool of names; a room's detail seed
// picks from its band's pool, so names never consume generation streams.
package theme

import (
	"fmt"

	"dungeonforge/pkg/engine/rng"
	gameworld "dungeonforge/pkg/game/world"
)

// Type is the functional flavour of a depth band.
type Type int

const (
	Barracks   Type = iota // Guard posts, bunk rooms, mess halls
	Archive                // Libraries, scriptoria, map rooms
	Storehouse             // Cellars, granaries, armouries
	Workings               // Mine shafts, forges, cisterns
	Sanctum                // Chapels, shrines, ossuaries
	Depths                 // Flooded halls, collapsed galleries
)

// typeCount is the number of functional types (for cycling).
const typeCount = 6

// bandSize is how many hops from the entrance share one type.
const bandSize = 2

// adjectiveChance is the probability a plain room name gets an adjective.
const adjectiveChance = 0.4

// String returns the string representation of a type
func (t Type) String() string {
	switch t {
	case Barracks:
		return "barracks"
	case Archive:
		return "archive"
	case Storehouse:
		return "storehouse"
	case Workings:
		return "workings"
	case Sanctum:
		return "sanctum"
	case Depths:
		return "depths"
	default:
		return "unknown"
	}
}

// ForDepth returns the functional type for a room depth (hops from the entrance).
// Types cycle so long dungeons keep changing character. Unreachable rooms
// (negative depth) use the first type.
func ForDepth(depth int) Type {
	if depth <= 0 {
		return Barracks
	}
	return Type((depth / bandSize) % typeCount)
}

// NamesForType returns base names and adjectives for the given functional type.
func NamesForType(t Type) (bases []string, adjectives []string) {
	adjectives = []string{
		"Abandoned", "Collapsed", "Forgotten", "Flooded",
		"Silent", "Sealed", "Crumbling", "Overgrown",
	}
	switch t {
	case Barracks:
		bases = []string{
			"Guard Post", "Bunk Room", "Mess Hall", "Drill Yard", "Watch Room",
			"Officers' Quarters", "Sally Port", "Barracks", "Muster Hall", "Gatehouse",
		}
	case Archive:
		bases = []string{
			"Library", "Scriptorium", "Map Room", "Reading Room", "Record Vault",
			"Study", "Copyist's Cell", "Index Hall", "Scroll Store", "Lectern Hall",
		}
	case Storehouse:
		bases = []string{
			"Cellar", "Granary", "Armoury", "Larder", "Wine Vault",
			"Quartermaster's Store", "Powder Room", "Cold Store", "Tack Room", "Undercroft",
		}
	case Workings:
		bases = []string{
			"Mine Shaft", "Forge", "Cistern", "Smelting Hall", "Pump Room",
			"Ore Chute", "Quarry Face", "Bellows Room", "Sluice", "Kiln",
		}
	case Sanctum:
		bases = []string{
			"Chapel", "Shrine", "Ossuary", "Reliquary", "Cloister",
			"Catacomb", "Vestry", "Altar Room", "Crypt", "Meditation Cell",
		}
	case Depths:
		bases = []string{
			"Flooded Hall", "Collapsed Gallery", "Sinkhole", "Fungal Grotto", "Echoing Cavern",
			"Root Chamber", "Underlake", "Chasm Ledge", "Drowned Stair", "Hollow",
		}
	default:
		bases = []string{"Chamber", "Hall", "Room", "Gallery", "Cell"}
	}
	return bases, adjectives
}

// Name returns the name of a room at the given depth. Special room types have
// fixed names; others draw from their band using the room's own seed, so the
// same room always gets the same name.
func Name(room gameworld.Room, depth int) string {
	switch room.Type {
	case gameworld.Entrance:
		return "Entrance Hall"
	case gameworld.Exit:
		return "Descending Stair"
	}

	r := rng.New(room.Seed)
	bases, adjectives := NamesForType(ForDepth(depth))
	base := rng.Choice(r, bases)

	switch room.Type {
	case gameworld.Boss:
		return "Lair beneath the " + base
	case gameworld.Treasure:
		return "Hidden " + base
	}
	if r.Probability(adjectiveChance) {
		return rng.Choice(r, adjectives) + " " + base
	}
	return base
}

// Apply names every room in place. depth is indexed like rooms; a missing entry
// counts as unreachable. Repeated names get a numeric suffix in room order.
func Apply(rooms []gameworld.Room, depth []int) {
	seen := make(map[string]int, len(rooms))
	for i := range rooms {
		d := -1
		if i < len(depth) {
			d = depth[i]
		}
		name := Name(rooms[i], d)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s %d", name, n)
		}
		rooms[i].Name = name
	}
}
