package dungeon

import (
	"cmp"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/progression"
	"dungeonforge/pkg/game/seed"
	gameworld "dungeonforge/pkg/game/world"
)

// hasher feeds fixed-width big-endian fields into an xxhash digest.
type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *hasher) u64(v uint64) {
	binary.BigEndian.PutUint64(h.buf[:], v)
	h.d.Write(h.buf[:])
}

func (h *hasher) int(v int) {
	h.u64(uint64(int64(v)))
}

func (h *hasher) bool(v bool) {
	if v {
		h.u64(1)
	} else {
		h.u64(0)
	}
}

func (h *hasher) str(s string) {
	h.int(len(s))
	h.d.WriteString(s)
}

func (h *hasher) point(p world.Point) {
	h.int(p.X)
	h.int(p.Y)
}

func (h *hasher) rect(r world.Rect) {
	h.int(r.X)
	h.int(r.Y)
	h.int(r.Width)
	h.int(r.Height)
}

// Checksum hashes everything that identifies a dungeon: the stream seeds, the
// effective config, the grid, and the sorted rooms, connections, locks and keys.
// The bundle timestamp and run statistics are excluded, so regenerating from the
// same bundle and config always reproduces the checksum.
func Checksum(d *Dungeon) string {
	h := &hasher{d: xxhash.New()}

	writeSeeds(h, d.Seeds)
	writeConfig(h, d.Config)

	h.int(d.Grid.Width())
	h.int(d.Grid.Height())
	h.d.Write(d.Grid.Bytes())

	rooms := slices.Clone(d.Rooms)
	slices.SortFunc(rooms, func(a, b gameworld.Room) int {
		return cmp.Compare(a.ID, b.ID)
	})
	h.int(len(rooms))
	for _, r := range rooms {
		h.int(r.ID)
		h.rect(r.Rect)
		h.int(int(r.Type))
		h.u64(r.Seed)
		h.str(r.Name)
	}

	// Connection indices are what locks refer to, so hash locks through the
	// endpoints of their connection rather than the index itself.
	order := make([]int, len(d.Connections))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		a, b := d.Connections[i], d.Connections[j]
		return cmp.Or(cmp.Compare(a.A, b.A), cmp.Compare(a.B, b.B))
	})
	h.int(len(order))
	for _, i := range order {
		writeConnection(h, d.Connections[i])
	}

	locks := slices.Clone(d.Locks)
	slices.SortStableFunc(locks, func(a, b progression.Lock) int {
		ca, cb := d.Connections[a.Connection], d.Connections[b.Connection]
		return cmp.Or(cmp.Compare(ca.A, cb.A), cmp.Compare(ca.B, cb.B), cmp.Compare(a.KeyType, b.KeyType))
	})
	h.int(len(locks))
	for _, l := range locks {
		c := d.Connections[l.Connection]
		h.int(c.A)
		h.int(c.B)
		h.str(l.KeyType)
	}

	keys := slices.Clone(d.Keys)
	slices.SortStableFunc(keys, func(a, b progression.Key) int {
		return cmp.Or(cmp.Compare(a.Room, b.Room), cmp.Compare(a.KeyType, b.KeyType))
	})
	h.int(len(keys))
	for _, k := range keys {
		h.int(k.Room)
		h.point(k.Position)
		h.str(k.KeyType)
	}

	return fmt.Sprintf("%016x", h.d.Sum64())
}

func writeSeeds(h *hasher, b seed.Bundle) {
	h.u64(uint64(b.Version))
	h.u64(uint64(b.Primary))
	h.u64(b.Layout)
	h.u64(b.Rooms)
	h.u64(b.Connections)
	h.u64(b.Details)
}

func writeConfig(h *hasher, cfg config.Config) {
	// Struct fields marshal in declaration order, so the encoding is stable.
	raw, err := json.Marshal(cfg)
	if err != nil {
		panic(fmt.Sprintf("dungeon: config is not serialisable: %v", err))
	}
	h.int(len(raw))
	h.d.Write(raw)
}

func writeConnection(h *hasher, c gameworld.Connection) {
	h.int(c.A)
	h.int(c.B)
	h.int(int(c.Type))
	h.bool(c.Visible)
	h.bool(c.Door != nil)
	if c.Door != nil {
		h.point(*c.Door)
	}
	h.int(len(c.Path))
	for _, p := range c.Path {
		h.point(p)
	}
	h.int(len(c.Tags))
	for _, t := range c.Tags {
		h.str(t)
	}
}
