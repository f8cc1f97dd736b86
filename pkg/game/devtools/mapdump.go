// Package devtools provides developer tools for inspecting generated dungeons.
package devtools

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"

	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/dungeon"
	gameworld "dungeonforge/pkg/game/world"
)

const mapDumpFilename = "map.txt"

// Map symbols
const (
	IconWall     = '#'
	IconFloor    = '.'
	IconCorridor = ','
	IconDoor     = '+'
	IconLocked   = 'L'
	IconSecret   = 'S'
	IconEntrance = '<'
	IconExit     = '>'
	IconBoss     = 'B'
	IconTreasure = '$'
	IconKey      = 'k'
)

// Legend describes every map symbol, in the order they are listed in dumps.
const Legend = "# = wall  . = room floor  , = corridor  + = door  L = locked door  S = secret door  < = entrance  > = exit  B = boss  $ = treasure  k = key"

var (
	StyleWall     = color.Style{color.FgGray}
	StyleFloor    = color.Style{color.FgWhite}
	StyleCorridor = color.Style{color.FgGray, color.OpBold}
	StyleDoor     = color.Style{color.FgYellow}
	StyleLocked   = color.Style{color.FgRed, color.OpBold}
	StyleSecret   = color.Style{color.FgMagenta}
	StyleMarker   = color.Style{color.FgGreen, color.OpBold}
	StyleKey      = color.Style{color.FgBlue, color.OpBold}
)

// glyph is one rendered cell: its symbol, terminal style and HTML class.
type glyph struct {
	icon  rune
	style color.Style
	class string
}

func cellGlyph(t world.CellType) glyph {
	switch t {
	case world.Floor:
		return glyph{IconFloor, StyleFloor, "floor"}
	case world.Corridor:
		return glyph{IconCorridor, StyleCorridor, "corridor"}
	case world.Door:
		return glyph{IconDoor, StyleDoor, "door"}
	default:
		return glyph{IconWall, StyleWall, "wall"}
	}
}

// glyphs renders the dungeon into rows of glyphs. Door cells take the type of
// their connection; room markers sit on room centres and keys on their spots.
func glyphs(d *dungeon.Dungeon) [][]glyph {
	rows := make([][]glyph, d.Height())
	for y := range rows {
		rows[y] = make([]glyph, d.Width())
	}
	d.Grid.ForEachCell(func(x, y int, t world.CellType) {
		rows[y][x] = cellGlyph(t)
	})
	put := func(p world.Point, g glyph) {
		if d.Grid.InBounds(p.X, p.Y) {
			rows[p.Y][p.X] = g
		}
	}

	for _, c := range d.Connections {
		if c.Door == nil || d.Grid.GetPoint(*c.Door) != world.Door {
			continue
		}
		switch c.Type {
		case gameworld.Locked:
			put(*c.Door, glyph{IconLocked, StyleLocked, "locked"})
		case gameworld.Secret:
			put(*c.Door, glyph{IconSecret, StyleSecret, "secret"})
		}
	}
	for _, r := range d.Rooms {
		switch r.Type {
		case gameworld.Entrance:
			put(r.Center(), glyph{IconEntrance, StyleMarker, "marker"})
		case gameworld.Exit:
			put(r.Center(), glyph{IconExit, StyleMarker, "marker"})
		case gameworld.Boss:
			put(r.Center(), glyph{IconBoss, StyleLocked, "boss"})
		case gameworld.Treasure:
			put(r.Center(), glyph{IconTreasure, StyleDoor, "treasure"})
		}
	}
	for _, k := range d.Keys {
		put(k.Position, glyph{IconKey, StyleKey, "key"})
	}
	return rows
}

// WriteMap writes the dungeon as text, one line per row. When styled is true
// every symbol is wrapped in its terminal colour.
func WriteMap(w io.Writer, d *dungeon.Dungeon, styled bool) error {
	bw := bufio.NewWriter(w)
	for _, row := range glyphs(d) {
		for _, g := range row {
			if styled {
				bw.WriteString(g.style.Sprint(string(g.icon)))
			} else {
				bw.WriteRune(g.icon)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// MapString returns the unstyled map
func MapString(d *dungeon.Dungeon) string {
	var sb strings.Builder
	WriteMap(&sb, d, false)
	return sb.String()
}

// WriteDump writes a full debug dump: metadata, legend, map, and every room,
// connection, lock and key. The format is key: value lines in fixed sections
// so it reads well for people and diffs cleanly between runs.
func WriteDump(w io.Writer, d *dungeon.Dungeon) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "=== DUNGEON DUMP ===")
	fmt.Fprintln(bw, "")
	fmt.Fprintln(bw, "--- Metadata ---")
	fmt.Fprintf(bw, "seed: %d\n", d.Seeds.Primary)
	fmt.Fprintf(bw, "share_code: %s\n", d.ShareCode())
	fmt.Fprintf(bw, "checksum: %s\n", d.Checksum)
	fmt.Fprintf(bw, "algorithm: %s\n", d.Config.Algorithm)
	fmt.Fprintf(bw, "grid_width: %d\n", d.Width())
	fmt.Fprintf(bw, "grid_height: %d\n", d.Height())
	fmt.Fprintf(bw, "coordinate_system: x,y (0-based, x=horizontal, y=vertical)\n")
	fmt.Fprintf(bw, "rooms: %d\n", len(d.Rooms))
	fmt.Fprintf(bw, "connections: %d\n", len(d.Connections))
	fmt.Fprintf(bw, "locks: %d\n", len(d.Locks))
	fmt.Fprintf(bw, "entrance: %d\n", d.Entrance)
	fmt.Fprintf(bw, "exit: %d\n", d.Exit)
	fmt.Fprintf(bw, "solution_path: %v\n", d.Path)
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "--- Legend ---")
	fmt.Fprintln(bw, Legend)
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "--- Map ---")
	if err := WriteMap(bw, d, false); err != nil {
		return err
	}
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "Rooms:")
	for _, r := range d.Rooms {
		fmt.Fprintf(bw, "  id: %d type: %s name: %q x: %d y: %d width: %d height: %d\n",
			r.ID, r.Type, r.Name, r.Rect.X, r.Rect.Y, r.Rect.Width, r.Rect.Height)
	}
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "Connections:")
	for i, c := range d.Connections {
		door := "none"
		if c.Door != nil {
			door = fmt.Sprintf("%d,%d", c.Door.X, c.Door.Y)
		}
		lock := "none"
		if l, ok := d.LockOn(i); ok {
			lock = l.KeyType
		}
		fmt.Fprintf(bw, "  index: %d a: %d b: %d type: %s visible: %v door: %s lock: %s path_len: %d tags: %q\n",
			i, c.A, c.B, c.Type, c.Visible, door, lock, len(c.Path), c.Tags)
	}
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "Locks:")
	if len(d.Locks) == 0 {
		fmt.Fprintln(bw, "  (none)")
	}
	for _, l := range d.Locks {
		c := d.Connections[l.Connection]
		fmt.Fprintf(bw, "  connection: %d a: %d b: %d key_type: %q\n", l.Connection, c.A, c.B, l.KeyType)
	}
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "Keys:")
	if len(d.Keys) == 0 {
		fmt.Fprintln(bw, "  (none)")
	}
	for _, k := range d.Keys {
		fmt.Fprintf(bw, "  room: %d x: %d y: %d key_type: %q\n", k.Room, k.Position.X, k.Position.Y, k.KeyType)
	}
	fmt.Fprintln(bw, "")

	fmt.Fprintln(bw, "=== END DUNGEON DUMP ===")
	return bw.Flush()
}

// DumpToFile writes WriteDump output to path (map.txt when empty) and returns
// the absolute path written.
func DumpToFile(d *dungeon.Dungeon, path string) (string, error) {
	if d == nil || d.Grid == nil {
		return "", fmt.Errorf("no dungeon")
	}
	if path == "" {
		path = mapDumpFilename
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteDump(f, d); err != nil {
		return absPath, err
	}
	if err := f.Sync(); err != nil {
		return absPath, err
	}
	return absPath, nil
}
