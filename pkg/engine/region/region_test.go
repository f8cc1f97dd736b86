package region

import (
	"slices"
	"testing"

	"dungeonforge/pkg/engine/world"
)

// gridFrom builds a grid from rows of '#' (wall) and '.' (floor).
func gridFrom(rows ...string) *world.Grid {
	g := world.NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '.' {
				g.Set(x, y, world.Floor)
			}
		}
	}
	return g
}

var caveRows = []string{
	"#########",
	"#..#....#",
	"#..#.##.#",
	"####.#..#",
	"#....#.##",
	"#.####..#",
	"#...#.#.#",
	"#########",
}

func sorted(points []uint32) []uint32 {
	out := slices.Clone(points)
	slices.Sort(out)
	return out
}

func TestScanlineAndBFSFillAgree(t *testing.T) {
	g := gridFrom(caveRows...)
	g.ForEachCell(func(x, y int, c world.CellType) {
		start := world.Pt(x, y)
		for _, target := range []world.CellType{world.Floor, world.Wall} {
			a := sorted(ScanlineFill(g, start, target, nil))
			b := sorted(FillType(g, start, target, nil))
			if !slices.Equal(a, b) {
				t.Fatalf("fill from %v (%v): scanline %v != bfs %v", start, target, a, b)
			}
		}
	})
}

func TestScanlineFill_SkipsVisited(t *testing.T) {
	g := gridFrom(caveRows...)
	visited := world.NewBitGrid(g.Width(), g.Height())
	first := ScanlineFill(g, world.Pt(1, 1), world.Floor, visited)
	if len(first) != 4 {
		t.Fatalf("len(first) = %d, want 4", len(first))
	}
	if again := ScanlineFill(g, world.Pt(2, 2), world.Floor, visited); again != nil {
		t.Errorf("second fill returned %d points, want none", len(again))
	}
}

func TestScanlineFill_WrongStartType(t *testing.T) {
	g := gridFrom(caveRows...)
	if got := ScanlineFill(g, world.Pt(0, 0), world.Floor, nil); got != nil {
		t.Errorf("fill from wall for floor = %v, want nil", got)
	}
	if got := ScanlineFill(g, world.Pt(-1, 0), world.Wall, nil); got != nil {
		t.Errorf("fill from out of bounds = %v, want nil", got)
	}
}

func TestBFSFill_CustomPredicate(t *testing.T) {
	g := gridFrom(caveRows...)
	// Treat everything except the border as passable.
	points := BFSFill(g.Width(), g.Height(), world.Pt(1, 1), func(x, y int) bool {
		return g.IsPlayablePosition(x, y)
	}, nil)
	want := (g.Width() - 2) * (g.Height() - 2)
	if len(points) != want {
		t.Errorf("len(points) = %d, want %d", len(points), want)
	}
}

func TestFindRegions_RowMajorOrderAndBounds(t *testing.T) {
	g := gridFrom(caveRows...)
	for _, method := range []Method{Scanline, BFS} {
		regions := Finder{Method: method, Pool: world.NewBitGridPool(0, 0)}.FindRegions(g, world.Floor)
		if len(regions) != 3 {
			t.Fatalf("method %d: len(regions) = %d, want 3", method, len(regions))
		}
		first := regions[0]
		if first.ID != 0 || first.Size() != 4 {
			t.Errorf("regions[0] = id %d size %d, want id 0 size 4", first.ID, first.Size())
		}
		if first.Bounds != (world.Rect{X: 1, Y: 1, Width: 2, Height: 2}) {
			t.Errorf("regions[0].Bounds = %+v", first.Bounds)
		}
		total := 0
		for i, r := range regions {
			if r.ID != i {
				t.Errorf("regions[%d].ID = %d", i, r.ID)
			}
			total += r.Size()
		}
		if total != g.Count(world.Floor) {
			t.Errorf("regions cover %d cells, want %d", total, g.Count(world.Floor))
		}
	}
}

func TestFindAllRegions_CoversEveryCell(t *testing.T) {
	g := gridFrom(caveRows...)
	regions := FindAllRegions(g)
	total := 0
	for _, r := range regions {
		total += r.Size()
		r.Each(func(p world.Point) {
			if g.GetPoint(p) != r.Type {
				t.Errorf("region %d contains %v of type %v, want %v", r.ID, p, g.GetPoint(p), r.Type)
			}
		})
	}
	if total != g.Len() {
		t.Errorf("regions cover %d cells, want %d", total, g.Len())
	}
}

func TestFindLargestRegion_TieGoesToFirst(t *testing.T) {
	g := gridFrom(
		"#######",
		"#..#..#",
		"#######",
	)
	regions := FindRegions(g, world.Floor)
	largest := FindLargestRegion(regions)
	if largest == nil || largest.ID != 0 {
		t.Errorf("FindLargestRegion = %v, want region 0", largest)
	}
	if FindLargestRegion(nil) != nil {
		t.Error("FindLargestRegion(nil) != nil")
	}
}

func TestAreConnected(t *testing.T) {
	g := gridFrom(caveRows...)
	if !AreConnected(g, world.Pt(4, 1), world.Pt(1, 4)) {
		t.Error("cells joined through the middle column should be connected")
	}
	if AreConnected(g, world.Pt(1, 1), world.Pt(4, 1)) {
		t.Error("separate caverns reported as connected")
	}
	if AreConnected(g, world.Pt(1, 1), world.Pt(0, 0)) {
		t.Error("cells of different types reported as connected")
	}
}

func TestRegion_ContainsAndCentroid(t *testing.T) {
	g := gridFrom(
		"#####",
		"#...#",
		"#...#",
		"#...#",
		"#####",
	)
	r := FindRegions(g, world.Floor)[0]
	if !r.Contains(world.Pt(2, 2)) || r.Contains(world.Pt(0, 0)) {
		t.Error("Contains mismatch")
	}
	if c := r.Centroid(); c != world.Pt(2, 2) {
		t.Errorf("Centroid = %v, want (2,2)", c)
	}
}

func TestShortestPath(t *testing.T) {
	g := gridFrom(
		"#######",
		"#.....#",
		"#####.#",
		"#.....#",
		"#######",
	)
	walk := func(x, y int) int {
		if g.Get(x, y) == world.Wall {
			return -1
		}
		return 1
	}
	path, ok := ShortestPath(g.Width(), g.Height(), world.Pt(1, 1), world.Pt(1, 3), walk, 0)
	if !ok {
		t.Fatal("ShortestPath found no path")
	}
	if len(path) != 11 {
		t.Errorf("len(path) = %d, want 11", len(path))
	}
	if path[0] != world.Pt(1, 1) || path[len(path)-1] != world.Pt(1, 3) {
		t.Errorf("path endpoints = %v..%v", path[0], path[len(path)-1])
	}
	for i := 1; i < len(path); i++ {
		if path[i].Manhattan(path[i-1]) != 1 {
			t.Fatalf("path step %d jumps from %v to %v", i, path[i-1], path[i])
		}
	}

	g.Set(5, 2, world.Wall)
	if _, ok := ShortestPath(g.Width(), g.Height(), world.Pt(1, 1), world.Pt(1, 3), walk, 0); ok {
		t.Error("ShortestPath found a path through a wall")
	}
}

func TestShortestPath_RespectsExpansionCap(t *testing.T) {
	open := func(x, y int) int { return 1 }
	if _, ok := ShortestPath(50, 50, world.Pt(0, 0), world.Pt(49, 49), open, 10); ok {
		t.Error("ShortestPath succeeded within a 10-node budget on a 98-step route")
	}
}
