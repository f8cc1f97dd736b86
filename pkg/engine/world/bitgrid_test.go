package world

import "testing"

func TestBitGrid_CountMatchesSetCells(t *testing.T) {
	// 7x5 = 35 cells: one full word plus a 3-bit tail.
	for _, size := range []Point{{7, 5}, {8, 4}, {1, 1}, {33, 1}, {13, 11}} {
		b := NewBitGrid(size.X, size.Y)
		want := 0
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				if (x*7+y*3)%4 == 0 {
					b.Set(x, y, true)
					want++
				}
			}
		}
		if got := b.Count(); got != want {
			t.Errorf("%dx%d Count() = %d, want %d", size.X, size.Y, got, want)
		}
	}
}

func TestBitGrid_CountIgnoresPaddingBits(t *testing.T) {
	b := NewBitGrid(5, 5) // 25 cells, 7 padding bits
	b.words[0] = 0xFFFFFFFF
	if got := b.Count(); got != 25 {
		t.Errorf("Count() = %d, want 25", got)
	}
}

func TestBitGrid_ToggleAndOutOfBounds(t *testing.T) {
	b := NewBitGrid(4, 4)
	b.Toggle(2, 2)
	if !b.Get(2, 2) {
		t.Error("Toggle did not set the bit")
	}
	b.Toggle(2, 2)
	if b.Get(2, 2) {
		t.Error("second Toggle did not clear the bit")
	}
	b.Set(-1, 0, true)
	b.Set(4, 4, true)
	b.Toggle(9, 9)
	if b.Count() != 0 {
		t.Errorf("out-of-bounds writes changed Count() to %d", b.Count())
	}
	if b.Get(-1, -1) {
		t.Error("out-of-bounds Get = true, want false")
	}
}

func TestBitGridPool_AcquireReturnsClearedExactSize(t *testing.T) {
	p := NewBitGridPool(2, 4)
	b := p.Acquire(10, 3)
	b.Set(1, 1, true)
	p.Release(b)
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	again := p.Acquire(10, 3)
	if again.Count() != 0 {
		t.Error("pooled grid was not cleared")
	}
	if again.Width() != 10 || again.Height() != 3 {
		t.Errorf("Acquire size = %dx%d, want 10x3", again.Width(), again.Height())
	}
	other := p.Acquire(3, 10)
	if other == again {
		t.Error("pool handed out a grid of the wrong dimensions")
	}
}

func TestBitGridPool_CapacityIsCapped(t *testing.T) {
	p := NewBitGridPool(2, 3)
	for i := 0; i < 5; i++ {
		p.Release(NewBitGrid(4, 4))
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (per-key cap)", p.Len())
	}
	p.Release(NewBitGrid(5, 5))
	p.Release(NewBitGrid(6, 6))
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (total cap)", p.Len())
	}
	if s := p.Stats(); s.Discarded != 4 {
		t.Errorf("Discarded = %d, want 4", s.Discarded)
	}
}

func TestBitGridPool_NilPoolAllocates(t *testing.T) {
	var p *BitGridPool
	b := p.Acquire(3, 3)
	if b == nil || b.Width() != 3 {
		t.Fatal("nil pool Acquire failed")
	}
	p.Release(b)
	if p.Len() != 0 {
		t.Error("nil pool Len() != 0")
	}
}
