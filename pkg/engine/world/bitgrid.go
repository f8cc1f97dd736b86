package world

import "math/bits"

// BitGrid is a width x height boolean mask packed into 32-bit words.
type BitGrid struct {
	width  int
	height int
	words  []uint32
}

// NewBitGrid creates a cleared mask
func NewBitGrid(width, height int) *BitGrid {
	if width <= 0 || height <= 0 {
		panic("BitGrid dimensions must be positive")
	}
	n := width * height
	return &BitGrid{
		width:  width,
		height: height,
		words:  make([]uint32, (n+31)/32),
	}
}

// Width returns the number of columns
func (b *BitGrid) Width() int {
	return b.width
}

// Height returns the number of rows
func (b *BitGrid) Height() int {
	return b.height
}

// InBounds checks if an x/y position is within the mask
func (b *BitGrid) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the bit at (x, y); false when out of bounds.
func (b *BitGrid) Get(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.GetIndex(y*b.width + x)
}

// Set writes the bit at (x, y). Out-of-bounds writes are ignored.
func (b *BitGrid) Set(x, y int, v bool) {
	if !b.InBounds(x, y) {
		if debugLog != nil {
			debugLog.Printf("world: ignoring out-of-bounds bit set (%d,%d) on %dx%d mask", x, y, b.width, b.height)
		}
		return
	}
	i := y*b.width + x
	if v {
		b.words[i>>5] |= 1 << (uint(i) & 31)
	} else {
		b.words[i>>5] &^= 1 << (uint(i) & 31)
	}
}

// Toggle flips the bit at (x, y). Out-of-bounds toggles are ignored.
func (b *BitGrid) Toggle(x, y int) {
	if !b.InBounds(x, y) {
		return
	}
	i := y*b.width + x
	b.words[i>>5] ^= 1 << (uint(i) & 31)
}

// GetIndex reads a bit by packed row-major index. The index must be valid.
func (b *BitGrid) GetIndex(i int) bool {
	return b.words[i>>5]&(1<<(uint(i)&31)) != 0
}

// SetIndex sets a bit by packed row-major index. The index must be valid.
func (b *BitGrid) SetIndex(i int) {
	b.words[i>>5] |= 1 << (uint(i) & 31)
}

// Clear resets every bit to false
func (b *BitGrid) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Count returns the number of set bits. Padding bits past width*height are masked off.
func (b *BitGrid) Count() int {
	n := b.width * b.height
	full := n / 32
	count := 0
	for _, w := range b.words[:full] {
		count += bits.OnesCount32(w)
	}
	if rem := n % 32; rem != 0 {
		count += bits.OnesCount32(b.words[full] & (1<<uint(rem) - 1))
	}
	return count
}
