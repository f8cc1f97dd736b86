package world

// Default pool limits.
const (
	DefaultPoolPerKey = 8
	DefaultPoolTotal  = 64
)

type poolKey struct {
	width, height int
}

// BitGridPool recycles BitGrids keyed by exact dimensions.
// A pool is owned by one generation at a time; it is not safe for concurrent use.
// A nil pool is valid and simply allocates.
type BitGridPool struct {
	free      map[poolKey][]*BitGrid
	total     int
	maxPerKey int
	maxTotal  int

	hits, misses, discarded int
}

// PoolStats reports pool activity.
type PoolStats struct {
	Pooled    int
	Hits      int
	Misses    int
	Discarded int
}

// NewBitGridPool creates a pool that retains at most maxPerKey grids per size
// and maxTotal grids overall. Non-positive limits fall back to the defaults.
func NewBitGridPool(maxPerKey, maxTotal int) *BitGridPool {
	if maxPerKey <= 0 {
		maxPerKey = DefaultPoolPerKey
	}
	if maxTotal <= 0 {
		maxTotal = DefaultPoolTotal
	}
	return &BitGridPool{
		free:      make(map[poolKey][]*BitGrid),
		maxPerKey: maxPerKey,
		maxTotal:  maxTotal,
	}
}

// Acquire returns a cleared BitGrid of exactly width x height
func (p *BitGridPool) Acquire(width, height int) *BitGrid {
	if p == nil {
		return NewBitGrid(width, height)
	}
	key := poolKey{width, height}
	list := p.free[key]
	if len(list) == 0 {
		p.misses++
		return NewBitGrid(width, height)
	}
	b := list[len(list)-1]
	list[len(list)-1] = nil
	p.free[key] = list[:len(list)-1]
	p.total--
	p.hits++
	b.Clear()
	return b
}

// Release hands a grid back. The caller must not use it afterwards.
// Grids beyond the pool's capacity are dropped for the garbage collector.
func (p *BitGridPool) Release(b *BitGrid) {
	if p == nil || b == nil {
		return
	}
	key := poolKey{b.width, b.height}
	if p.total >= p.maxTotal || len(p.free[key]) >= p.maxPerKey {
		p.discarded++
		return
	}
	p.free[key] = append(p.free[key], b)
	p.total++
}

// Len returns the number of grids currently held by the pool
func (p *BitGridPool) Len() int {
	if p == nil {
		return 0
	}
	return p.total
}

// Stats returns a snapshot of pool counters
func (p *BitGridPool) Stats() PoolStats {
	if p == nil {
		return PoolStats{}
	}
	return PoolStats{Pooled: p.total, Hits: p.hits, Misses: p.misses, Discarded: p.discarded}
}
