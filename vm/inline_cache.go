package vm

// Inline caching for property access
//
// A property access site remembers which slot its property lived in for the
// shapes it has seen. Shapes are immutable, so a (shape, slot) pair never goes
// stale. The cache progresses Empty -> Monomorphic -> Polymorphic ->
// Megamorphic, the same way method dispatch caches do.

// CacheState represents the current state of a property cache.
type CacheState uint8

const (
	CacheEmpty       CacheState = iota // No cached lookup yet
	CacheMonomorphic                   // Single (shape, slot) cached
	CachePolymorphic                   // 2-6 entries
	CacheMegamorphic                   // Too many shapes, always resolve
)

func (s CacheState) String() string {
	switch s {
	case CacheEmpty:
		return "empty"
	case CacheMonomorphic:
		return "monomorphic"
	case CachePolymorphic:
		return "polymorphic"
	case CacheMegamorphic:
		return "megamorphic"
	default:
		return "unknown"
	}
}

// MaxPICEntries is the maximum number of shapes a polymorphic cache holds.
const MaxPICEntries = 6

// PropertyCacheEntry holds one cached resolution.
type PropertyCacheEntry struct {
	Shape *Shape
	Index SlotIndex
}

// PropertyCache caches the resolution of one property across shapes.
type PropertyCache struct {
	ID      Id
	State   CacheState
	Entries [MaxPICEntries]PropertyCacheEntry
	Count   int

	Hits   uint64
	Misses uint64
}

// NewPropertyCache creates an empty cache for property id.
func NewPropertyCache(id Id) *PropertyCache {
	return &PropertyCache{ID: id}
}

// Lookup returns the cached slot for shape.
func (ic *PropertyCache) Lookup(shape *Shape) (SlotIndex, bool) {
	switch ic.State {
	case CacheMonomorphic, CachePolymorphic:
		for i := 0; i < ic.Count; i++ {
			if ic.Entries[i].Shape == shape {
				ic.Hits++
				return ic.Entries[i].Index, true
			}
		}
	case CacheMegamorphic, CacheEmpty:
	}

	ic.Misses++
	return 0, false
}

// Update records that the property lives in slot index for shape.
func (ic *PropertyCache) Update(shape *Shape, index SlotIndex) {
	switch ic.State {
	case CacheEmpty:
		ic.State = CacheMonomorphic
		ic.Entries[0] = PropertyCacheEntry{Shape: shape, Index: index}
		ic.Count = 1

	case CacheMonomorphic, CachePolymorphic:
		for i := 0; i < ic.Count; i++ {
			if ic.Entries[i].Shape == shape {
				return
			}
		}
		if ic.Count < MaxPICEntries {
			ic.Entries[ic.Count] = PropertyCacheEntry{Shape: shape, Index: index}
			ic.Count++
			ic.State = CachePolymorphic
			return
		}
		ic.State = CacheMegamorphic
		for i := range ic.Entries {
			ic.Entries[i] = PropertyCacheEntry{}
		}
		ic.Count = 0

	case CacheMegamorphic:
	}
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (ic *PropertyCache) HitRate() float64 {
	total := ic.Hits + ic.Misses
	if total == 0 {
		return 0
	}
	return float64(ic.Hits) * 100 / float64(total)
}

// Reset clears the cache back to empty state.
func (ic *PropertyCache) Reset() {
	id := ic.ID
	*ic = PropertyCache{ID: id}
}

// ---------------------------------------------------------------------------
// Cached object access
// ---------------------------------------------------------------------------

// GetCached is Get through a property cache.
func (obj *Object) GetCached(ic *PropertyCache) (Value, bool) {
	if index, ok := ic.Lookup(obj.shape); ok {
		return obj.slots[index], true
	}
	index, ok := obj.shape.Resolve(ic.ID)
	if !ok {
		return 0, false
	}
	ic.Update(obj.shape, index)
	return obj.slots[index], true
}

// SetCached is Set through a property cache. The cache learns the shape the
// object has after the store.
func (obj *Object) SetCached(vm *VM, ic *PropertyCache, value Value) (SlotIndex, error) {
	if index, ok := ic.Lookup(obj.shape); ok {
		obj.slots[index] = value
		return index, nil
	}
	index, err := obj.Set(vm, ic.ID, value)
	if err != nil {
		return 0, err
	}
	ic.Update(obj.shape, index)
	return index, nil
}

// ---------------------------------------------------------------------------
// PropertyCacheTable
// ---------------------------------------------------------------------------

// PropertyCacheTable holds one cache per access site.
type PropertyCacheTable struct {
	caches map[int]*PropertyCache
}

// NewPropertyCacheTable creates a new property cache table.
func NewPropertyCacheTable() *PropertyCacheTable {
	return &PropertyCacheTable{caches: make(map[int]*PropertyCache)}
}

// GetOrCreate returns the cache for site, creating one for id if needed.
// A site whose property changes gets a fresh cache.
func (t *PropertyCacheTable) GetOrCreate(site int, id Id) *PropertyCache {
	if ic := t.caches[site]; ic != nil && ic.ID == id {
		return ic
	}
	ic := NewPropertyCache(id)
	t.caches[site] = ic
	return ic
}

// CacheStats holds aggregate property cache statistics.
type CacheStats struct {
	Sites       int
	Monomorphic int
	Polymorphic int
	Megamorphic int
	Hits        uint64
	Misses      uint64
	HitRate     float64
}

// Stats returns aggregate statistics for all sites in the table.
func (t *PropertyCacheTable) Stats() CacheStats {
	var s CacheStats
	for _, ic := range t.caches {
		s.Sites++
		switch ic.State {
		case CacheMonomorphic:
			s.Monomorphic++
		case CachePolymorphic:
			s.Polymorphic++
		case CacheMegamorphic:
			s.Megamorphic++
		}
		s.Hits += ic.Hits
		s.Misses += ic.Misses
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) * 100 / float64(total)
	}
	return s
}
