package vm

import (
	"fmt"
	"time"
)

// CellKind tags an allocation with what it will hold, so a collector knows
// which cells carry shape links.
type CellKind uint8

const (
	MetaShapeCell CellKind = iota
	RootShapeCell
	TransitionShapeCell
	ObjectCell

	numCellKinds
)

func (k CellKind) String() string {
	switch k {
	case MetaShapeCell:
		return "meta-shape"
	case RootShapeCell:
		return "root-shape"
	case TransitionShapeCell:
		return "transition-shape"
	case ObjectCell:
		return "object"
	default:
		return fmt.Sprintf("CellKind(%d)", uint8(k))
	}
}

// Allocator is the boundary between the object model and the memory manager.
// Every shape and object construction calls Allocate first; a non-nil error
// aborts the construction. Allocate may run a collection.
//
// Go never relocates heap cells, but callers still treat every allocating
// call as a point after which cached shape pointers must be re-read.
type Allocator interface {
	Allocate(kind CellKind, size uintptr) error
}

// CollectFunc is invoked after each collection with the post-collection stats.
type CollectFunc func(stats HeapStats)

// DefaultCollectEvery is the default number of allocated bytes between
// collections.
const DefaultCollectEvery = 1 << 20

// ---------------------------------------------------------------------------
// HeapAllocator: byte accounting with a collection trigger
// ---------------------------------------------------------------------------

// HeapStats is a snapshot of a HeapAllocator's counters.
type HeapStats struct {
	Cells             [numCellKinds]uint64 // Allocations per CellKind
	Bytes             uint64               // Total bytes allocated
	BytesSinceCollect uint64
	Collections       uint64
	LastCollect       time.Time
}

// CellCount returns the number of cells allocated of the given kind.
func (s HeapStats) CellCount(kind CellKind) uint64 {
	if kind >= numCellKinds {
		return 0
	}
	return s.Cells[kind]
}

// HeapAllocator accounts allocations against an optional byte budget and
// runs a collection every collectEvery bytes. Not safe for concurrent use,
// like the VM that owns it.
type HeapAllocator struct {
	limit        uint64
	collectEvery uint64
	onCollect    []CollectFunc
	stats        HeapStats
}

// NewHeapAllocator returns an allocator with the given budget (0 means
// unlimited) and collection interval in bytes (0 disables automatic
// collection).
func NewHeapAllocator(limit, collectEvery uint64) *HeapAllocator {
	return &HeapAllocator{limit: limit, collectEvery: collectEvery}
}

// OnCollect registers fn to run after every collection.
func (h *HeapAllocator) OnCollect(fn CollectFunc) {
	if fn != nil {
		h.onCollect = append(h.onCollect, fn)
	}
}

// Allocate records an allocation of size bytes, collecting first if the
// allocation would cross the collection threshold.
func (h *HeapAllocator) Allocate(kind CellKind, size uintptr) error {
	if kind >= numCellKinds {
		return fmt.Errorf("allocate: unknown cell kind %d", uint8(kind))
	}
	n := uint64(size)
	if h.limit > 0 && h.stats.Bytes+n > h.limit {
		return fmt.Errorf("%w: %s of %d bytes over budget of %d bytes", ErrHeapExhausted, kind, n, h.limit)
	}
	if h.collectEvery > 0 && h.stats.BytesSinceCollect+n > h.collectEvery {
		h.Collect()
	}
	h.stats.Cells[kind]++
	h.stats.Bytes += n
	h.stats.BytesSinceCollect += n
	return nil
}

// Collect runs a collection immediately.
func (h *HeapAllocator) Collect() {
	h.stats.Collections++
	h.stats.BytesSinceCollect = 0
	h.stats.LastCollect = time.Now()
	for _, fn := range h.onCollect {
		fn(h.stats)
	}
}

// Stats returns a snapshot of the allocator's counters.
func (h *HeapAllocator) Stats() HeapStats {
	return h.stats
}
