package vm

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// VM: the execution context owning shapes and objects
// ---------------------------------------------------------------------------

// Config controls how a VM allocates and shares shapes.
type Config struct {
	// HeapLimit is the byte budget of the default allocator; 0 is unlimited.
	HeapLimit uint64

	// CollectEvery is the default allocator's collection interval in bytes.
	CollectEvery uint64

	// ShareTransitions makes objects that add the same properties in the
	// same order converge on one shape chain.
	ShareTransitions bool

	// Symbols lets several VMs share one interning table. A fresh table is
	// created when nil.
	Symbols *SymbolTable

	// Allocator replaces the default HeapAllocator. HeapLimit, CollectEvery
	// and OnCollect are ignored when set.
	Allocator Allocator

	// OnCollect runs after each collection of the default allocator.
	OnCollect CollectFunc
}

// DefaultConfig returns the configuration used by NewVM.
func DefaultConfig() Config {
	return Config{CollectEvery: DefaultCollectEvery}
}

// TransitionStats counts how shape extensions were satisfied.
type TransitionStats struct {
	Created uint64 // New transition shapes allocated
	Shared  uint64 // Extensions answered from a parent's transition table
}

// Stats is a snapshot of a VM's counters.
type Stats struct {
	Heap        HeapStats
	Transitions TransitionStats
	Symbols     int
}

// VM owns the two shapes every other shape and object depends on: the
// meta-shape, and the root shape of property-less objects. All shape and
// object operations on one VM must run on a single goroutine.
type VM struct {
	ID      uuid.UUID
	Symbols *SymbolTable

	MetaShape *Shape
	RootShape *Shape

	allocator        Allocator
	heap             *HeapAllocator // nil with a custom allocator
	shareTransitions bool
	transitions      TransitionStats
	closed           bool

	log commonlog.Logger
}

// NewVM creates a VM with DefaultConfig.
// Panics if bootstrapping fails, which the default config cannot cause.
func NewVM() *VM {
	vm, err := NewVMWithConfig(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("NewVM: %v", err))
	}
	return vm
}

// NewVMWithConfig creates a VM and allocates its meta-shape and root shape.
func NewVMWithConfig(cfg Config) (*VM, error) {
	vm := &VM{
		ID:               uuid.New(),
		Symbols:          cfg.Symbols,
		allocator:        cfg.Allocator,
		shareTransitions: cfg.ShareTransitions,
		log:              commonlog.GetLogger("shapes.vm"),
	}
	if vm.Symbols == nil {
		vm.Symbols = NewSymbolTable()
	}
	if vm.allocator == nil {
		vm.heap = NewHeapAllocator(cfg.HeapLimit, cfg.CollectEvery)
		vm.heap.OnCollect(vm.collected)
		vm.heap.OnCollect(cfg.OnCollect)
		vm.allocator = vm.heap
	}

	if err := vm.bootstrap(); err != nil {
		return nil, err
	}
	vm.log.Debugf("vm %s: bootstrapped (share-transitions=%t)", vm.ID, vm.shareTransitions)
	return vm, nil
}

// bootstrap allocates the meta-shape before the root shape, since the root
// shape refers to it.
func (vm *VM) bootstrap() error {
	if err := vm.allocate(MetaShapeCell, shapeSize); err != nil {
		return fmt.Errorf("bootstrap meta-shape: %w", err)
	}
	vm.MetaShape = newMetaShape()

	if err := vm.allocate(RootShapeCell, shapeSize); err != nil {
		return fmt.Errorf("bootstrap root shape: %w", err)
	}
	vm.RootShape = newRootShape(vm.MetaShape)
	return nil
}

// Close releases the VM's singletons. Allocating operations fail with
// ErrVMClosed afterwards; existing objects stay readable.
func (vm *VM) Close() {
	if vm.closed {
		return
	}
	vm.closed = true
	vm.MetaShape = nil
	vm.RootShape = nil
	vm.log.Debugf("vm %s: closed", vm.ID)
}

// Intern returns the identifier for a property name.
func (vm *VM) Intern(name string) Id {
	return vm.Symbols.Intern(name)
}

// Heap returns the default allocator, or nil if the VM was configured with
// its own.
func (vm *VM) Heap() *HeapAllocator {
	return vm.heap
}

// Stats returns a snapshot of the VM's counters.
func (vm *VM) Stats() Stats {
	s := Stats{
		Transitions: vm.transitions,
		Symbols:     vm.Symbols.Len(),
	}
	if vm.heap != nil {
		s.Heap = vm.heap.Stats()
	}
	return s
}

func (vm *VM) allocate(kind CellKind, size uintptr) error {
	if vm.closed {
		return ErrVMClosed
	}
	return vm.allocator.Allocate(kind, size)
}

func (vm *VM) collected(stats HeapStats) {
	vm.log.Debugf("vm %s: collection %d after %d bytes allocated", vm.ID, stats.Collections, stats.Bytes)
}

// ---------------------------------------------------------------------------
// Shape construction
// ---------------------------------------------------------------------------

// Extend returns the shape that adds id to parent. id must not already
// resolve in parent. Fails with ErrSlotCapacityExceeded once parent holds
// MaxSlots properties.
func (vm *VM) Extend(parent *Shape, id Id) (*Shape, error) {
	parent.mustHoldProperties("extend")
	vm.mustOwn("extend", parent)

	depth := parent.Depth()
	if depth >= MaxSlots {
		vm.log.Warningf("vm %s: cannot add property %q, shape already has %d properties",
			vm.ID, vm.Symbols.Name(id), depth)
		return nil, fmt.Errorf("%w: adding property %d to a shape with %d properties", ErrSlotCapacityExceeded, id, depth)
	}

	if vm.shareTransitions {
		if child, ok := parent.transitions[id]; ok {
			vm.transitions.Shared++
			return child, nil
		}
	}

	if err := vm.allocate(TransitionShapeCell, shapeSize); err != nil {
		return nil, err
	}
	child := newTransitionShape(parent, id)
	vm.transitions.Created++

	if vm.shareTransitions {
		if parent.transitions == nil {
			parent.transitions = make(map[Id]*Shape)
		}
		parent.transitions[id] = child
	}
	return child, nil
}

// mustOwn panics if s does not descend from this VM's meta-shape.
func (vm *VM) mustOwn(op string, s *Shape) {
	if vm.MetaShape != nil && s.meta != vm.MetaShape {
		foreignShape(op, s)
	}
}
