package vm

import (
	"fmt"
	"strings"
	"unsafe"
)

// MaxSlots is the number of slots every Object carries, and therefore the
// maximum depth of any shape chain.
const MaxSlots = 32

// SlotIndex addresses one slot of an Object, in [0, MaxSlots).
type SlotIndex uint8

// ShapeKind distinguishes the three kinds of shape.
type ShapeKind uint8

const (
	MetaShapeKind       ShapeKind = iota // Shape of shapes; its own meta
	RootShapeKind                        // No properties
	TransitionShapeKind                  // Parent plus one property
)

func (k ShapeKind) String() string {
	switch k {
	case MetaShapeKind:
		return "Meta"
	case RootShapeKind:
		return "Root"
	case TransitionShapeKind:
		return "Transition"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// Shape is an immutable structural descriptor. A transition shape records
// one property addition on top of its parent; following parent links always
// ends at the root shape. Slot indices along a chain are 0, 1, 2, ... from
// the root outward.
//
// The only mutable part is the transitions side table, which the owning VM
// fills in when transition sharing is enabled.
type Shape struct {
	meta   *Shape
	kind   ShapeKind
	parent *Shape
	id     Id
	index  SlotIndex

	transitions map[Id]*Shape
}

var shapeSize = unsafe.Sizeof(Shape{})

func newMetaShape() *Shape {
	s := &Shape{kind: MetaShapeKind}
	s.meta = s
	return s
}

func newRootShape(meta *Shape) *Shape {
	return &Shape{meta: meta, kind: RootShapeKind}
}

// newTransitionShape builds the child of parent introducing id. The caller
// has already checked capacity and that id is absent from parent's chain.
func newTransitionShape(parent *Shape, id Id) *Shape {
	var index SlotIndex
	switch parent.kind {
	case RootShapeKind:
		index = 0
	case TransitionShapeKind:
		index = parent.index + 1
	default:
		invalidShapeKind("extend", parent)
	}
	return &Shape{
		meta:   parent.meta,
		kind:   TransitionShapeKind,
		parent: parent,
		id:     id,
		index:  index,
	}
}

// Kind returns the shape's kind.
func (s *Shape) Kind() ShapeKind { return s.kind }

// Meta returns the shape describing s as a heap cell.
func (s *Shape) Meta() *Shape { return s.meta }

// Parent returns the shape s extends, or nil for root and meta shapes.
func (s *Shape) Parent() *Shape { return s.parent }

// ID returns the property a transition shape introduces.
func (s *Shape) ID() Id { return s.id }

// Index returns the slot a transition shape assigns to its property.
func (s *Shape) Index() SlotIndex { return s.index }

// IsTransition reports whether s was made by extending another shape.
func (s *Shape) IsTransition() bool { return s.kind == TransitionShapeKind }

// Depth returns the number of properties encoded by the chain ending at s.
func (s *Shape) Depth() int {
	if s.kind == TransitionShapeKind {
		return int(s.index) + 1
	}
	return 0
}

// Resolve finds the slot holding id, searching from s back toward the root.
// The cost is bounded by the chain depth.
func (s *Shape) Resolve(id Id) (SlotIndex, bool) {
	for m := s; ; m = m.parent {
		if m == nil {
			invalidShapeKind("resolve", nil)
		}
		switch m.kind {
		case RootShapeKind:
			return 0, false
		case TransitionShapeKind:
			if m.id == id {
				return m.index, true
			}
		default:
			invalidShapeKind("resolve", m)
		}
	}
}

// Properties returns the identifiers encoded by s in slot order.
func (s *Shape) Properties() []Id {
	ids := make([]Id, s.Depth())
	for m := s; m != nil && m.kind == TransitionShapeKind; m = m.parent {
		ids[m.index] = m.id
	}
	return ids
}

// mustHoldProperties panics unless s can be the shape of an object.
func (s *Shape) mustHoldProperties(op string) {
	if s == nil {
		invalidShapeKind(op, nil)
	}
	if s.kind != RootShapeKind && s.kind != TransitionShapeKind {
		invalidShapeKind(op, s)
	}
}

func (s *Shape) String() string {
	switch s.kind {
	case TransitionShapeKind:
		var b strings.Builder
		b.WriteString("Shape{")
		for i, id := range s.Properties() {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%d:#%d", i, id)
		}
		b.WriteString("}")
		return b.String()
	default:
		return s.kind.String() + "Shape"
	}
}
