package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotCapacityExceeded is returned when a property addition would
	// need more than MaxSlots distinct properties on one shape chain.
	ErrSlotCapacityExceeded = errors.New("slot capacity exceeded")

	// ErrPropertyExists is returned by NewSlot when the identifier already
	// resolves in the object's shape.
	ErrPropertyExists = errors.New("property already present")

	// ErrHeapExhausted is returned by HeapAllocator once its byte budget is spent.
	ErrHeapExhausted = errors.New("heap exhausted")

	// ErrVMClosed is returned by allocating operations after VM.Close.
	ErrVMClosed = errors.New("vm closed")
)

// InvalidShapeKindError is the panic value raised when a shape chain contains
// a shape an operation cannot handle: a Meta shape below an object, a nil
// link, or a shape owned by another VM. It means the heap is corrupt, so it
// is never returned as an ordinary error.
type InvalidShapeKindError struct {
	Op     string
	Shape  *Shape
	Reason string
}

func (e *InvalidShapeKindError) Error() string {
	switch {
	case e.Shape == nil:
		return fmt.Sprintf("%s: nil shape in object shape chain", e.Op)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s shape %s", e.Op, e.Shape.kind, e.Reason)
	default:
		return fmt.Sprintf("%s: shape of kind %s is neither a root nor a transition shape", e.Op, e.Shape.kind)
	}
}

func invalidShapeKind(op string, s *Shape) {
	panic(&InvalidShapeKindError{Op: op, Shape: s})
}

func foreignShape(op string, s *Shape) {
	panic(&InvalidShapeKindError{Op: op, Shape: s, Reason: "belongs to another VM"})
}
