package vm

import (
	"fmt"
	"unsafe"
)

// Object is a heap object: a fixed array of MaxSlots values and the shape
// that says which property lives in which slot. Slots at or past the shape's
// depth hold no property and are never read through Get.
type Object struct {
	shape *Shape
	slots [MaxSlots]Value
}

var objectSize = unsafe.Sizeof(Object{})

// ---------------------------------------------------------------------------
// Object creation
// ---------------------------------------------------------------------------

// NewObject creates a property-less object with the root shape.
func (vm *VM) NewObject() (*Object, error) {
	if vm.closed {
		return nil, ErrVMClosed
	}
	return vm.NewObjectWithShape(vm.RootShape)
}

// NewObjectWithShape creates an object with the given shape and all slots
// zero. Panics if s cannot describe an object of this VM.
func (vm *VM) NewObjectWithShape(s *Shape) (*Object, error) {
	s.mustHoldProperties("new object")
	vm.mustOwn("new object", s)
	if err := vm.allocate(ObjectCell, objectSize); err != nil {
		return nil, err
	}
	return &Object{shape: s}, nil
}

// CloneObject creates a structural copy of src: same shape, same slot
// contents. The two objects diverge once either one gains a property.
func (vm *VM) CloneObject(src *Object) (*Object, error) {
	src.shape.mustHoldProperties("clone")
	vm.mustOwn("clone", src.shape)
	if err := vm.allocate(ObjectCell, objectSize); err != nil {
		return nil, err
	}
	return &Object{shape: src.shape, slots: src.slots}, nil
}

// ---------------------------------------------------------------------------
// Property access
// ---------------------------------------------------------------------------

// Shape returns the object's current shape.
func (obj *Object) Shape() *Shape {
	return obj.shape
}

// Len returns the number of properties the object holds.
func (obj *Object) Len() int {
	return obj.shape.Depth()
}

// Slot returns the raw value at index.
// Panics if index is out of range.
func (obj *Object) Slot(index SlotIndex) Value {
	if int(index) >= MaxSlots {
		panic("Object.Slot: index out of range")
	}
	return obj.slots[index]
}

// Get returns the value of property id. A missing property is reported with
// false and a zero Value.
func (obj *Object) Get(id Id) (Value, bool) {
	index, ok := obj.shape.Resolve(id)
	if !ok {
		return 0, false
	}
	return obj.slots[index], true
}

// Set stores value in property id, adding the property if the object does
// not have it yet, and returns the slot used. Overwriting an existing
// property neither allocates nor changes the shape.
func (obj *Object) Set(vm *VM, id Id, value Value) (SlotIndex, error) {
	if index, ok := obj.shape.Resolve(id); ok {
		obj.slots[index] = value
		return index, nil
	}
	index, err := obj.newSlot(vm, id)
	if err != nil {
		return 0, err
	}
	obj.slots[index] = value
	return index, nil
}

// NewSlot adds property id to the object and returns its slot, leaving the
// slot's value as it was. Fails with ErrPropertyExists if the object already
// has the property and with ErrSlotCapacityExceeded if it holds MaxSlots.
func (obj *Object) NewSlot(vm *VM, id Id) (SlotIndex, error) {
	if index, ok := obj.shape.Resolve(id); ok {
		return 0, fmt.Errorf("%w: property %d in slot %d", ErrPropertyExists, id, index)
	}
	return obj.newSlot(vm, id)
}

// newSlot extends the object's shape by id; id is known to be absent.
func (obj *Object) newSlot(vm *VM, id Id) (SlotIndex, error) {
	s, err := vm.Extend(obj.shape, id)
	if err != nil {
		return 0, err
	}
	obj.shape = s
	return obj.shape.index, nil
}

// ForEachProperty calls fn for each property in slot order.
func (obj *Object) ForEachProperty(fn func(id Id, index SlotIndex, value Value)) {
	for i, id := range obj.shape.Properties() {
		fn(id, SlotIndex(i), obj.slots[i])
	}
}
