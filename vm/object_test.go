package vm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestObject(t *testing.T, vm *VM) *Object {
	t.Helper()
	obj, err := vm.NewObject()
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	return obj
}

// ---------------------------------------------------------------------------
// Object creation tests
// ---------------------------------------------------------------------------

func TestNewObject(t *testing.T) {
	vm := NewVM()
	obj := newTestObject(t, vm)

	if obj.Shape() != vm.RootShape {
		t.Error("new object should have the root shape")
	}
	if obj.Len() != 0 {
		t.Errorf("Len() = %d, want 0", obj.Len())
	}
	for i := 0; i < MaxSlots; i++ {
		if obj.Slot(SlotIndex(i)) != 0 {
			t.Errorf("slot %d should be zero", i)
		}
	}
}

func TestNewObjectWithShape(t *testing.T) {
	vm := NewVM()
	proto := newTestObject(t, vm)
	proto.Set(vm, vm.Intern("x"), FromSmallInt(1))

	obj, err := vm.NewObjectWithShape(proto.Shape())
	if err != nil {
		t.Fatalf("NewObjectWithShape: %v", err)
	}
	if obj.Shape() != proto.Shape() {
		t.Error("object should share the given shape")
	}
	if v, ok := obj.Get(vm.Intern("x")); !ok || v != 0 {
		t.Errorf("Get(x) = %v, %v, want zero slot, true", v, ok)
	}

	expectInvalidShape(t, func() { vm.NewObjectWithShape(vm.MetaShape) })
}

func TestSlotOutOfRangePanics(t *testing.T) {
	obj := newTestObject(t, NewVM())
	defer func() {
		if recover() == nil {
			t.Error("Slot(MaxSlots) should panic")
		}
	}()
	obj.Slot(MaxSlots)
}

// ---------------------------------------------------------------------------
// Get / Set / NewSlot
// ---------------------------------------------------------------------------

func TestObjectScenario(t *testing.T) {
	vm := NewVM()
	x, y := vm.Intern("x"), vm.Intern("y")
	if x != 0 || y != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", x, y)
	}

	obj := newTestObject(t, vm)

	if index, err := obj.Set(vm, x, FromSmallInt(10)); err != nil || index != 0 {
		t.Fatalf("Set(x) = %d, %v, want 0", index, err)
	}
	if obj.Len() != 1 {
		t.Errorf("depth after first set = %d, want 1", obj.Len())
	}
	if index, err := obj.Set(vm, y, FromSmallInt(20)); err != nil || index != 1 {
		t.Fatalf("Set(y) = %d, %v, want 1", index, err)
	}
	if obj.Len() != 2 {
		t.Errorf("depth after second set = %d, want 2", obj.Len())
	}

	if v, ok := obj.Get(x); !ok || v != FromSmallInt(10) {
		t.Errorf("Get(x) = %v, %v, want 10, true", v, ok)
	}
	if v, ok := obj.Get(2); ok || v != 0 {
		t.Errorf("Get(2) = %v, %v, want 0, false", v, ok)
	}
}

func TestSetReadsBackEveryProperty(t *testing.T) {
	for _, n := range []int{1, 2, 7, MaxSlots} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			vm := NewVM()
			obj := newTestObject(t, vm)

			ids := make([]Id, n)
			for k := range ids {
				ids[k] = vm.Intern(fmt.Sprintf("p%d", k))
				if _, err := obj.Set(vm, ids[k], FromSmallInt(int64(k))); err != nil {
					t.Fatalf("Set(p%d): %v", k, err)
				}
			}
			// Overwrite every other property.
			for k := 0; k < n; k += 2 {
				obj.Set(vm, ids[k], FromSmallInt(int64(-k)))
			}

			for k, id := range ids {
				want := FromSmallInt(int64(k))
				if k%2 == 0 {
					want = FromSmallInt(int64(-k))
				}
				if v, ok := obj.Get(id); !ok || v != want {
					t.Errorf("Get(p%d) = %v, %v, want %v", k, v, ok, want)
				}
			}
			if obj.Len() != n {
				t.Errorf("Len() = %d, want %d", obj.Len(), n)
			}
		})
	}
}

func TestSetOverwriteKeepsShape(t *testing.T) {
	vm := NewVM()
	id := vm.Intern("v")
	obj := newTestObject(t, vm)

	first, _ := obj.Set(vm, id, FromSmallInt(1))
	shape := obj.Shape()
	cells := vm.Stats().Heap.CellCount(TransitionShapeCell)

	second, err := obj.Set(vm, id, FromSmallInt(2))
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if second != first {
		t.Errorf("overwrite used slot %d, first write used %d", second, first)
	}
	if obj.Shape() != shape {
		t.Error("overwrite must not change the shape")
	}
	if got := vm.Stats().Heap.CellCount(TransitionShapeCell); got != cells {
		t.Errorf("overwrite allocated %d transition shapes", got-cells)
	}
	if v, _ := obj.Get(id); v != FromSmallInt(2) {
		t.Errorf("Get(v) = %v, want 2", v)
	}
	if obj.Len() != 1 {
		t.Errorf("Len() = %d, want exactly one slot", obj.Len())
	}
}

func TestSetCapacityBoundary(t *testing.T) {
	vm := NewVM()
	obj := newTestObject(t, vm)

	for i := 0; i < MaxSlots; i++ {
		index, err := obj.Set(vm, vm.Intern(fmt.Sprintf("p%d", i)), FromSmallInt(int64(i)))
		if err != nil {
			t.Fatalf("Set #%d: %v", i+1, err)
		}
		if int(index) != i {
			t.Fatalf("Set #%d used slot %d", i+1, index)
		}
	}

	full := obj.Shape()
	_, err := obj.Set(vm, vm.Intern("one-too-many"), FromSmallInt(33))
	if !errors.Is(err, ErrSlotCapacityExceeded) {
		t.Fatalf("33rd property: err = %v, want ErrSlotCapacityExceeded", err)
	}
	if obj.Shape() != full {
		t.Error("failed addition must leave the shape alone")
	}

	// Existing properties can still be overwritten.
	if _, err := obj.Set(vm, vm.Intern("p0"), FromSmallInt(100)); err != nil {
		t.Errorf("overwrite on a full object: %v", err)
	}
}

func TestNewSlot(t *testing.T) {
	vm := NewVM()
	obj := newTestObject(t, vm)
	id := vm.Intern("fresh")

	index, err := obj.NewSlot(vm, id)
	if err != nil || index != 0 {
		t.Fatalf("NewSlot = %d, %v, want 0", index, err)
	}
	if v, ok := obj.Get(id); !ok || v != 0 {
		t.Errorf("new slot = %v, %v, want zero, true", v, ok)
	}

	if _, err := obj.NewSlot(vm, id); !errors.Is(err, ErrPropertyExists) {
		t.Errorf("second NewSlot: err = %v, want ErrPropertyExists", err)
	}
	if obj.Len() != 1 {
		t.Errorf("Len() = %d, want 1", obj.Len())
	}
}

// ---------------------------------------------------------------------------
// Cloning
// ---------------------------------------------------------------------------

func TestCloneIndependence(t *testing.T) {
	vm := NewVM()
	a := newTestObject(t, vm)
	for i, name := range []string{"a", "b", "c"} {
		a.Set(vm, vm.Intern(name), FromSmallInt(int64(i+1)))
	}
	shape := a.Shape()
	slotsBefore := a.slots

	b, err := vm.CloneObject(a)
	if err != nil {
		t.Fatalf("CloneObject: %v", err)
	}
	if b.Shape() != shape {
		t.Error("clone should share the source shape")
	}
	if diff := cmp.Diff(a.slots, b.slots); diff != "" {
		t.Errorf("clone slots differ (-src +clone):\n%s", diff)
	}

	b.Set(vm, vm.Intern("d"), FromSmallInt(9))

	if a.Shape() != shape {
		t.Error("source shape changed after clone was extended")
	}
	if diff := cmp.Diff(slotsBefore, a.slots); diff != "" {
		t.Errorf("source slots changed (-before +after):\n%s", diff)
	}
	if b.Shape().Parent() != shape || b.Len() != a.Len()+1 {
		t.Error("clone should have advanced by exactly one transition")
	}
	if _, ok := a.Get(vm.Intern("d")); ok {
		t.Error("source should not see the clone's new property")
	}
}

func TestForEachProperty(t *testing.T) {
	vm := NewVM()
	obj := newTestObject(t, vm)
	obj.Set(vm, vm.Intern("x"), FromSmallInt(3))
	obj.Set(vm, vm.Intern("y"), FromSymbol(vm.Intern("x")))

	type prop struct {
		ID    Id
		Index SlotIndex
		Value Value
	}
	var got []prop
	obj.ForEachProperty(func(id Id, index SlotIndex, value Value) {
		got = append(got, prop{id, index, value})
	})
	want := []prop{
		{0, 0, FromSmallInt(3)},
		{1, 1, FromSymbol(0)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ForEachProperty (-want +got):\n%s", diff)
	}
}
