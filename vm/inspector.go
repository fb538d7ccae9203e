package vm

import (
	"fmt"
	"strings"
)

// Inspector renders objects and values with property names resolved through
// the VM's symbol table.
type Inspector struct {
	vm *VM
}

// InspectionResult describes one object.
type InspectionResult struct {
	Shape      string
	Depth      int
	Properties []PropertyInfo
}

// PropertyInfo describes one property of an inspected object.
type PropertyInfo struct {
	Name  string
	ID    Id
	Index SlotIndex
	Value string
}

// NewInspector creates a new Inspector attached to the given VM.
func NewInspector(vm *VM) *Inspector {
	return &Inspector{vm: vm}
}

// Inspect describes obj's shape and properties in slot order.
func (i *Inspector) Inspect(obj *Object) *InspectionResult {
	result := &InspectionResult{
		Shape: i.ShapeString(obj.Shape()),
		Depth: obj.Len(),
	}
	obj.ForEachProperty(func(id Id, index SlotIndex, value Value) {
		result.Properties = append(result.Properties, PropertyInfo{
			Name:  i.name(id),
			ID:    id,
			Index: index,
			Value: i.FormatValue(value),
		})
	})
	return result
}

// FormatValue renders v, printing symbols by name.
func (i *Inspector) FormatValue(v Value) string {
	if v.IsSymbol() {
		return "#" + i.name(v.Symbol())
	}
	return v.String()
}

// ShapeString renders a shape with property names instead of ids.
func (i *Inspector) ShapeString(s *Shape) string {
	if !s.IsTransition() {
		return s.String()
	}
	names := make([]string, 0, s.Depth())
	for _, id := range s.Properties() {
		names = append(names, i.name(id))
	}
	return "Shape{" + strings.Join(names, " ") + "}"
}

func (i *Inspector) name(id Id) string {
	if n := i.vm.Symbols.Name(id); n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

// FormatInspection renders an inspection result as text.
func FormatInspection(r *InspectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d properties)\n", r.Shape, r.Depth)
	for _, p := range r.Properties {
		fmt.Fprintf(&b, "  [%2d] %s = %s\n", p.Index, p.Name, p.Value)
	}
	return b.String()
}
