// Package vm implements a shape-based object model.
//
// This package contains:
//   - NaN-boxed slot values
//   - Property name interning
//   - Shape chains (meta, root and transition shapes) with optional
//     transition sharing
//   - Objects with a fixed slot array and the get/set/newSlot protocol
//   - The allocation boundary and its default byte-accounting allocator
//   - Shape-keyed property inline caches
package vm
