package vm

import (
	"fmt"
	"math"
	"strconv"
)

// Value is the contents of one object slot, NaN-boxed into 64 bits.
//
// Encoding scheme:
//   - Float: native IEEE 754 double (anything that is not a tagged NaN)
//   - SmallInt: quiet NaN + tagInt + 48-bit signed payload
//   - Symbol: quiet NaN + tagSymbol + interned Id
//   - Special: quiet NaN + tagSpecial + nil/true/false
//
// The zero Value is float +0.0, which is what a freshly allocated slot holds.
// Slots never carry heap pointers, so the allocator boundary does not need to
// trace slot contents.
type Value uint64

const (
	// 0x7FF8_0000_0000_0000
	nanBits uint64 = 0x7FF8000000000000

	// 0x0007_0000_0000_0000
	tagMask uint64 = 0x0007000000000000

	// 0x0000_FFFF_FFFF_FFFF
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	tagInt     uint64 = 0x0002000000000000
	tagSpecial uint64 = 0x0003000000000000
	tagSymbol  uint64 = 0x0004000000000000

	intSignBit    uint64 = 0x0000800000000000
	intSignExtend uint64 = 0xFFFF000000000000
)

const (
	specialNil   uint64 = 0
	specialTrue  uint64 = 1
	specialFalse uint64 = 2
)

const (
	Nil   Value = Value(nanBits | tagSpecial | specialNil)
	True  Value = Value(nanBits | tagSpecial | specialTrue)
	False Value = Value(nanBits | tagSpecial | specialFalse)
)

// SmallInt range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsFloat returns true if v is not one of the tagged NaN encodings.
// Infinities and untagged NaNs are floats.
func (v Value) IsFloat() bool {
	bits := uint64(v)
	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		return true
	}
	if bits&0x000FFFFFFFFFFFFF == 0 {
		return true
	}
	if (bits & nanBits) != nanBits {
		return true
	}
	return bits&tagMask == 0
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsSymbol returns true if v carries an interned identifier.
func (v Value) IsSymbol() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSymbol)
}

// IsSpecial returns true if v is nil, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

func (v Value) IsNil() bool  { return v == Nil }
func (v Value) IsBool() bool { return v == True || v == False }

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromFloat64 creates a Value from a float64.
func FromFloat64(f float64) Value {
	return Value(math.Float64bits(f))
}

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask
	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInt range.
func FromSmallInt(n int64) Value {
	v, ok := TryFromSmallInt(n)
	if !ok {
		panic("FromSmallInt: value out of range")
	}
	return v
}

// TryFromSmallInt creates a Value from an int64, returning false if out of range.
func TryFromSmallInt(n int64) (Value, bool) {
	if n > MaxSmallInt || n < MinSmallInt {
		return Nil, false
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask)), true
}

// Symbol returns the identifier encoded in v.
// Panics if v is not a symbol.
func (v Value) Symbol() Id {
	if !v.IsSymbol() {
		panic("Value.Symbol: not a symbol")
	}
	return Id(uint64(v) & payloadMask)
}

// FromSymbol creates a Value from an interned identifier.
func FromSymbol(id Id) Value {
	return Value(nanBits | tagSymbol | uint64(id))
}

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// String renders v without resolving symbol names; see Inspector for that.
func (v Value) String() string {
	switch {
	case v == Nil:
		return "nil"
	case v == True:
		return "true"
	case v == False:
		return "false"
	case v.IsSmallInt():
		return strconv.FormatInt(v.SmallInt(), 10)
	case v.IsSymbol():
		return fmt.Sprintf("#%d", v.Symbol())
	case v.IsFloat():
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	default:
		return fmt.Sprintf("Value(%#x)", uint64(v))
	}
}
