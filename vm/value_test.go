package vm

import (
	"math"
	"testing"
)

func TestValueZeroIsFloatZero(t *testing.T) {
	var v Value
	if !v.IsFloat() {
		t.Fatal("zero Value should be a float")
	}
	if v.Float64() != 0 {
		t.Errorf("zero Value = %v, want 0", v.Float64())
	}
}

func TestValueSmallInt(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 10, MaxSmallInt, MinSmallInt} {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d) is not a SmallInt", n)
			continue
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("FromSmallInt(%d).SmallInt() = %d", n, got)
		}
	}
	if _, ok := TryFromSmallInt(MaxSmallInt + 1); ok {
		t.Error("TryFromSmallInt should reject values above MaxSmallInt")
	}
}

func TestValueKindsAreDistinct(t *testing.T) {
	tests := []struct {
		name      string
		v         Value
		isFloat   bool
		isInt     bool
		isSymbol  bool
		isSpecial bool
	}{
		{"float", FromFloat64(1.5), true, false, false, false},
		{"inf", FromFloat64(math.Inf(1)), true, false, false, false},
		{"int", FromSmallInt(7), false, true, false, false},
		{"symbol", FromSymbol(3), false, false, true, false},
		{"nil", Nil, false, false, false, true},
		{"true", True, false, false, false, true},
	}
	for _, tc := range tests {
		if tc.v.IsFloat() != tc.isFloat || tc.v.IsSmallInt() != tc.isInt ||
			tc.v.IsSymbol() != tc.isSymbol || tc.v.IsSpecial() != tc.isSpecial {
			t.Errorf("%s: kind predicates wrong for %#x", tc.name, uint64(tc.v))
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{FromSmallInt(-42), "-42"},
		{FromFloat64(2.5), "2.5"},
		{FromSymbol(4), "#4"},
		{Nil, "nil"},
		{FromBool(false), "false"},
	}
	for _, tc := range tests {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
