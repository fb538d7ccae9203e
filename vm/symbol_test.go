package vm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSymbolTableIntern(t *testing.T) {
	st := NewSymbolTable()

	x := st.Intern("x")
	y := st.Intern("y")
	if x != 0 || y != 1 {
		t.Errorf("Intern(x), Intern(y) = %d, %d, want 0, 1", x, y)
	}
	if again := st.Intern("x"); again != x {
		t.Errorf("Intern(x) again = %d, want %d", again, x)
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestSymbolTableLookup(t *testing.T) {
	st := NewSymbolTable()
	st.Intern("width")

	if id, ok := st.Lookup("width"); !ok || id != 0 {
		t.Errorf("Lookup(width) = %d, %v, want 0, true", id, ok)
	}
	if _, ok := st.Lookup("height"); ok {
		t.Error("Lookup(height) should not find an uninterned name")
	}
	if st.Len() != 1 {
		t.Errorf("Lookup must not intern; Len() = %d", st.Len())
	}
}

func TestSymbolTableName(t *testing.T) {
	st := NewSymbolTable()
	for _, name := range []string{"a", "b", "c"} {
		st.Intern(name)
	}

	if got := st.Name(1); got != "b" {
		t.Errorf("Name(1) = %q, want %q", got, "b")
	}
	if got := st.Name(99); got != "" {
		t.Errorf("Name(99) = %q, want empty", got)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, st.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}
