package vm

import "sync"

// Id is an interned property name. Ids are handed out densely from 0 in
// interning order and are never reused; they are only meaningful within the
// process that produced them.
type Id uint32

// ---------------------------------------------------------------------------
// SymbolTable: interned property names
// ---------------------------------------------------------------------------

// SymbolTable interns property names to Ids. It only grows.
type SymbolTable struct {
	mu     sync.RWMutex
	byName map[string]Id
	byID   []string
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]Id),
		byID:   make([]string, 0, 64),
	}
}

// Intern returns the Id for name, assigning the next free one if needed.
func (st *SymbolTable) Intern(name string) Id {
	// Fast path: read-only lookup
	st.mu.RLock()
	if id, ok := st.byName[name]; ok {
		st.mu.RUnlock()
		return id
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := st.byName[name]; ok {
		return id
	}

	id := Id(len(st.byID))
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the Id for name without interning it.
func (st *SymbolTable) Lookup(name string) (Id, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	id, ok := st.byName[name]
	return id, ok
}

// Name returns the name for an Id, or "" if it was never assigned.
func (st *SymbolTable) Name(id Id) string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if int(id) >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}

// Len returns the number of interned names.
func (st *SymbolTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID)
}

// All returns all names in Id order.
func (st *SymbolTable) All() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]string, len(st.byID))
	copy(result, st.byID)
	return result
}
