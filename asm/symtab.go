package asm

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// defaultHashBuckets documents the original's open-addressed hash-table
// size (§4.3); Go's built-in map is already a hash table with its own
// growth policy, so SymbolTable keeps the constant only to size the map's
// initial allocation, not to replicate bucket placement.
const defaultHashBuckets = 511

// fixup records one deferred rewrite against a not-yet-defined symbol
// (§4.3). It is addressed by index into the engine's LineInfo log rather
// than by raw pointer, per §9's "cross-referencing is by index" note.
type fixup struct {
	lineIndex  int
	byteOffset int
	width      int // 1 or 2
	relative   bool
}

// Symbol is either defined (Value/Type populated, fixups already drained)
// or referenced-only (fixups pending), per §3's invariant.
type Symbol struct {
	Name       string
	Value      uint16
	Type       AddressingType
	Defined    bool
	fixups     []fixup
	DefSource  string
	DefLine    int
}

// SymbolTable is the hash-bucket map from qualified name to Symbol (§4.3).
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates a symbol table. buckets is accepted for API
// fidelity with the original's SymbolTable_Create(N) but only affects the
// initial map allocation size.
func NewSymbolTable(buckets int) *SymbolTable {
	if buckets <= 0 {
		buckets = defaultHashBuckets
	}
	return &SymbolTable{symbols: make(map[string]*Symbol, buckets)}
}

// Find returns the existing Symbol for name, or nil.
func (st *SymbolTable) Find(name string) *Symbol {
	return st.symbols[name]
}

// add inserts a new referenced-only Symbol for name (§4.3's "add"). It is
// unexported: callers reach the table either through Ensure (creates on
// first reference) or Define (creates or resolves on definition).
func (st *SymbolTable) add(name string) *Symbol {
	sym := &Symbol{Name: name}
	st.symbols[name] = sym
	return sym
}

// Ensure resolves name to a Symbol, creating a referenced-only one on
// first mention (§4.4's "create a referenced-only symbol" rule). The
// evaluator calls this while classifying a label term; it does not by
// itself queue a fix-up, since the byte offset/width of the eventual
// rewrite is only known once the enclosing instruction/directive has
// chosen an encoding (§4.3's "let the enclosing instruction ... queue a
// fix-up").
func (st *SymbolTable) Ensure(name string) *Symbol {
	sym := st.symbols[name]
	if sym == nil {
		sym = st.add(name)
	}
	return sym
}

// QueueFixup attaches a fix-up record to sym, which must still be
// undefined. Called by the codegen layer once it knows the byte offset
// and width of the reference inside the emitted instruction.
func (st *SymbolTable) QueueFixup(sym *Symbol, lineIndex, byteOffset, width int, relative bool) {
	sym.fixups = append(sym.fixups, fixup{lineIndex: lineIndex, byteOffset: byteOffset, width: width, relative: relative})
}

// Define binds name to value/typ. If name was referenced-only, every
// queued fix-up is drained in insertion order (§4.3). Re-defining an
// already-defined symbol is an error unless it was only ever referenced.
func (st *SymbolTable) Define(name string, value uint16, typ AddressingType, source string, line int, apply func(lineIndex, byteOffset, width int, relative bool, value uint16) error) error {
	sym := st.symbols[name]
	if sym == nil {
		sym = st.add(name)
	}
	if sym.Defined {
		return fmt.Errorf("symbol '%s' already defined", name)
	}
	sym.Value = value
	sym.Type = typ
	sym.Defined = true
	sym.DefSource = source
	sym.DefLine = line

	pending := sym.fixups
	sym.fixups = nil
	for _, fx := range pending {
		if err := apply(fx.lineIndex, fx.byteOffset, fx.width, fx.relative, value); err != nil {
			return err
		}
	}
	return nil
}

// Undefined returns every symbol still in the referenced-only state, in a
// stable (name-sorted) order, for the end-of-assembly check in §4.7.
func (st *SymbolTable) Undefined() []*Symbol {
	all := lo.Filter(lo.Values(st.symbols), func(s *Symbol, _ int) bool { return !s.Defined })
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Names returns every symbol name currently in the table, sorted, useful
// for listing output and for tests asserting on the full symbol set.
func (st *SymbolTable) Names() []string {
	names := lo.Keys(st.symbols)
	sort.Strings(names)
	return names
}
