package asm

import "testing"

func TestSymbolTableEnsureCreatesReferencedOnly(t *testing.T) {
	st := NewSymbolTable(0)
	sym := st.Ensure("FOO")
	if sym.Defined {
		t.Fatal("Ensure must create a referenced-only (undefined) symbol")
	}
	if st.Ensure("FOO") != sym {
		t.Fatal("Ensure must return the same Symbol on repeated calls")
	}
}

func TestSymbolTableDefineDrainsFixups(t *testing.T) {
	st := NewSymbolTable(0)
	st.Ensure("TARGET")

	var applied []uint16
	apply := func(lineIndex, byteOffset, width int, relative bool, value uint16) error {
		applied = append(applied, value)
		return nil
	}
	st.QueueFixup(st.Find("TARGET"), 0, 1, 2, false)
	st.QueueFixup(st.Find("TARGET"), 1, 0, 1, false)

	if err := st.Define("TARGET", 0x3000, Absolute, "f.s", 10, apply); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if len(applied) != 2 || applied[0] != 0x3000 || applied[1] != 0x3000 {
		t.Fatalf("expected both fixups applied with value 0x3000, got %v", applied)
	}
	if !st.Find("TARGET").Defined {
		t.Fatal("symbol must be marked defined")
	}
}

func TestSymbolTableRedefinitionIsAnError(t *testing.T) {
	st := NewSymbolTable(0)
	noop := func(int, int, int, bool, uint16) error { return nil }
	if err := st.Define("X", 1, Absolute, "f.s", 1, noop); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	if err := st.Define("X", 2, Absolute, "f.s", 2, noop); err == nil {
		t.Fatal("redefining an already-defined symbol must be an error")
	}
}

func TestSymbolTableUndefinedSortedByName(t *testing.T) {
	st := NewSymbolTable(0)
	st.Ensure("ZEBRA")
	st.Ensure("APPLE")
	st.Ensure("MANGO")
	noop := func(int, int, int, bool, uint16) error { return nil }
	if err := st.Define("MANGO", 0, Absolute, "f.s", 1, noop); err != nil {
		t.Fatalf("Define: %v", err)
	}

	undef := st.Undefined()
	if len(undef) != 2 {
		t.Fatalf("expected 2 undefined symbols, got %d", len(undef))
	}
	if undef[0].Name != "APPLE" || undef[1].Name != "ZEBRA" {
		t.Fatalf("expected sorted [APPLE ZEBRA], got [%s %s]", undef[0].Name, undef[1].Name)
	}
}

func TestSymbolTableNamesSorted(t *testing.T) {
	st := NewSymbolTable(0)
	st.Ensure("C")
	st.Ensure("A")
	st.Ensure("B")
	names := st.Names()
	if len(names) != 3 || names[0] != "A" || names[1] != "B" || names[2] != "C" {
		t.Fatalf("Names() = %v, want sorted [A B C]", names)
	}
}
