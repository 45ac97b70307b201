package asm

import "testing"

func TestInstructionSetTableLookup(t *testing.T) {
	cases := []struct {
		name    string
		set     InstructionSet
		mn      string
		mode    encodingMode
		wantOp  byte
		wantOK  bool
	}{
		{"lda immediate on 6502", CPU6502, "LDA", eImmediate, 0xA9, true},
		{"lda absolute on 6502", CPU6502, "lda", eAbs, 0xAD, true},
		{"bra absent on plain 6502", CPU6502, "bra", eRelative, 0, false},
		{"bra present on 65C02", CPU65C02, "bra", eRelative, 0x80, true},
		{"adc zp-indirect absent on 6502", CPU6502, "adc", eZPInd, 0, false},
		{"adc zp-indirect present on 65C02", CPU65C02, "adc", eZPInd, 0x72, true},
		{"bit immediate absent on 6502", CPU6502, "bit", eImmediate, 0, false},
		{"bit immediate present on 65C02", CPU65C02, "bit", eImmediate, 0x89, true},
		{"dec accumulator absent on 6502", CPU6502, "dec", eAccumulator, 0, false},
		{"dec accumulator present on 65C02", CPU65C02, "dec", eAccumulator, 0x3A, true},
		{"unknown mnemonic", CPU6502, "frobnicate", eImplied, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tbl := NewInstructionSetTable(c.set)
			op, ok := tbl.Lookup(c.mn, c.mode)
			if ok != c.wantOK || (ok && op != c.wantOp) {
				t.Fatalf("Lookup(%q, mode %d) on set %d = (0x%02X, %v), want (0x%02X, %v)", c.mn, c.mode, c.set, op, ok, c.wantOp, c.wantOK)
			}
		})
	}
}

func TestHasAbsoluteForm(t *testing.T) {
	tbl6502 := NewInstructionSetTable(CPU6502)
	if !tbl6502.HasAbsoluteForm("lda") {
		t.Fatal("lda should have an absolute form on 6502")
	}
	if tbl6502.HasAbsoluteForm("bcc") {
		t.Fatal("bcc (relative-only) should not have an absolute form")
	}
	if tbl6502.HasAbsoluteForm("bra") {
		t.Fatal("bra should not even be visible on plain 6502")
	}
}

func TestIsMnemonicRespectsInstructionSet(t *testing.T) {
	tbl6502 := NewInstructionSetTable(CPU6502)
	tbl65c02 := NewInstructionSetTable(CPU65C02)

	if tbl6502.IsMnemonic("bra") {
		t.Fatal("bra must not be a recognized mnemonic under plain 6502")
	}
	if !tbl65c02.IsMnemonic("bra") {
		t.Fatal("bra must be recognized under 65C02")
	}
	if !tbl6502.IsMnemonic("LDA") {
		t.Fatal("mnemonic lookup must be case-insensitive")
	}
}

func TestIsBranch(t *testing.T) {
	for _, m := range []string{"bcc", "BEQ", "bra"} {
		if !IsBranch(m) {
			t.Errorf("IsBranch(%q) = false, want true", m)
		}
	}
	if IsBranch("lda") {
		t.Fatal("lda must not classify as a branch mnemonic")
	}
}
