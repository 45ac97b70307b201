package asm

import "strings"

// encodingMode is the internal, finer-grained addressing-mode vocabulary
// the opcode matrix is indexed by. It splits the spec's INDEXED_X/
// INDEXED_Y/etc. into their zero-page and absolute opcode-table columns;
// Expression.Type keeps the coarser spec vocabulary (§9 design note).
type encodingMode int

const (
	eImplied encodingMode = iota
	eAccumulator
	eImmediate
	eZP
	eZPX
	eZPY
	eAbs
	eAbsX
	eAbsY
	eIndX
	eIndY
	eInd
	eIndAX
	eZPInd
	eRelative
)

// opcodeRow is one mnemonic's addressing-mode matrix (§4.5): a cell is
// either present (legal 1-byte opcode) or absent (unsupported). minSet
// gates the mnemonic as a whole (a 65C02-only mnemonic like BRA is
// invisible to a 6502 table); cellSet additionally gates individual
// addressing-mode cells a later CPU variant adds onto an existing
// mnemonic (e.g. 65C02's ADC (zp) on top of base-6502 ADC).
type opcodeRow struct {
	opcodes map[encodingMode]byte
	cellSet map[encodingMode]InstructionSet
	minSet  InstructionSet
}

// InstructionSetTable is the per-mnemonic opcode matrix for one of the
// three supported CPU variants (§4.5).
type InstructionSetTable struct {
	set  InstructionSet
	rows map[string]*opcodeRow
}

var masterOpcodeTable = buildMasterOpcodeTable()

// NewInstructionSetTable builds the opcode matrix for set, including every
// row whose minSet is satisfied by set (6502 rows are visible to all three
// variants; 65C02 rows additionally to 65816, per §4.5's "family").
func NewInstructionSetTable(set InstructionSet) *InstructionSetTable {
	t := &InstructionSetTable{set: set, rows: make(map[string]*opcodeRow, len(masterOpcodeTable))}
	for mnemonic, row := range masterOpcodeTable {
		if row.minSet > set {
			continue
		}
		t.rows[mnemonic] = row
	}
	return t
}

// Lookup returns the opcode for mnemonic in the given encoding mode, and
// whether the cell is populated and visible to this table's instruction
// set — a cell added by a later CPU variant onto an earlier mnemonic
// (e.g. 65C02's ADC (zp)) is invisible to a plain-6502 table even though
// the mnemonic itself is visible.
func (t *InstructionSetTable) Lookup(mnemonic string, mode encodingMode) (byte, bool) {
	row := t.rows[strings.ToLower(mnemonic)]
	if row == nil {
		return 0, false
	}
	op, ok := row.opcodes[mode]
	if !ok {
		return 0, false
	}
	if need, has := row.cellSet[mode]; has && need > t.set {
		return 0, false
	}
	return op, true
}

// HasAbsoluteForm reports whether mnemonic has an ABS cell, used to decide
// between "promote zero page to absolute" and "couldn't infer size" when a
// forward reference turns out to need widening (§4.5).
func (t *InstructionSetTable) HasAbsoluteForm(mnemonic string) bool {
	_, ok := t.Lookup(mnemonic, eAbs)
	return ok
}

// IsMnemonic reports whether name is a recognized mnemonic for this
// instruction set (case-insensitive, §4.7's dispatch order).
func (t *InstructionSetTable) IsMnemonic(name string) bool {
	_, ok := t.rows[strings.ToLower(name)]
	return ok
}

var branchMnemonics = map[string]bool{
	"bpl": true, "bmi": true, "bvc": true, "bvs": true,
	"bcc": true, "bcs": true, "bne": true, "beq": true,
	"bra": true, // 65C02
}

// IsBranch reports whether mnemonic is a relative-branch instruction
// (§4.5's "Relative branches encode target as ...").
func IsBranch(mnemonic string) bool {
	return branchMnemonics[strings.ToLower(mnemonic)]
}

func buildMasterOpcodeTable() map[string]*opcodeRow {
	m := map[string]*opcodeRow{}
	row := func(mnemonic string, set InstructionSet, cells map[encodingMode]byte) {
		cellSet := make(map[encodingMode]InstructionSet, len(cells))
		for mode := range cells {
			cellSet[mode] = set
		}
		m[mnemonic] = &opcodeRow{opcodes: cells, cellSet: cellSet, minSet: set}
	}

	// Base NMOS 6502 instruction set: every legal opcode.
	row("adc", CPU6502, map[encodingMode]byte{eImmediate: 0x69, eZP: 0x65, eZPX: 0x75, eAbs: 0x6D, eAbsX: 0x7D, eAbsY: 0x79, eIndX: 0x61, eIndY: 0x71})
	row("and", CPU6502, map[encodingMode]byte{eImmediate: 0x29, eZP: 0x25, eZPX: 0x35, eAbs: 0x2D, eAbsX: 0x3D, eAbsY: 0x39, eIndX: 0x21, eIndY: 0x31})
	row("asl", CPU6502, map[encodingMode]byte{eAccumulator: 0x0A, eZP: 0x06, eZPX: 0x16, eAbs: 0x0E, eAbsX: 0x1E})
	row("bcc", CPU6502, map[encodingMode]byte{eRelative: 0x90})
	row("bcs", CPU6502, map[encodingMode]byte{eRelative: 0xB0})
	row("beq", CPU6502, map[encodingMode]byte{eRelative: 0xF0})
	row("bit", CPU6502, map[encodingMode]byte{eZP: 0x24, eAbs: 0x2C})
	row("bmi", CPU6502, map[encodingMode]byte{eRelative: 0x30})
	row("bne", CPU6502, map[encodingMode]byte{eRelative: 0xD0})
	row("bpl", CPU6502, map[encodingMode]byte{eRelative: 0x10})
	row("brk", CPU6502, map[encodingMode]byte{eImplied: 0x00})
	row("bvc", CPU6502, map[encodingMode]byte{eRelative: 0x50})
	row("bvs", CPU6502, map[encodingMode]byte{eRelative: 0x70})
	row("clc", CPU6502, map[encodingMode]byte{eImplied: 0x18})
	row("cld", CPU6502, map[encodingMode]byte{eImplied: 0xD8})
	row("cli", CPU6502, map[encodingMode]byte{eImplied: 0x58})
	row("clv", CPU6502, map[encodingMode]byte{eImplied: 0xB8})
	row("cmp", CPU6502, map[encodingMode]byte{eImmediate: 0xC9, eZP: 0xC5, eZPX: 0xD5, eAbs: 0xCD, eAbsX: 0xDD, eAbsY: 0xD9, eIndX: 0xC1, eIndY: 0xD1})
	row("cpx", CPU6502, map[encodingMode]byte{eImmediate: 0xE0, eZP: 0xE4, eAbs: 0xEC})
	row("cpy", CPU6502, map[encodingMode]byte{eImmediate: 0xC0, eZP: 0xC4, eAbs: 0xCC})
	row("dec", CPU6502, map[encodingMode]byte{eZP: 0xC6, eZPX: 0xD6, eAbs: 0xCE, eAbsX: 0xDE})
	row("dex", CPU6502, map[encodingMode]byte{eImplied: 0xCA})
	row("dey", CPU6502, map[encodingMode]byte{eImplied: 0x88})
	row("eor", CPU6502, map[encodingMode]byte{eImmediate: 0x49, eZP: 0x45, eZPX: 0x55, eAbs: 0x4D, eAbsX: 0x5D, eAbsY: 0x59, eIndX: 0x41, eIndY: 0x51})
	row("inc", CPU6502, map[encodingMode]byte{eZP: 0xE6, eZPX: 0xF6, eAbs: 0xEE, eAbsX: 0xFE})
	row("inx", CPU6502, map[encodingMode]byte{eImplied: 0xE8})
	row("iny", CPU6502, map[encodingMode]byte{eImplied: 0xC8})
	row("jmp", CPU6502, map[encodingMode]byte{eAbs: 0x4C, eInd: 0x6C})
	row("jsr", CPU6502, map[encodingMode]byte{eAbs: 0x20})
	row("lda", CPU6502, map[encodingMode]byte{eImmediate: 0xA9, eZP: 0xA5, eZPX: 0xB5, eAbs: 0xAD, eAbsX: 0xBD, eAbsY: 0xB9, eIndX: 0xA1, eIndY: 0xB1})
	row("ldx", CPU6502, map[encodingMode]byte{eImmediate: 0xA2, eZP: 0xA6, eZPY: 0xB6, eAbs: 0xAE, eAbsY: 0xBE})
	row("ldy", CPU6502, map[encodingMode]byte{eImmediate: 0xA0, eZP: 0xA4, eZPX: 0xB4, eAbs: 0xAC, eAbsX: 0xBC})
	row("lsr", CPU6502, map[encodingMode]byte{eAccumulator: 0x4A, eZP: 0x46, eZPX: 0x56, eAbs: 0x4E, eAbsX: 0x5E})
	row("nop", CPU6502, map[encodingMode]byte{eImplied: 0xEA})
	row("ora", CPU6502, map[encodingMode]byte{eImmediate: 0x09, eZP: 0x05, eZPX: 0x15, eAbs: 0x0D, eAbsX: 0x1D, eAbsY: 0x19, eIndX: 0x01, eIndY: 0x11})
	row("pha", CPU6502, map[encodingMode]byte{eImplied: 0x48})
	row("php", CPU6502, map[encodingMode]byte{eImplied: 0x08})
	row("pla", CPU6502, map[encodingMode]byte{eImplied: 0x68})
	row("plp", CPU6502, map[encodingMode]byte{eImplied: 0x28})
	row("rol", CPU6502, map[encodingMode]byte{eAccumulator: 0x2A, eZP: 0x26, eZPX: 0x36, eAbs: 0x2E, eAbsX: 0x3E})
	row("ror", CPU6502, map[encodingMode]byte{eAccumulator: 0x6A, eZP: 0x66, eZPX: 0x76, eAbs: 0x6E, eAbsX: 0x7E})
	row("rti", CPU6502, map[encodingMode]byte{eImplied: 0x40})
	row("rts", CPU6502, map[encodingMode]byte{eImplied: 0x60})
	row("sbc", CPU6502, map[encodingMode]byte{eImmediate: 0xE9, eZP: 0xE5, eZPX: 0xF5, eAbs: 0xED, eAbsX: 0xFD, eAbsY: 0xF9, eIndX: 0xE1, eIndY: 0xF1})
	row("sec", CPU6502, map[encodingMode]byte{eImplied: 0x38})
	row("sed", CPU6502, map[encodingMode]byte{eImplied: 0xF8})
	row("sei", CPU6502, map[encodingMode]byte{eImplied: 0x78})
	row("sta", CPU6502, map[encodingMode]byte{eZP: 0x85, eZPX: 0x95, eAbs: 0x8D, eAbsX: 0x9D, eAbsY: 0x99, eIndX: 0x81, eIndY: 0x91})
	row("stx", CPU6502, map[encodingMode]byte{eZP: 0x86, eZPY: 0x96, eAbs: 0x8E})
	row("sty", CPU6502, map[encodingMode]byte{eZP: 0x84, eZPX: 0x94, eAbs: 0x8C})
	row("tax", CPU6502, map[encodingMode]byte{eImplied: 0xAA})
	row("tay", CPU6502, map[encodingMode]byte{eImplied: 0xA8})
	row("tsx", CPU6502, map[encodingMode]byte{eImplied: 0xBA})
	row("txa", CPU6502, map[encodingMode]byte{eImplied: 0x8A})
	row("txs", CPU6502, map[encodingMode]byte{eImplied: 0x9A})
	row("tya", CPU6502, map[encodingMode]byte{eImplied: 0x98})

	// 65C02 additions: new mnemonics.
	row("bra", CPU65C02, map[encodingMode]byte{eRelative: 0x80})
	row("phx", CPU65C02, map[encodingMode]byte{eImplied: 0xDA})
	row("phy", CPU65C02, map[encodingMode]byte{eImplied: 0x5A})
	row("plx", CPU65C02, map[encodingMode]byte{eImplied: 0xFA})
	row("ply", CPU65C02, map[encodingMode]byte{eImplied: 0x7A})
	row("stz", CPU65C02, map[encodingMode]byte{eZP: 0x64, eZPX: 0x74, eAbs: 0x9C, eAbsX: 0x9E})
	row("trb", CPU65C02, map[encodingMode]byte{eZP: 0x14, eAbs: 0x1C})
	row("tsb", CPU65C02, map[encodingMode]byte{eZP: 0x04, eAbs: 0x0C})

	// 65C02 additions: new addressing-mode cells on existing mnemonics.
	addCells := func(mnemonic string, cells map[encodingMode]byte) {
		for mode, op := range cells {
			m[mnemonic].opcodes[mode] = op
			m[mnemonic].cellSet[mode] = CPU65C02
		}
	}
	addCells("adc", map[encodingMode]byte{eZPInd: 0x72})
	addCells("and", map[encodingMode]byte{eZPInd: 0x32})
	addCells("cmp", map[encodingMode]byte{eZPInd: 0xD2})
	addCells("eor", map[encodingMode]byte{eZPInd: 0x52})
	addCells("lda", map[encodingMode]byte{eZPInd: 0xB2})
	addCells("ora", map[encodingMode]byte{eZPInd: 0x12})
	addCells("sbc", map[encodingMode]byte{eZPInd: 0xF2})
	addCells("sta", map[encodingMode]byte{eZPInd: 0x92})
	addCells("bit", map[encodingMode]byte{eImmediate: 0x89, eZPX: 0x34, eAbsX: 0x3C})
	addCells("dec", map[encodingMode]byte{eAccumulator: 0x3A})
	addCells("inc", map[encodingMode]byte{eAccumulator: 0x1A})
	addCells("jmp", map[encodingMode]byte{eIndAX: 0x7C})

	return m
}
