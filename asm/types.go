package asm

// AddressingType is the syntactic addressing mode recognized while
// evaluating an operand expression (§3/§4.4). It deliberately keeps the
// exact 12-member vocabulary SPEC_FULL names; finer opcode-table lookups
// (zero-page-vs-absolute within INDEXED_X/INDEXED_Y) are resolved
// internally by instrset.go, not exposed on this type.
type AddressingType int

const (
	Implied AddressingType = iota
	Immediate
	ZeroPageAbsolute
	Absolute
	IndexedIndirect         // (zp,X)
	IndirectIndexed         // (zp),Y
	IndexedX                // zp,X or abs,X
	IndexedY                // zp,Y or abs,Y
	AbsoluteIndirect        // (abs) — JMP indirect
	AbsoluteIndexedIndirect // (abs,X) — 65C02 JMP indirect indexed
	ZeroPageIndirect        // (zp) — 65C02 indirect, no index
	Relative                // branch operand
)

func (t AddressingType) String() string {
	switch t {
	case Implied:
		return "IMPLIED"
	case Immediate:
		return "IMMEDIATE"
	case ZeroPageAbsolute:
		return "ZEROPAGE_ABSOLUTE"
	case Absolute:
		return "ABSOLUTE"
	case IndexedIndirect:
		return "INDEXED_INDIRECT"
	case IndirectIndexed:
		return "INDIRECT_INDEXED"
	case IndexedX:
		return "INDEXED_X"
	case IndexedY:
		return "INDEXED_Y"
	case AbsoluteIndirect:
		return "ABSOLUTE_INDIRECT"
	case AbsoluteIndexedIndirect:
		return "ABSOLUTE_INDEXED_INDIRECT"
	case ZeroPageIndirect:
		return "ZEROPAGE_INDIRECT"
	case Relative:
		return "RELATIVE"
	default:
		return "UNKNOWN"
	}
}

// Expression is the result of evaluating an operand: a 16-bit value, its
// addressing-mode classification, and the two flags of §3.
type Expression struct {
	Value         uint16
	Type          AddressingType
	ForwardRef    bool // operand named a symbol not yet defined
	Long          bool // '/' prefix: force absolute width even if value fits zero page
	SourceOperand string
	RefSymbol     *Symbol // symbol the operand resolved through, if any (for fix-up queueing)
}

// zeroPageEligible reports whether this expression may use a zero-page
// opcode cell: its value fits a byte, the forward-reference flag is clear
// (a forward reference may yet widen, §3), and the '/' prefix did not force
// absolute width.
func (e Expression) zeroPageEligible() bool {
	return !e.ForwardRef && !e.Long && e.Value <= 0xFF
}

// InstructionSet names the target CPU variant (§4.5).
type InstructionSet int

const (
	CPU6502 InstructionSet = iota
	CPU65C02
	CPU65816 // subset: no opcodes beyond the 65C02 set; see DESIGN.md open question
)

// ParseInstructionSet maps a config/flag string to an InstructionSet.
func ParseInstructionSet(name string) (InstructionSet, bool) {
	switch name {
	case "6502":
		return CPU6502, true
	case "65c02", "65C02":
		return CPU65C02, true
	case "65816":
		return CPU65816, true
	default:
		return 0, false
	}
}
