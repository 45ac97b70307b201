package asm

import (
	"fmt"
	"strings"
)

// dispatch implements §4.7 step 4's lookup order: core directives, then
// instruction mnemonics in the active set, then user macros. It returns
// equLike=true when the directive itself bound the label (EQU/=), so the
// caller skips the generic "bind label to current PC" step.
func (e *Engine) dispatch(idx int, li *LineInfo, label, op, operands, source string, lineNum int) (equLike bool, err error) {
	switch op {
	case "=", "equ":
		return true, e.doEqu(label, operands, source, lineNum)
	case "org":
		return false, e.doOrg(operands)
	case "dum":
		return false, e.doDum(operands)
	case "dend":
		return false, e.Bin.ExitDummy()
	case "hex":
		return false, e.doHex(li, idx, operands)
	case "ds":
		return false, e.doDS(li, idx, operands)
	case "db", "dfb":
		return false, e.doDBList(li, idx, operands, 1)
	case "da", "dw":
		return false, e.doDBList(li, idx, operands, 2)
	case "asc":
		return false, e.doAsc(li, idx, operands)
	case "sav":
		return false, e.doSav(operands)
	case "lst":
		e.listing = !e.listing
		return false, nil
	case "tr":
		e.truncate = !e.truncate
		return false, nil
	case "xc":
		e.promoteInstructionSet()
		return false, nil
	case "mx":
		return false, nil
	case "put":
		return false, e.doPut(operands, source, lineNum)
	case "mac":
		return false, e.Macros.BeginCapture(strings.ToLower(strings.TrimSpace(operands)), source, lineNum)
	case "eom":
		return false, fmt.Errorf("EOM without matching MAC")
	case "usr":
		return false, nil
	}

	if e.Instrs.IsMnemonic(op) {
		return false, e.assembleInstruction(li, idx, op, operands)
	}

	if def := e.Macros.Find(op); def != nil {
		e.Sources.PushMacro(def)
		return false, nil
	}

	return false, fmt.Errorf("'%s' is not a recognized mnemonic or macro", op)
}

func (e *Engine) doEqu(label, operands, source string, lineNum int) error {
	if label == "" {
		return fmt.Errorf("EQU/= requires a label")
	}
	expr, err := EvalOperand(e, operands)
	if err != nil {
		return err
	}
	if expr.ForwardRef {
		return fmt.Errorf("EQU/= operand cannot be a forward reference")
	}
	_, err = e.defineSymbol(label, expr.Value, expr.Type, source, lineNum)
	return err
}

func (e *Engine) doOrg(operands string) error {
	expr, err := EvalOperand(e, operands)
	if err != nil {
		return err
	}
	if expr.ForwardRef {
		return fmt.Errorf("ORG operand cannot be a forward reference")
	}
	e.Bin.SetOrigin(expr.Value)
	return nil
}

func (e *Engine) doDum(operands string) error {
	expr, err := EvalOperand(e, operands)
	if err != nil {
		return err
	}
	return e.Bin.EnterDummy(expr.Value)
}

func (e *Engine) doHex(li *LineInfo, idx int, operands string) error {
	bytes, err := parseHexBytes(operands)
	if err != nil {
		return err
	}
	e.emitBytes(li, bytes)
	return nil
}

func (e *Engine) doDS(li *LineInfo, idx int, operands string) error {
	count, fill, err := parseDS(e, operands)
	if err != nil {
		return err
	}
	bytes := make([]byte, count)
	for i := range bytes {
		bytes[i] = fill
	}
	e.emitBytes(li, bytes)
	return nil
}

func (e *Engine) doDBList(li *LineInfo, idx int, operands string, width int) error {
	fields := parseExprFields(operands)
	if len(fields) == 0 {
		return fmt.Errorf("%s requires at least one operand", map[int]string{1: "DB/DFB", 2: "DA/DW"}[width])
	}
	for _, f := range fields {
		expr, err := EvalOperand(e, f)
		if err != nil {
			return err
		}
		offset := int(e.Bin.PC() - li.Address)
		if width == 1 {
			e.emitByte(li, byte(expr.Value))
		} else {
			e.emitByte(li, byte(expr.Value))
			e.emitByte(li, byte(expr.Value>>8))
		}
		if expr.ForwardRef && expr.RefSymbol != nil {
			e.SymbolTab.QueueFixup(expr.RefSymbol, idx, offset, width, false)
		}
	}
	return nil
}

func (e *Engine) doAsc(li *LineInfo, idx int, operands string) error {
	bytes, err := parseAsc(operands)
	if err != nil {
		return err
	}
	e.emitBytes(li, bytes)
	return nil
}

func (e *Engine) doSav(operands string) error {
	fields := SplitCSV(operands)
	if len(fields) == 0 {
		return fmt.Errorf("SAV requires a path operand")
	}
	path := strings.Trim(string(fields[0]), `"'`)
	if len(fields) == 4 {
		side, err := EvalOperand(e, string(fields[1]))
		if err != nil {
			return err
		}
		track, err := EvalOperand(e, string(fields[2]))
		if err != nil {
			return err
		}
		offset, err := EvalOperand(e, string(fields[3]))
		if err != nil {
			return err
		}
		e.Bin.QueueRW18Write(path, int(side.Value), int(track.Value), int(offset.Value), e.Bin.CurrentRegionLength())
		e.Bin.ResetCurrentRegion()
		return nil
	}
	e.Bin.QueueCurrentRegion(path)
	return nil
}

func (e *Engine) doPut(operands, source string, lineNum int) error {
	path := strings.Trim(strings.TrimSpace(operands), `"'`)
	if err := e.Sources.PushFile(path); err != nil {
		return errf(FileOpenFailed, source, lineNum, "could not open '%s' for PUT: %s", path, err.Error())
	}
	return nil
}

// promoteInstructionSet implements XC (§4.7.1): each use steps the active
// instruction set up one tier, 6502 -> 65C02 -> 65816, clamping at the top.
func (e *Engine) promoteInstructionSet() {
	if e.set < CPU65816 {
		e.set++
		e.Instrs = NewInstructionSetTable(e.set)
	}
}

func (e *Engine) emitByte(li *LineInfo, b byte) {
	e.Bin.Emit(b)
	if len(li.MachineCode) < maxMachineCode {
		li.MachineCode = append(li.MachineCode, b)
	}
	li.setFlag(flagMachineCodeEmitted)
}

func (e *Engine) emitBytes(li *LineInfo, bytes []byte) {
	for _, b := range bytes {
		e.emitByte(li, b)
	}
}

// assembleInstruction evaluates operands, selects an opcode cell, and
// emits the instruction's bytes, queueing a fix-up when the operand is a
// forward reference (§4.5/§4.6).
func (e *Engine) assembleInstruction(li *LineInfo, idx int, mnemonic, operandText string) error {
	if trimmed := strings.TrimSpace(operandText); trimmed == "A" || trimmed == "a" {
		if opcode, ok := e.Instrs.Lookup(mnemonic, eAccumulator); ok {
			e.emitByte(li, opcode)
			return nil
		}
	}

	expr, err := EvalOperand(e, operandText)
	if err != nil {
		return err
	}

	isBranch := IsBranch(mnemonic)
	if isBranch {
		expr.Type = Relative
	}

	mode := e.encodingModeFor(mnemonic, operandText, expr)
	opcode, ok := e.Instrs.Lookup(mnemonic, mode)
	if !ok {
		if expr.ForwardRef && (expr.Type == ZeroPageAbsolute || expr.Type == Absolute) && !e.Instrs.HasAbsoluteForm(mnemonic) {
			return fmt.Errorf("Couldn't properly infer size of a forward reference in '%s' operand", operandText)
		}
		return fmt.Errorf("Addressing mode of '%s' is not supported for '%s'", operandText, mnemonic)
	}

	e.emitByte(li, opcode)

	switch mode {
	case eImplied, eAccumulator:
		return nil
	case eRelative:
		offset := len(li.MachineCode)
		if expr.ForwardRef {
			e.emitByte(li, 0)
			if expr.RefSymbol != nil {
				e.SymbolTab.QueueFixup(expr.RefSymbol, idx, offset, 1, true)
			}
			return nil
		}
		next := li.Address + uint16(len(li.MachineCode)) + 1
		disp := int(expr.Value) - int(next)
		if disp < -128 || disp > 127 {
			return fmt.Errorf("Relative offset of '%s' exceeds the allowed -128 to 127 range.", operandText)
		}
		e.emitByte(li, byte(int8(disp)))
		return nil
	case eImmediate, eZP, eZPX, eZPY, eIndX, eIndY, eZPInd:
		offset := len(li.MachineCode)
		e.emitByte(li, byte(expr.Value))
		if expr.ForwardRef && expr.RefSymbol != nil {
			e.SymbolTab.QueueFixup(expr.RefSymbol, idx, offset, 1, false)
		}
		return nil
	default: // eAbs, eAbsX, eAbsY, eInd, eIndAX
		offset := len(li.MachineCode)
		e.emitByte(li, byte(expr.Value))
		e.emitByte(li, byte(expr.Value>>8))
		if expr.ForwardRef && expr.RefSymbol != nil {
			e.SymbolTab.QueueFixup(expr.RefSymbol, idx, offset, 2, false)
		}
		return nil
	}
}

// encodingModeFor resolves the finer opcode-table column for an evaluated
// operand: mostly a direct map from AddressingType, except INDEXED_X/
// INDEXED_Y, whose zero-page-vs-absolute split is not carried on the type
// itself (per types.go), and a forward-referenced ABSOLUTE_INDEXED_INDIRECT
// operand, which falls back to (zp,X) on mnemonics without an (abs,X) cell.
// The accumulator shorthand ("A" operand on a
// shift/rotate mnemonic) is intercepted earlier in assembleInstruction,
// before the operand is ever evaluated as an expression — "A" would
// otherwise be indistinguishable from a same-named label.
func (e *Engine) encodingModeFor(mnemonic, operandText string, expr Expression) encodingMode {
	if expr.Type == Implied {
		return eImplied
	}
	switch expr.Type {
	case Immediate:
		return eImmediate
	case ZeroPageAbsolute:
		return eZP
	case Absolute:
		return eAbs
	case IndexedIndirect:
		return eIndX
	case IndirectIndexed:
		return eIndY
	case IndexedX:
		if expr.zeroPageEligible() {
			return eZPX
		}
		return eAbsX
	case IndexedY:
		if expr.zeroPageEligible() {
			return eZPY
		}
		return eAbsY
	case AbsoluteIndirect:
		return eInd
	case AbsoluteIndexedIndirect:
		// A forward-referenced (expr,X) operand is encoded as (zp,X) when the
		// mnemonic has no (abs,X) cell; its 1-byte fix-up rejects a value
		// that does not fit 8 bits.
		if expr.ForwardRef {
			if _, ok := e.Instrs.Lookup(mnemonic, eIndAX); !ok {
				return eIndX
			}
		}
		return eIndAX
	case ZeroPageIndirect:
		return eZPInd
	case Relative:
		return eRelative
	default:
		return eImplied
	}
}
