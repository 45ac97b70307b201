package asm

import (
	"fmt"
	"strings"
)

// Engine drives the single-pass assembly pipeline of §4.7: pull a line,
// parse it, dispatch it to a directive/mnemonic/macro, emit bytes, advance
// the program counter. Forward references are fixed up in place as their
// defining symbol is later bound (§4.3), so there is no second pass over
// the source.
type Engine struct {
	Reporter  *Reporter
	SymbolTab *SymbolTable
	Bin       *BinBuf
	Lines    *LineLog
	Cond     *CondStack
	Macros   *MacroTable
	Sources  *TextSourceStack
	Instrs   *InstructionSetTable

	set InstructionSet

	currentGlobalLabel string

	listing  bool
	truncate bool
}

// NewEngine creates an assembler ready to process source. searchPath is
// tried, in order, to resolve PUT's relative paths (§4.1).
func NewEngine(set InstructionSet, searchPath []string) *Engine {
	return &Engine{
		Reporter:  &Reporter{},
		SymbolTab: NewSymbolTable(defaultHashBuckets),
		Bin:       NewBinBuf(),
		Lines:     NewLineLog(),
		Cond:      NewCondStack(),
		Macros:    NewMacroTable(),
		Sources:   NewTextSourceStack(searchPath),
		Instrs:    NewInstructionSetTable(set),
		set:       set,
	}
}

// PC implements exprContext.
func (e *Engine) PC() uint16 { return e.Bin.PC() }

// Symbols implements exprContext.
func (e *Engine) Symbols() *SymbolTable { return e.SymbolTab }

// Qualify expands a leading-':' local label against the most recently
// seen global label (§4.2/§4.7 step 3).
func (e *Engine) Qualify(name string) (string, error) {
	if !strings.HasPrefix(name, ":") {
		return name, nil
	}
	if e.currentGlobalLabel == "" {
		return "", fmt.Errorf("local label '%s' used before any global label has been seen", name)
	}
	return e.currentGlobalLabel + name, nil
}

// AssembleFile pushes path as the top source and runs it to completion.
func (e *Engine) AssembleFile(path string) error {
	if err := e.Sources.PushFile(path); err != nil {
		return err
	}
	return e.Run()
}

// AssembleString pushes an in-memory program (used by tests) and runs it.
func (e *Engine) AssembleString(name, text string) error {
	e.Sources.PushString(name, text)
	return e.Run()
}

// Run drains the Text Source Stack, processing one line at a time, then
// performs the end-of-input checks of §4.7: undefined symbols and
// unterminated conditional/macro state, followed by processWriteFileQueue.
func (e *Engine) Run() error {
	for {
		raw, source, lineNum, ok := e.Sources.GetNextLine()
		if !ok {
			break
		}
		e.processLine(raw, source, lineNum)
	}

	for _, sym := range e.SymbolTab.Undefined() {
		e.Reporter.report(errf(UndefinedLabel, "", 0, "The '%s' label is undefined", sym.Name))
	}
	for _, frame := range e.Cond.Unterminated() {
		e.Reporter.report(errf(InvalidArgument, frame.Source, frame.Line, "unterminated IF/DO at end of input"))
	}
	if e.Macros.Capturing() {
		e.Reporter.report(errf(InvalidArgument, "", 0, "unterminated MAC at end of input"))
	}

	return e.processWriteFileQueue()
}

// processLine implements the per-line algorithm of §4.7 steps 1-7.
func (e *Engine) processLine(raw SizedString, source string, lineNum int) {
	li := &LineInfo{Source: source, Line: lineNum, Text: string(raw), Address: e.Bin.PC()}
	idx := e.Lines.Append(li)

	if e.Macros.Capturing() {
		parsed := ParseLine(raw)
		if strings.EqualFold(string(parsed.Operator), "eom") {
			if err := e.Macros.EndCapture(); err != nil {
				e.reportAt(source, lineNum, err)
			}
			return
		}
		e.Macros.CaptureLine(string(raw))
		li.setFlag(flagSkipped)
		return
	}

	parsed := ParseLine(raw)
	if parsed.WholeLineComment {
		return
	}
	opLower := strings.ToLower(string(parsed.Operator))

	switch opLower {
	case "if", "do":
		cond := true
		if !e.Cond.Skipping() {
			if strings.TrimSpace(string(parsed.Operands)) == "" {
				cond = true
			} else {
				val, err := EvalOperand(e, string(parsed.Operands))
				if err != nil {
					e.reportAt(source, lineNum, err)
					cond = false
				} else {
					cond = val.Value != 0
				}
			}
		}
		e.Cond.Push(cond, source, lineNum)
		return
	case "else":
		if err := e.Cond.Else(); err != nil {
			e.reportAt(source, lineNum, err)
		}
		return
	case "fin":
		if err := e.Cond.Pop(); err != nil {
			e.reportAt(source, lineNum, err)
		}
		return
	}

	if e.Cond.Skipping() {
		li.setFlag(flagSkipped)
		return
	}

	qualified, err := e.resolveLabel(parsed.Label, source, lineNum)
	if err != nil {
		e.reportAt(source, lineNum, err)
		return
	}

	if opLower == "" {
		e.bindLabelIfPresent(qualified, li, source, lineNum)
		return
	}

	operands := string(parsed.Operands)
	equLike, err := e.dispatch(idx, li, qualified, opLower, operands, source, lineNum)
	if err != nil {
		e.reportAt(source, lineNum, err)
		return
	}
	if !equLike {
		e.bindLabelIfPresent(qualified, li, source, lineNum)
	}
}

// resolveLabel validates and qualifies a line's label field, updating the
// current global label when a non-local label is seen (§4.2/§4.7 step 3).
func (e *Engine) resolveLabel(label SizedString, source string, lineNum int) (string, error) {
	if label.Empty() {
		return "", nil
	}
	name := string(label)
	if len(name) > 255 {
		return "", fmt.Errorf("label '%s...' exceeds 255 characters", name[:32])
	}
	first := name[0]
	if !(first == ':' || (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return "", fmt.Errorf("label '%s' must start with a letter or ':'", name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return "", fmt.Errorf("label '%s' contains an invalid character", name)
		}
	}
	if name[0] != ':' {
		e.currentGlobalLabel = name
		return name, nil
	}
	return e.Qualify(name)
}

// bindLabelIfPresent implements §4.7 step 6: a label on a line whose
// directive was not EQU/= is bound to an ABSOLUTE value equal to the
// line's starting PC.
func (e *Engine) bindLabelIfPresent(qualified string, li *LineInfo, source string, lineNum int) {
	if qualified == "" {
		return
	}
	sym, err := e.defineSymbol(qualified, li.Address, Absolute, source, lineNum)
	if err != nil {
		e.reportAt(source, lineNum, err)
		return
	}
	li.Symbol = sym
}

func (e *Engine) defineSymbol(name string, value uint16, typ AddressingType, source string, lineNum int) (*Symbol, error) {
	if err := e.SymbolTab.Define(name, value, typ, source, lineNum, e.applyFixup); err != nil {
		return nil, err
	}
	return e.SymbolTab.Find(name), nil
}

// applyFixup rewrites a previously-emitted placeholder once its symbol is
// defined, per §4.3's deferred fix-up contract.
func (e *Engine) applyFixup(lineIndex, byteOffset, width int, relative bool, value uint16) error {
	target := e.Lines.At(lineIndex)
	addr := target.Address + uint16(byteOffset)
	if relative {
		next := target.Address + uint16(len(target.MachineCode))
		disp := int(value) - int(next)
		if disp < -128 || disp > 127 {
			return fmt.Errorf("branch target out of range (%d)", disp)
		}
		b := byte(int8(disp))
		e.Bin.EmitAt(addr, b)
		if byteOffset < len(target.MachineCode) {
			target.MachineCode[byteOffset] = b
		}
		return nil
	}
	if width == 1 {
		if value > 0xFF {
			return fmt.Errorf("Couldn't properly infer size of a forward reference (value %#x does not fit 8 bits)", value)
		}
		e.Bin.EmitAt(addr, byte(value))
		if byteOffset < len(target.MachineCode) {
			target.MachineCode[byteOffset] = byte(value)
		}
		return nil
	}
	e.Bin.EmitWordAt(addr, value)
	if byteOffset < len(target.MachineCode) {
		target.MachineCode[byteOffset] = byte(value)
	}
	if byteOffset+1 < len(target.MachineCode) {
		target.MachineCode[byteOffset+1] = byte(value >> 8)
	}
	return nil
}

func (e *Engine) reportAt(source string, lineNum int, err error) {
	if d, ok := err.(*Diagnostic); ok {
		e.Reporter.report(d)
		return
	}
	e.Reporter.report(errf(InvalidArgument, source, lineNum, "%s", err.Error()))
}

// ErrorCount and WarningCount expose the Reporter's totals (§6).
func (e *Engine) ErrorCount() int   { return e.Reporter.ErrorCount() }
func (e *Engine) WarningCount() int { return e.Reporter.WarningCount() }
