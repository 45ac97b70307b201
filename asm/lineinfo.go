package asm

import "github.com/samber/lo"

// lineFlags records per-line bookkeeping, per §3's LineInfo log. The
// engine sets flagMachineCodeEmitted and flagSkipped, which Emitted()
// reads; flagWasEqu and flagWasMacroInvocation are not set by the engine.
type lineFlags int

const (
	flagMachineCodeEmitted lineFlags = 1 << iota
	flagWasEqu
	flagWasMacroInvocation
	flagSkipped // conditional-assembly suppressed this line
)

// LineInfo is one emission-order record of a processed source line (§3).
// maxMachineCode bounds the per-line machine-code snippet kept for listing
// output; a DB/DA/DS run longer than this is still fully written to
// BinBuf, only the LST excerpt is capped (HEX rejects more than this many
// bytes).
const maxMachineCode = 32

type LineInfo struct {
	Source string
	Line   int
	Text   string

	Address     uint16
	MachineCode []byte
	Flags       lineFlags

	Symbol *Symbol // the label this line defined, if any
}

func (li *LineInfo) setFlag(f lineFlags)      { li.Flags |= f }
func (li *LineInfo) hasFlag(f lineFlags) bool { return li.Flags&f != 0 }

// LineLog is the ordered list of LineInfo records the engine appends to as
// it processes each input line; fix-ups are addressed by index into this
// log rather than by pointer (§9).
type LineLog struct {
	lines []*LineInfo
}

func NewLineLog() *LineLog { return &LineLog{} }

// Append adds a new record and returns its index.
func (l *LineLog) Append(li *LineInfo) int {
	l.lines = append(l.lines, li)
	return len(l.lines) - 1
}

func (l *LineLog) At(i int) *LineInfo { return l.lines[i] }

func (l *LineLog) Len() int { return len(l.lines) }

func (l *LineLog) All() []*LineInfo { return l.lines }

// Emitted returns the subset of records that actually produced machine
// code, in source order, for listing output — records suppressed by
// conditional assembly or carrying no bytes (labels, EQUs) are dropped.
func (l *LineLog) Emitted() []*LineInfo {
	return lo.Filter(l.lines, func(li *LineInfo, _ int) bool {
		return li.hasFlag(flagMachineCodeEmitted) && !li.hasFlag(flagSkipped)
	})
}
