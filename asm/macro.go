package asm

import "fmt"

// MacroDefinition is one user macro: a name and its captured body lines,
// recorded between MAC and EOM (§3/§4.7.1). The original links these in a
// singly-linked list; a name-keyed map in MacroTable gives the same
// "defined in order, found by name" behavior without hand-rolled links.
type MacroDefinition struct {
	Name   string
	Source string
	Line   int
	Lines  []string
}

// MacroTable owns every macro defined so far and the in-progress capture
// state between a MAC and its matching EOM.
type MacroTable struct {
	macros    map[string]*MacroDefinition
	capturing *MacroDefinition
}

func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*MacroDefinition)}
}

// BeginCapture starts recording a new macro body; subsequent lines go to
// CaptureLine until EndCapture (EOM) is reached.
func (m *MacroTable) BeginCapture(name, source string, line int) error {
	if m.capturing != nil {
		return fmt.Errorf("nested MAC '%s' inside macro '%s'", name, m.capturing.Name)
	}
	if _, exists := m.macros[name]; exists {
		return fmt.Errorf("macro '%s' already defined", name)
	}
	m.capturing = &MacroDefinition{Name: name, Source: source, Line: line}
	return nil
}

// Capturing reports whether a MAC/EOM capture is in progress.
func (m *MacroTable) Capturing() bool { return m.capturing != nil }

// CaptureLine appends one raw source line to the macro currently being
// captured.
func (m *MacroTable) CaptureLine(text string) {
	m.capturing.Lines = append(m.capturing.Lines, text)
}

// EndCapture closes the in-progress macro (EOM) and registers it by name.
func (m *MacroTable) EndCapture() error {
	if m.capturing == nil {
		return fmt.Errorf("EOM without matching MAC")
	}
	m.macros[m.capturing.Name] = m.capturing
	m.capturing = nil
	return nil
}

// Find returns the macro registered under name (case handled by the
// caller, which looks mnemonics up case-insensitively per §4.7 step 4),
// or nil if name is not a macro.
func (m *MacroTable) Find(name string) *MacroDefinition { return m.macros[name] }
