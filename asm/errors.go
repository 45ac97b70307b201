package asm

import "fmt"

// ErrorKind names one of the diagnostic categories the assembly engine can
// raise. It replaces the original's thread-local "current exception code"
// with an ordinary Go value (see SPEC_FULL.md §9/§7).
type ErrorKind string

const (
	OutOfMemory           ErrorKind = "outOfMemoryException"
	FileNotFound          ErrorKind = "fileNotFoundException"
	FileOpenFailed        ErrorKind = "fileOpenException"
	FileFailed            ErrorKind = "fileException"
	InvalidArgument       ErrorKind = "invalidArgumentException"
	InvalidHexDigit       ErrorKind = "invalidHexDigitException"
	InvalidSourceOffset   ErrorKind = "invalidSourceOffsetException"
	InvalidLength         ErrorKind = "invalidLengthException"
	InvalidInsertionType  ErrorKind = "invalidInsertionTypeException"
	UndefinedLabel        ErrorKind = "undefinedLabelException"
	NotRecognized         ErrorKind = "notRecognizedException"
)

// Diagnostic is a single located error or warning. It implements error so
// it can flow through normal Go error-handling paths, and also carries the
// structured Kind so callers can classify it with errors.As.
type Diagnostic struct {
	Source   string
	Line     int
	Kind     ErrorKind
	Warning  bool
	Message  string
}

func (d *Diagnostic) Error() string {
	severity := "error"
	if d.Warning {
		severity = "warning"
	}
	if d.Source == "" {
		return fmt.Sprintf("%s: %s", severity, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.Source, d.Line, severity, d.Message)
}

func errf(kind ErrorKind, source string, line int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Source: source, Line: line, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func warnf(source string, line int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Source: source, Line: line, Warning: true, Message: fmt.Sprintf(format, args...)}
}

// Reporter accumulates diagnostics produced while assembling a source file
// and keeps the error/warning counts the engine exposes publicly (§6).
type Reporter struct {
	diagnostics []*Diagnostic
	errorCount  int
	warnCount   int
}

func (r *Reporter) report(d *Diagnostic) {
	if d == nil {
		return
	}
	r.diagnostics = append(r.diagnostics, d)
	if d.Warning {
		r.warnCount++
	} else {
		r.errorCount++
	}
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int { return r.errorCount }

// WarningCount returns the number of warnings reported so far.
func (r *Reporter) WarningCount() int { return r.warnCount }

// Diagnostics returns every diagnostic reported so far, in order.
func (r *Reporter) Diagnostics() []*Diagnostic { return r.diagnostics }
