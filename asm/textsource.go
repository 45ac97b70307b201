package asm

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// textSource is one entry of the Text Source Stack (§4.1): a file, an
// in-memory string (used by tests and by string-backed PUT-alikes), or a
// macro expansion.
type textSource interface {
	nextLine() (SizedString, bool) // false on end-of-source
	filename() string
	lineNumber() int
}

// fileSource reads lines from disk, recognizing LF, CR and CRLF
// terminators (§4.1) and stripping them from the returned SizedString.
type fileSource struct {
	path    string
	scanner *bufio.Scanner
	file    *os.File
	line    int
}

func newFileSource(path string) (*fileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	sc.Split(splitAnyLineEnding)
	return &fileSource{path: path, scanner: sc, file: f}, nil
}

// splitAnyLineEnding is a bufio.SplitFunc that breaks on LF, CR, or CRLF,
// matching §4.1's "LF, CR or CRLF" terminator contract exactly (the stock
// bufio.ScanLines only recognizes LF/CRLF).
func splitAnyLineEnding(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (f *fileSource) nextLine() (SizedString, bool) {
	if !f.scanner.Scan() {
		return "", false
	}
	f.line++
	return SizedString(f.scanner.Text()), true
}

func (f *fileSource) filename() string { return f.path }
func (f *fileSource) lineNumber() int  { return f.line }
func (f *fileSource) close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// stringSource reads lines out of an in-memory string, used by
// AssembleString (tests).
type stringSource struct {
	name  string
	lines []string
	idx   int
}

func newStringSource(name, text string) *stringSource {
	lines := strings.Split(strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		// A trailing terminator ends the last line; it does not start a new one.
		lines = lines[:n-1]
	}
	return &stringSource{name: name, lines: lines}
}

func (s *stringSource) nextLine() (SizedString, bool) {
	if s.idx >= len(s.lines) {
		return "", false
	}
	line := s.lines[s.idx]
	s.idx++
	return SizedString(line), true
}

func (s *stringSource) filename() string { return s.name }
func (s *stringSource) lineNumber() int  { return s.idx }

// macroSource replays a macro's captured body as a source, implementing
// the MAC/EOM invocation semantics of §4.7.1.
type macroSource struct {
	def *MacroDefinition
	idx int
}

func newMacroSource(def *MacroDefinition) *macroSource {
	return &macroSource{def: def}
}

func (m *macroSource) nextLine() (SizedString, bool) {
	if m.idx >= len(m.def.Lines) {
		return "", false
	}
	line := m.def.Lines[m.idx]
	m.idx++
	return SizedString(line), true
}

func (m *macroSource) filename() string { return m.def.Name }
func (m *macroSource) lineNumber() int  { return m.idx }

// TextSourceStack models PUT and macro invocation with restore-on-pop,
// per §4.1.
type TextSourceStack struct {
	stack       []textSource
	searchPath  []string
	includeDirs []string // directory of the file that did the including, one per stack level
}

// NewTextSourceStack creates an empty stack with the given include search
// path (tried in order before falling back to the including file's own
// directory, per §4.1).
func NewTextSourceStack(searchPath []string) *TextSourceStack {
	return &TextSourceStack{searchPath: append([]string(nil), searchPath...)}
}

// PushFile opens path (or the first hit among the search path / including
// directory) and pushes it as the new top source.
func (t *TextSourceStack) PushFile(path string) error {
	resolved, err := t.resolveIncludePath(path)
	if err != nil {
		return err
	}
	src, err := newFileSource(resolved)
	if err != nil {
		return err
	}
	t.push(src)
	return nil
}

func (t *TextSourceStack) resolveIncludePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", os.ErrNotExist
	}
	candidates := make([]string, 0, len(t.searchPath)+1)
	candidates = append(candidates, t.searchPath...)
	if len(t.includeDirs) > 0 {
		candidates = append(candidates, t.includeDirs[len(t.includeDirs)-1])
	}
	candidates = append(candidates, ".")
	for _, dir := range candidates {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}

// PushString pushes an in-memory string as the new top source (used by
// AssembleString, e.g. in tests that assemble a literal program).
func (t *TextSourceStack) PushString(name, text string) {
	t.push(newStringSource(name, text))
}

// PushMacro pushes a macro's captured body as the new top source.
func (t *TextSourceStack) PushMacro(def *MacroDefinition) {
	t.push(newMacroSource(def))
}

func (t *TextSourceStack) push(src textSource) {
	dir := "."
	if fs, ok := src.(*fileSource); ok {
		dir = filepath.Dir(fs.path)
	} else if len(t.includeDirs) > 0 {
		dir = t.includeDirs[len(t.includeDirs)-1]
	}
	t.includeDirs = append(t.includeDirs, dir)
	t.stack = append(t.stack, src)
}

// Pop discards the top source, closing any open file handle.
func (t *TextSourceStack) Pop() {
	if len(t.stack) == 0 {
		return
	}
	top := t.stack[len(t.stack)-1]
	if fs, ok := top.(*fileSource); ok {
		fs.close()
	}
	t.stack = t.stack[:len(t.stack)-1]
	t.includeDirs = t.includeDirs[:len(t.includeDirs)-1]
}

// Empty reports whether the stack has no sources left.
func (t *TextSourceStack) Empty() bool { return len(t.stack) == 0 }

// Top returns the current top source, or nil if the stack is empty.
func (t *TextSourceStack) Top() textSource {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// GetNextLine returns the next logical line from the top source, popping
// exhausted sources and continuing with the outer one transparently, per
// §4.1's contract. It returns ok=false only once the whole stack is empty.
func (t *TextSourceStack) GetNextLine() (line SizedString, source string, lineNum int, ok bool) {
	for len(t.stack) > 0 {
		top := t.stack[len(t.stack)-1]
		l, has := top.nextLine()
		if has {
			return l, top.filename(), top.lineNumber(), true
		}
		t.Pop()
	}
	return "", "", 0, false
}
