package asm

import "strings"

// ParsedLine is the result of splitting one source line into its label,
// operator and operands fields (§3/§4.2). Each field is a SizedString
// slice of the original line text; any may be empty/absent.
type ParsedLine struct {
	Label    SizedString
	Operator SizedString
	Operands SizedString

	WholeLineComment bool
}

// ParseLine recognizes a column-0 label, an operator token, and an operands
// token running to end-of-line or a ';' comment, honoring ASCII string
// literals (matching single or double quotes) in which delimiters and
// whitespace are preserved (§4.2). The original carves the mutable line
// buffer with NULs; we instead compute three (start,length) slices over
// the read-only line, which is the idiomatic Go rendition of the same
// contract (§9 design note).
func ParseLine(line SizedString) ParsedLine {
	s := string(line)
	if len(s) == 0 {
		return ParsedLine{}
	}
	if s[0] == '*' || s[0] == ';' {
		return ParsedLine{WholeLineComment: true}
	}

	var p ParsedLine
	i := 0
	n := len(s)

	if !isSpace(s[0]) {
		start := i
		for i < n && !isSpace(s[i]) {
			i++
		}
		p.Label = SizedString(s[start:i])
	}

	for i < n && isSpace(s[i]) {
		i++
	}
	if i < n && s[i] != ';' {
		start := i
		for i < n && !isSpace(s[i]) {
			i++
		}
		p.Operator = SizedString(s[start:i])
	}

	for i < n && isSpace(s[i]) {
		i++
	}
	if i < n && s[i] != ';' {
		start := i
		for i < n {
			c := s[i]
			if c == ';' {
				break
			}
			if c == '\'' || c == '"' {
				quote := c
				i++
				for i < n && s[i] != quote {
					i++
				}
				if i < n {
					i++
				}
				continue
			}
			i++
		}
		end := i
		p.Operands = SizedString(strings.TrimRight(s[start:end], " \t"))
	}

	return p
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// SplitCSV splits a directive/script field list on commas with no escaping
// (§4.2). Each field has leading/trailing whitespace trimmed; an empty
// trailing field is dropped only if the whole input was empty.
func SplitCSV(s string) []SizedString {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]SizedString, len(parts))
	for i, p := range parts {
		out[i] = SizedString(strings.TrimSpace(p))
	}
	return out
}

// IsDefaultField reports whether a CSV field is the "*" sentinel meaning
// "reuse default", per §4.2/§4.9.
func IsDefaultField(f SizedString) bool {
	return string(f.TrimSpace()) == "*"
}
