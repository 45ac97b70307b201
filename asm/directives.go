package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// coreDirectives names every directive the engine recognizes before
// falling back to instruction mnemonics or user macros (§4.7 step 4's
// dispatch order). Keys are lower-cased.
var coreDirectives = map[string]bool{
	"=": true, "equ": true,
	"org": true,
	"dum": true, "dend": true,
	"hex": true,
	"ds":  true,
	"db":  true, "dfb": true,
	"da": true, "dw": true,
	"asc": true,
	"sav": true,
	"lst": true, "tr": true, "xc": true, "mx": true,
	"put": true,
	"if":  true, "do": true, "else": true, "fin": true,
	"mac": true, "eom": true,
	"usr": true,
}

// IsCoreDirective reports whether name (any case) is a reserved directive
// mnemonic, used by the engine's dispatch order and by macro-definition
// validation (a macro cannot shadow a directive).
func IsCoreDirective(name string) bool {
	return coreDirectives[strings.ToLower(name)]
}

// parseHexBytes implements HEX hh[,hh]... (§4.7.1): up to 32 raw bytes, two
// hex digits each, no separators required between pairs but commas are
// accepted between groups.
func parseHexBytes(operands string) ([]byte, error) {
	digits := strings.ReplaceAll(operands, ",", "")
	digits = strings.ReplaceAll(digits, " ", "")
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("HEX operand has an odd number of digits")
	}
	if len(digits)/2 > maxMachineCode {
		return nil, fmt.Errorf("HEX directive accepts at most %d bytes", maxMachineCode)
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, err := strconv.ParseUint(digits[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("'%s' contains an invalid hex digit.", digits[i:i+2])
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// parseDS implements DS count[,fill] (§4.7.1): count of `\` means "pad to
// the next 256-byte boundary" given the current PC.
func parseDS(ctx exprContext, operands string) (count int, fill byte, err error) {
	fields := SplitCSV(operands)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("DS requires a count operand")
	}
	countField := strings.TrimSpace(string(fields[0]))
	if countField == `\` {
		pc := ctx.PC()
		count = int((256 - int(pc%256)) % 256)
	} else {
		e, err := EvalOperand(ctx, countField)
		if err != nil {
			return 0, 0, err
		}
		if e.ForwardRef {
			return 0, 0, fmt.Errorf("DS count cannot be a forward reference")
		}
		count = int(e.Value)
	}
	if len(fields) > 1 && !IsDefaultField(fields[1]) {
		e, err := EvalOperand(ctx, string(fields[1]))
		if err != nil {
			return 0, 0, err
		}
		fill = byte(e.Value)
	}
	return count, fill, nil
}

// parseAsc implements ASC 's...' (§4.7.1): the opening delimiter selects
// high-bit handling — ' sets bit 7 on every byte (Apple II "flashing"/
// high-ASCII text convention), " leaves bits as-is — and the closing
// delimiter must match the opening one.
func parseAsc(operands string) ([]byte, error) {
	s := strings.TrimSpace(operands)
	if len(s) < 2 {
		return nil, fmt.Errorf("ASC requires a quoted string operand")
	}
	delim := s[0]
	if delim != '\'' && delim != '"' {
		return nil, fmt.Errorf("ASC operand must begin with ' or \"")
	}
	if s[len(s)-1] != delim {
		return nil, fmt.Errorf("ASC operand's closing delimiter does not match its opening delimiter")
	}
	body := s[1 : len(s)-1]
	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if delim == '\'' {
			c |= 0x80
		}
		out[i] = c
	}
	return out, nil
}

// parseExprFields splits a DB/DFB/DA/DW operand list on commas (no quoting
// beyond what SplitCSV already tolerates; character-literal terms like
// 'a' never themselves contain a comma).
func parseExprFields(operands string) []string {
	fields := SplitCSV(operands)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
