package asm

import "testing"

func TestIsCoreDirective(t *testing.T) {
	for _, name := range []string{"EQU", "org", "Dum", "hex", "XC", "usr"} {
		if !IsCoreDirective(name) {
			t.Errorf("IsCoreDirective(%q) = false, want true", name)
		}
	}
	if IsCoreDirective("lda") {
		t.Fatal("an instruction mnemonic must not be a core directive")
	}
}

func TestParseHexBytes(t *testing.T) {
	got, err := parseHexBytes("A9,00,8D,00,02")
	if err != nil {
		t.Fatalf("parseHexBytes: %v", err)
	}
	want := []byte{0xA9, 0x00, 0x8D, 0x00, 0x02}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestParseHexBytesOddDigitsIsAnError(t *testing.T) {
	if _, err := parseHexBytes("A9,0"); err == nil {
		t.Fatal("an odd total digit count must be an error")
	}
}

func TestParseHexBytesTooLongIsAnError(t *testing.T) {
	digits := ""
	for i := 0; i < maxMachineCode+1; i++ {
		digits += "00"
	}
	if _, err := parseHexBytes(digits); err == nil {
		t.Fatal("more than maxMachineCode bytes must be an error")
	}
}

func TestParseHexBytesInvalidDigitMessage(t *testing.T) {
	_, err := parseHexBytes("fg")
	if err == nil {
		t.Fatal("expected an error for an invalid hex digit")
	}
	want := "'fg' contains an invalid hex digit."
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestParseDSCount(t *testing.T) {
	ctx := newTestCtx(0)
	count, fill, err := parseDS(ctx, "4")
	if err != nil {
		t.Fatalf("parseDS: %v", err)
	}
	if count != 4 || fill != 0 {
		t.Fatalf("count=%d fill=%d, want 4/0", count, fill)
	}
}

func TestParseDSCountAndFill(t *testing.T) {
	ctx := newTestCtx(0)
	count, fill, err := parseDS(ctx, "3,$FF")
	if err != nil {
		t.Fatalf("parseDS: %v", err)
	}
	if count != 3 || fill != 0xFF {
		t.Fatalf("count=%d fill=%#x, want 3/0xff", count, fill)
	}
}

func TestParseDSBackslashPadsToPageBoundary(t *testing.T) {
	ctx := newTestCtx(0x10FD)
	count, _, err := parseDS(ctx, `\`)
	if err != nil {
		t.Fatalf("parseDS: %v", err)
	}
	if count != 3 {
		t.Fatalf("DS \\ at PC=0x10FD count = %d, want 3", count)
	}
}

func TestParseAscHighBit(t *testing.T) {
	got, err := parseAsc(`'AB'`)
	if err != nil {
		t.Fatalf("parseAsc: %v", err)
	}
	if len(got) != 2 || got[0] != 'A'|0x80 || got[1] != 'B'|0x80 {
		t.Fatalf("got %v, want high-bit-set A,B", got)
	}
}

func TestParseAscLowBit(t *testing.T) {
	got, err := parseAsc(`"AB"`)
	if err != nil {
		t.Fatalf("parseAsc: %v", err)
	}
	if len(got) != 2 || got[0] != 'A' || got[1] != 'B' {
		t.Fatalf("got %v, want plain A,B", got)
	}
}

func TestParseAscMismatchedDelimiterIsAnError(t *testing.T) {
	if _, err := parseAsc(`"AB'`); err == nil {
		t.Fatal("mismatched open/close delimiters must be an error")
	}
}

func TestParseExprFields(t *testing.T) {
	got := parseExprFields("$10, $20 ,LABEL")
	want := []string{"$10", "$20", "LABEL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}
