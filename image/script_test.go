package image

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV("BLOCK, obj.sav , 0, *, 3")
	want := []string{"BLOCK", "obj.sav", "0", "*", "3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsDefault(t *testing.T) {
	if !isDefault("*") {
		t.Fatal("'*' must be the default sentinel")
	}
	if isDefault("3") {
		t.Fatal("'3' must not be the default sentinel")
	}
}

func TestParseScriptNumberHexAndDecimal(t *testing.T) {
	v, err := parseScriptNumber("$1A")
	if err != nil || v != 0x1A {
		t.Fatalf("parseScriptNumber($1A) = %d, %v, want 26, nil", v, err)
	}
	v, err = parseScriptNumber("42")
	if err != nil || v != 42 {
		t.Fatalf("parseScriptNumber(42) = %d, %v, want 42, nil", v, err)
	}
}

func TestRunScriptBlockRecord(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "obj.sav")
	writeSAVFile(t, objPath, 0x800, 3, []byte{0xAA, 0xBB, 0xCC})

	scriptPath := filepath.Join(dir, "script.txt")
	writeFile(t, scriptPath, []byte("BLOCK,"+objPath+",0,*,5\n"))

	img := NewBlockDiskImage(10)
	errs, err := RunScriptCollectErrors(img, scriptPath)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected record errors: %v", errs)
	}
	got := img.Bytes()[5*blockSize : 5*blockSize+3]
	for i, b := range []byte{0xAA, 0xBB, 0xCC} {
		if got[i] != b {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], b)
		}
	}
}

func TestRunScriptCommentsAndBlankLinesIgnored(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.txt")
	writeFile(t, scriptPath, []byte("\n# a comment\n   \n# another\n"))

	img := NewBlockDiskImage(1)
	errs, err := RunScriptCollectErrors(img, scriptPath)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no record errors for a comments-only script, got %v", errs)
	}
}

func TestRunScriptUnknownRecordTypeIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.txt")
	writeFile(t, scriptPath, []byte("BOGUS,a,b,c\n"))

	img := NewBlockDiskImage(1)
	errs, err := RunScriptCollectErrors(img, scriptPath)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one record error, got %v", errs)
	}
}

func TestRunScriptMissingScriptFileIsFatal(t *testing.T) {
	img := NewBlockDiskImage(1)
	if err := RunScript(img, "/nonexistent/path/script.txt", func(int, error) {}); err == nil {
		t.Fatal("a missing script file must be a fatal error, not a per-record one")
	}
}

func TestRunScriptRWTS16Record(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "obj.sav")
	writeSAVFile(t, objPath, 0x800, 2, []byte{0x11, 0x22})

	scriptPath := filepath.Join(dir, "script.txt")
	writeFile(t, scriptPath, []byte("RWTS16,"+objPath+",0,*,1,2\n"))

	img := NewNibbleDiskImage(35, 16)
	errs, err := RunScriptCollectErrors(img, scriptPath)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected record errors: %v", errs)
	}
	off := 1*16*nibbleSectorSize + 2*nibbleSectorSize
	if img.Bytes()[off] != 0x11 || img.Bytes()[off+1] != 0x22 {
		t.Fatalf("bytes not written at expected RWTS16 offset %d", off)
	}
}

func TestRunScriptRW18RecordWithImageTableUpdate(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "table.sav")
	// count=0 -> one entry
	payload := []byte{0x00, 0x34, 0x12}
	writeSAVFile(t, objPath, 0x2000, uint16(len(payload)), payload)

	scriptPath := filepath.Join(dir, "script.txt")
	writeFile(t, scriptPath, []byte("RW18,"+objPath+",0,*,$A9,3,100,$4000\n"))

	img := NewNibbleDiskImage(35, 18)
	errs, err := RunScriptCollectErrors(img, scriptPath)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected record errors: %v", errs)
	}
	off := 3*rw18TrackBytes + 100
	if img.Bytes()[off] != 0x00 {
		t.Fatalf("count byte not written at expected RW18 offset %d", off)
	}
}
