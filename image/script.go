package image

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// RunScript executes a disk-image insertion script against img: every
// non-blank, non-'#' line is a CSV record naming an object file and
// insertion coordinates (§4.9). A record's own errors are reported
// through report and do not stop the run; only a failure to read the
// script file itself is fatal.
func RunScript(img *DiskImage, path string, report func(line int, err error)) error {
	f, err := os.Open(path)
	if err != nil {
		return errf(FileOpenFailed, "", 0, "could not open script '%s': %s", path, err.Error())
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := img.runScriptRecord(line); err != nil {
			report(lineNum, err)
		}
	}
	if err := sc.Err(); err != nil {
		return errf(FileFailed, path, lineNum, "error reading script: %s", err.Error())
	}
	return nil
}

func (img *DiskImage) runScriptRecord(line string) error {
	fields := splitCSV(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty script record")
	}
	kind := strings.ToUpper(fields[0])
	args := fields[1:]

	switch kind {
	case "BLOCK":
		return img.runBlockRecord(args)
	case "RWTS16":
		return img.runRWTS16Record(args)
	case "RWTS18":
		return img.runRWTS18Record(args)
	case "RW18":
		return img.runRW18Record(args)
	default:
		return fmt.Errorf("unrecognized script record type '%s'", fields[0])
	}
}

func splitCSV(line string) []string {
	return lo.Map(strings.Split(line, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
}

// RunScriptCollectErrors is a convenience wrapper for callers (such as the
// tests) that want the whole per-record error list at once rather than a
// streaming callback; it never aborts early on a record error.
func RunScriptCollectErrors(img *DiskImage, path string) ([]error, error) {
	var errs []error
	err := RunScript(img, path, func(_ int, e error) { errs = append(errs, e) })
	return errs, err
}

func isDefault(field string) bool { return field == "*" }

func parseScriptNumber(field string) (int, error) {
	if strings.HasPrefix(field, "$") {
		v, err := strconv.ParseInt(field[1:], 16, 32)
		return int(v), err
	}
	return strconv.Atoi(field)
}

func (img *DiskImage) loadObjectField(objField string) error {
	return img.ReadObjectFile(objField)
}

func (img *DiskImage) resolveLength(field string) (int, error) {
	if isDefault(field) {
		return img.ObjectLength(), nil
	}
	return parseScriptNumber(field)
}

func requireFields(args []string, n int, kind string) error {
	if len(args) < n {
		return fmt.Errorf("%s record requires at least %d fields, got %d", kind, n, len(args))
	}
	return nil
}

func (img *DiskImage) runBlockRecord(args []string) error {
	if err := requireFields(args, 4, "BLOCK"); err != nil {
		return err
	}
	if err := img.loadObjectField(args[0]); err != nil {
		return err
	}
	srcOffset, err := parseScriptNumber(args[1])
	if err != nil {
		return fmt.Errorf("invalid srcOffset '%s': %s", args[1], err)
	}
	length, err := img.resolveLength(args[2])
	if err != nil {
		return fmt.Errorf("invalid length '%s': %s", args[2], err)
	}
	var block int
	if isDefault(args[3]) {
		block = img.lastInsertEnd / blockSize
	} else {
		block, err = parseScriptNumber(args[3])
		if err != nil {
			return fmt.Errorf("invalid block '%s': %s", args[3], err)
		}
	}
	intraBlockOffset := 0
	if len(args) > 4 && !isDefault(args[4]) {
		intraBlockOffset, err = parseScriptNumber(args[4])
		if err != nil {
			return fmt.Errorf("invalid intraBlockOffset '%s': %s", args[4], err)
		}
	}
	return img.InsertObjectFile(Insert{
		Type:             InsertBlock,
		SourceOffset:     srcOffset,
		Length:           length,
		Block:            block,
		IntraBlockOffset: intraBlockOffset,
	})
}

func (img *DiskImage) runRWTS16Record(args []string) error {
	if err := requireFields(args, 5, "RWTS16"); err != nil {
		return err
	}
	if err := img.loadObjectField(args[0]); err != nil {
		return err
	}
	srcOffset, err := parseScriptNumber(args[1])
	if err != nil {
		return fmt.Errorf("invalid srcOffset '%s': %s", args[1], err)
	}
	length, err := img.resolveLength(args[2])
	if err != nil {
		return fmt.Errorf("invalid length '%s': %s", args[2], err)
	}
	track, err := parseScriptNumber(args[3])
	if err != nil {
		return fmt.Errorf("invalid track '%s': %s", args[3], err)
	}
	sector, err := parseScriptNumber(args[4])
	if err != nil {
		return fmt.Errorf("invalid sector '%s': %s", args[4], err)
	}
	return img.InsertObjectFile(Insert{
		Type:         InsertRWTS16,
		SourceOffset: srcOffset,
		Length:       length,
		Track:        track,
		Sector:       sector,
	})
}

func (img *DiskImage) runRWTS18Record(args []string) error {
	if err := requireFields(args, 7, "RWTS18"); err != nil {
		return err
	}
	if err := img.loadObjectField(args[0]); err != nil {
		return err
	}
	srcOffset, err := parseScriptNumber(args[1])
	if err != nil {
		return fmt.Errorf("invalid srcOffset '%s': %s", args[1], err)
	}
	length, err := img.resolveLength(args[2])
	if err != nil {
		return fmt.Errorf("invalid length '%s': %s", args[2], err)
	}
	side, err := img.resolveRW18Positional(args[3], func(h ObjectHeader) int { return int(h.Side) })
	if err != nil {
		return fmt.Errorf("invalid side '%s': %s", args[3], err)
	}
	track, err := img.resolveRW18Positional(args[4], func(h ObjectHeader) int { return int(h.Track) })
	if err != nil {
		return fmt.Errorf("invalid track '%s': %s", args[4], err)
	}
	sector, err := parseScriptNumber(args[5])
	if err != nil {
		return fmt.Errorf("invalid sector '%s': %s", args[5], err)
	}
	intraSectorOffset, err := parseScriptNumber(args[6])
	if err != nil {
		return fmt.Errorf("invalid intraSectorOffset '%s': %s", args[6], err)
	}
	return img.InsertObjectFile(Insert{
		Type:              InsertRWTS18,
		SourceOffset:      srcOffset,
		Length:            length,
		Side:              side,
		Track:             track,
		Sector:            sector,
		IntraSectorOffset: intraSectorOffset,
	})
}

func (img *DiskImage) runRW18Record(args []string) error {
	if err := requireFields(args, 6, "RW18"); err != nil {
		return err
	}
	if err := img.loadObjectField(args[0]); err != nil {
		return err
	}
	srcOffset, err := parseScriptNumber(args[1])
	if err != nil {
		return fmt.Errorf("invalid srcOffset '%s': %s", args[1], err)
	}
	length, err := img.resolveLength(args[2])
	if err != nil {
		return fmt.Errorf("invalid length '%s': %s", args[2], err)
	}
	side, err := img.resolveRW18Positional(args[3], func(h ObjectHeader) int { return int(h.Side) })
	if err != nil {
		return fmt.Errorf("invalid side '%s': %s", args[3], err)
	}
	track, err := img.resolveRW18Positional(args[4], func(h ObjectHeader) int { return int(h.Track) })
	if err != nil {
		return fmt.Errorf("invalid track '%s': %s", args[4], err)
	}
	intraTrackOffset, err := img.resolveRW18Positional(args[5], func(h ObjectHeader) int { return int(h.Offset) })
	if err != nil {
		return fmt.Errorf("invalid intraTrackOffset '%s': %s", args[5], err)
	}

	insert := Insert{
		Type:             InsertRW18,
		SourceOffset:     srcOffset,
		Length:           length,
		Side:             side,
		Track:            track,
		IntraTrackOffset: intraTrackOffset,
	}
	if err := img.InsertObjectFile(insert); err != nil {
		return err
	}
	if len(args) > 6 && !isDefault(args[6]) {
		tableAddr, err := parseScriptNumber(args[6])
		if err != nil {
			return fmt.Errorf("invalid imageTableAddress '%s': %s", args[6], err)
		}
		return img.UpdateImageTableFile(uint16(tableAddr))
	}
	return nil
}

// resolveRW18Positional implements the "value from the object file
// header" default for RW18's positional fields (§4.9).
func (img *DiskImage) resolveRW18Positional(field string, fromHeader func(ObjectHeader) int) (int, error) {
	if isDefault(field) {
		return fromHeader(img.Header()), nil
	}
	return parseScriptNumber(field)
}
