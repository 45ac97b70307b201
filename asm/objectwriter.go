package asm

import (
	"encoding/binary"
	"os"
)

// savSignature and rw18SavSignature are the implementation-defined 4-byte
// markers §6 asks for; a disk-image reader detects either at offset 0 to
// tell a produced object file apart from raw binary.
var (
	savSignature     = [4]byte{'S', 'A', 'V', 0}
	rw18SavSignature = [4]byte{'R', 'W', '1', '8'}
)

// writeSAV emits the SAV object format of §6: signature, u16 load address,
// u16 length, then the payload.
func writeSAV(path string, start uint16, payload []byte) error {
	buf := make([]byte, 8+len(payload))
	copy(buf[0:4], savSignature[:])
	binary.LittleEndian.PutUint16(buf[4:6], start)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(len(payload)))
	copy(buf[8:], payload)
	return os.WriteFile(path, buf, 0644)
}

// writeRW18SAV emits the extended RW18SAV format of §6: signature, u16
// side, u16 track, u32 intra-track offset, u16 length, payload.
func writeRW18SAV(path string, side, track, offset int, payload []byte) error {
	buf := make([]byte, 14+len(payload))
	copy(buf[0:4], rw18SavSignature[:])
	binary.LittleEndian.PutUint16(buf[4:6], uint16(side))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(track))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(offset))
	binary.LittleEndian.PutUint16(buf[12:14], uint16(len(payload)))
	copy(buf[14:], payload)
	return os.WriteFile(path, buf, 0644)
}

// processWriteFileQueue drains BinBuf's pending-write queue in insertion
// order, producing one object file per entry (§4.6/§4.7's end-of-input
// step). A write failure raises fileException and aborts the remainder of
// the queue, matching §4.6's "failures ... abort the queue".
func (e *Engine) processWriteFileQueue() error {
	for _, w := range e.Bin.PendingWrites() {
		payload := e.Bin.Bytes(w.start, w.length)
		var err error
		if w.rw18 {
			err = writeRW18SAV(w.path, w.side, w.track, w.offset, payload)
		} else {
			err = writeSAV(w.path, w.start, payload)
		}
		if err != nil {
			return errf(FileFailed, "", 0, "failed writing object file '%s': %s", w.path, err.Error())
		}
	}
	return nil
}
