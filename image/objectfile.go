package image

import (
	"encoding/binary"
	"os"
)

var (
	savSignature     = [4]byte{'S', 'A', 'V', 0}
	rw18SavSignature = [4]byte{'R', 'W', '1', '8'}
)

// ObjectHeader is the parsed load-address metadata a SAV/RW18SAV file
// declares, independent of its raw payload bytes (§4.8/§6).
type ObjectHeader struct {
	RW18   bool
	Side   uint16
	Track  uint16
	Offset uint32
	Address uint16
	Length  uint16
	payloadStart int
}

// detectHeader classifies raw file bytes per §4.8's "file header detection"
// rule: a matching signature declares a typed header, anything else is
// raw binary whose whole length is the payload.
func detectHeader(data []byte) ObjectHeader {
	if len(data) >= 8 && [4]byte{data[0], data[1], data[2], data[3]} == savSignature {
		return ObjectHeader{
			Address:      binary.LittleEndian.Uint16(data[4:6]),
			Length:       binary.LittleEndian.Uint16(data[6:8]),
			payloadStart: 8,
		}
	}
	if len(data) >= 14 && [4]byte{data[0], data[1], data[2], data[3]} == rw18SavSignature {
		return ObjectHeader{
			RW18:         true,
			Side:         binary.LittleEndian.Uint16(data[4:6]),
			Track:        binary.LittleEndian.Uint16(data[6:8]),
			Offset:       binary.LittleEndian.Uint32(data[8:12]),
			Length:       binary.LittleEndian.Uint16(data[12:14]),
			payloadStart: 14,
		}
	}
	return ObjectHeader{Length: uint16(len(data)), payloadStart: 0}
}

// ReadObjectFile loads path into the image's object buffer, detecting a
// SAV/RW18SAV header and rounding the stored buffer size up to a block
// boundary so block-aligned insertion always has room (§4.8).
func (img *DiskImage) ReadObjectFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errf(FileNotFound, "", 0, "object file '%s' not found", path)
		}
		return errf(FileOpenFailed, "", 0, "could not open object file '%s': %s", path, err.Error())
	}
	header := detectHeader(data)
	payload := data[header.payloadStart:]
	if int(header.Length) < len(payload) {
		payload = payload[:header.Length]
	}

	rounded := roundUpToBlock(len(payload))
	buf := make([]byte, rounded)
	copy(buf, payload)

	img.object = buf
	img.objectLength = len(payload)
	img.header = header
	return nil
}

func roundUpToBlock(n int) int {
	const block = blockSize
	if n%block == 0 {
		return n
	}
	return (n/block + 1) * block
}

// UpdateImageTableFile rewrites an in-memory image-table header already
// loaded into the object buffer (§4.8): a count byte followed by
// (count+1) little-endian load-address entries. The entries are rebased
// so the first equals newAddress+1+2*(count+1), and the object length is
// truncated to the recomputed payload end.
func (img *DiskImage) UpdateImageTableFile(newAddress uint16) error {
	if img.objectLength < 1 {
		return errf(InvalidLength, "", 0, "image table file is too short to contain a count byte")
	}
	count := int(img.object[0])
	entryBytes := 2 * (count + 1)
	if img.objectLength < 1+entryBytes {
		return errf(InvalidLength, "", 0, "image table declares %d entries but object is too short", count+1)
	}

	entries := make([]uint16, count+1)
	for i := 0; i <= count; i++ {
		off := 1 + 2*i
		entries[i] = binary.LittleEndian.Uint16(img.object[off : off+2])
	}
	for i := 1; i <= count; i++ {
		if entries[i] < entries[i-1] {
			return errf(InvalidArgument, "", 0, "image table addresses are not monotonically increasing")
		}
	}

	base := entries[0]
	newBase := newAddress + uint16(1+entryBytes)
	delta := int32(newBase) - int32(base)

	payloadEnd := 0
	for i := 0; i <= count; i++ {
		rebased := uint16(int32(entries[i]) + delta)
		entries[i] = rebased
		off := 1 + 2*i
		binary.LittleEndian.PutUint16(img.object[off:off+2], rebased)
		if int(rebased) > payloadEnd {
			payloadEnd = int(rebased)
		}
	}
	if payloadEnd-int(newBase) < 0 || 1+entryBytes+(payloadEnd-int(newBase)) > len(img.object) {
		return errf(InvalidLength, "", 0, "rebased image table payload does not fit the object buffer")
	}
	img.objectLength = 1 + entryBytes + (payloadEnd - int(newBase))
	return nil
}
