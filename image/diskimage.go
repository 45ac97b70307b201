package image

// Geometry constants from §4.8/§4.9: a ProDOS block is 512 bytes; a DOS
// 3.3/RWTS16 nibble sector is 256 bytes; an RW18 track packs 18 such
// sectors (4608 bytes) addressed by a flat intra-track offset instead of
// per-sector coordinates.
const (
	blockSize       = 512
	nibbleSectorSize = 256
	rw18TrackBytes  = 18 * nibbleSectorSize
	rw18TrackCount  = 35 // tracks 0..34
)

// rw18Sides are the Apple-specific magic bytes identifying which physical
// side of an RW18 volume a coordinate addresses.
var rw18Sides = map[int]bool{0xA9: true, 0xAD: true, 0x79: true}

// InsertType selects which coordinate system an Insert uses (§3/§4.9).
type InsertType int

const (
	InsertBlock InsertType = iota
	InsertRWTS16
	InsertRWTS18
	InsertRW18
)

// Insert is a fully-resolved (defaults applied) disk-image insertion
// descriptor (§3).
type Insert struct {
	Type         InsertType
	SourceOffset int
	Length       int

	Block            int // BLOCK
	IntraBlockOffset int

	Side              int // RWTS18/RW18
	Track             int // RWTS16/RWTS18/RW18
	Sector            int // RWTS16/RWTS18
	IntraSectorOffset int // RWTS18
	IntraTrackOffset  int // RW18
}

type variantKind int

const (
	variantBlock variantKind = iota
	variantNibble
)

// DiskImage is a zero-initialized byte arena of one of two geometries,
// plus the most recently loaded object file and the last insertion made
// into it (§3).
type DiskImage struct {
	bytes []byte

	object       []byte
	objectLength int
	header       ObjectHeader

	variant     variantKind
	blockCount  int
	trackCount  int
	sectorCount int

	lastInsert    *Insert
	lastInsertEnd int // byte offset one past the most recent BLOCK insertion, for "*" block defaulting
}

// NewBlockDiskImage allocates a ProDOS-style block image (§4.8).
func NewBlockDiskImage(blockCount int) *DiskImage {
	return &DiskImage{bytes: make([]byte, blockCount*blockSize), variant: variantBlock, blockCount: blockCount}
}

// NewNibbleDiskImage allocates a DOS 3.3/RWTS-style nibble image (§4.8).
func NewNibbleDiskImage(trackCount, sectorCount int) *DiskImage {
	return &DiskImage{bytes: make([]byte, trackCount*sectorCount*nibbleSectorSize), variant: variantNibble, trackCount: trackCount, sectorCount: sectorCount}
}

// Bytes exposes the underlying arena, e.g. for writing the finished image
// to disk.
func (img *DiskImage) Bytes() []byte { return img.bytes }

// ObjectLength returns the declared length of the most recently loaded
// object file, used by script.go's "*" length default.
func (img *DiskImage) ObjectLength() int { return img.objectLength }

// Header returns the most recently loaded object file's parsed header,
// used by script.go's RW18 positional "*" defaults.
func (img *DiskImage) Header() ObjectHeader { return img.header }

// InsertObjectFile validates source bounds then dispatches to the
// variant-specific coordinate check and byte copy (§4.8).
func (img *DiskImage) InsertObjectFile(insert Insert) error {
	if insert.SourceOffset < 0 || insert.SourceOffset >= img.objectLength {
		return errf(InvalidSourceOffset, "", 0, "source offset %d is out of bounds (object length %d)", insert.SourceOffset, img.objectLength)
	}
	if insert.SourceOffset+insert.Length > len(img.object) {
		return errf(InvalidLength, "", 0, "source offset+length %d exceeds object buffer size %d", insert.SourceOffset+insert.Length, len(img.object))
	}

	var dest int
	var err error
	switch insert.Type {
	case InsertBlock:
		if img.variant != variantBlock {
			return errf(InvalidInsertionType, "", 0, "BLOCK insertion is not valid on a nibble disk image")
		}
		dest, err = img.blockOffset(insert)
	case InsertRWTS16:
		if img.variant != variantNibble {
			return errf(InvalidInsertionType, "", 0, "RWTS16 insertion is not valid on a block disk image")
		}
		dest, err = img.rwts16Offset(insert)
	case InsertRWTS18:
		if img.variant != variantNibble {
			return errf(InvalidInsertionType, "", 0, "RWTS18 insertion is not valid on a block disk image")
		}
		dest, err = img.rwts18Offset(insert)
	case InsertRW18:
		if img.variant != variantNibble {
			return errf(InvalidInsertionType, "", 0, "RW18 insertion is not valid on a block disk image")
		}
		dest, err = img.rw18Offset(insert)
	default:
		return errf(InvalidInsertionType, "", 0, "unrecognized insertion type")
	}
	if err != nil {
		return err
	}

	if dest+insert.Length > len(img.bytes) {
		return errf(BlockExceedsImageBounds, "", 0, "insertion at offset %d length %d exceeds image bounds %d", dest, insert.Length, len(img.bytes))
	}
	copy(img.bytes[dest:dest+insert.Length], img.object[insert.SourceOffset:insert.SourceOffset+insert.Length])

	ins := insert
	img.lastInsert = &ins
	if insert.Type == InsertBlock {
		img.lastInsertEnd = dest + insert.Length
	}
	return nil
}

func (img *DiskImage) blockOffset(insert Insert) (int, error) {
	if insert.Block < 0 || insert.Block >= img.blockCount {
		return 0, errf(BlockExceedsImageBounds, "", 0, "block %d is out of bounds (%d blocks)", insert.Block, img.blockCount)
	}
	if insert.IntraBlockOffset < 0 || insert.IntraBlockOffset > blockSize-1 {
		return 0, errf(InvalidIntraBlockOffset, "", 0, "intra-block offset %d is out of range 0..%d", insert.IntraBlockOffset, blockSize-1)
	}
	return insert.Block*blockSize + insert.IntraBlockOffset, nil
}

func (img *DiskImage) rwts16Offset(insert Insert) (int, error) {
	if insert.Track < 0 || insert.Track >= rw18TrackCount {
		return 0, errf(InvalidTrack, "", 0, "track %d is out of range 0..%d", insert.Track, rw18TrackCount-1)
	}
	if insert.Sector < 0 || insert.Sector > 15 {
		return 0, errf(InvalidSector, "", 0, "sector %d is out of range 0..15", insert.Sector)
	}
	return insert.Track*img.sectorCount*nibbleSectorSize + insert.Sector*nibbleSectorSize, nil
}

func (img *DiskImage) rwts18Offset(insert Insert) (int, error) {
	if !rw18Sides[insert.Side] {
		return 0, errf(InvalidSide, "", 0, "side 0x%02X is not one of the recognized RW18 side markers", insert.Side)
	}
	if insert.Track < 0 || insert.Track >= rw18TrackCount {
		return 0, errf(InvalidTrack, "", 0, "track %d is out of range 0..%d", insert.Track, rw18TrackCount-1)
	}
	if insert.Sector < 0 || insert.Sector > 15 {
		return 0, errf(InvalidSector, "", 0, "sector %d is out of range 0..15", insert.Sector)
	}
	if insert.IntraSectorOffset < 0 || insert.IntraSectorOffset > 255 {
		return 0, errf(InvalidIntraSectorOffset, "", 0, "intra-sector offset %d is out of range 0..255", insert.IntraSectorOffset)
	}
	return insert.Track*img.sectorCount*nibbleSectorSize + insert.Sector*nibbleSectorSize + insert.IntraSectorOffset, nil
}

func (img *DiskImage) rw18Offset(insert Insert) (int, error) {
	if !rw18Sides[insert.Side] {
		return 0, errf(InvalidSide, "", 0, "side 0x%02X is not one of the recognized RW18 side markers", insert.Side)
	}
	if insert.Track < 0 || insert.Track >= rw18TrackCount {
		return 0, errf(InvalidTrack, "", 0, "track %d is out of range 0..%d", insert.Track, rw18TrackCount-1)
	}
	if insert.IntraTrackOffset < 0 || insert.IntraTrackOffset > rw18TrackBytes-1 {
		return 0, errf(InvalidIntraTrackOffset, "", 0, "intra-track offset %d is out of range 0..%d", insert.IntraTrackOffset, rw18TrackBytes-1)
	}
	return insert.Track*rw18TrackBytes + insert.IntraTrackOffset, nil
}
