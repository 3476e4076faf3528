package page

import (
	"encoding/binary"

	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// Magic identifies a file as belonging to this engine.
const Magic uint64 = 0xDEADBEEF

// Fixed offsets within the superblock. Computed once here rather than
// scattered as magic numbers through the rest of the package.
const (
	magicOffset             = 0
	freeListSentinelOffset  = magicOffset + 8
	freePagesCountOffset    = freeListSentinelOffset + HeaderSize
	pagesCountOffset        = freePagesCountOffset + 8
	classListSentinelOffset = pagesCountOffset + 8
	classListCountOffset    = classListSentinelOffset + HeaderSize
	superblockEnd           = classListCountOffset + 8
)

// kPagetableOffset is the absolute offset where the page table begins: the
// first byte past the superblock.
const kPagetableOffset = superblockEnd

// Superblock is the fixed record at file offset 0.
type Superblock struct {
	FreeListSentinel  Header
	FreePagesCount    uint64
	PagesCount        uint64
	ClassListSentinel Header
	ClassListCount    uint64
}

// ReadSuperblock validates the magic and decodes the superblock. A magic
// mismatch or short file is a StructureError.
func ReadSuperblock(f *storage.File) (Superblock, error) {
	if f.GetSize() < superblockEnd {
		return Superblock{}, dberr.Structuref("file too small to hold a superblock")
	}
	magic, err := f.ReadUint64(magicOffset)
	if err != nil {
		return Superblock{}, dberr.Structuref("cannot read superblock magic: %v", err)
	}
	if magic != Magic {
		return Superblock{}, dberr.Structuref("bad superblock magic %#x", magic)
	}

	buf := make([]byte, superblockEnd)
	if err := f.ReadAt(0, buf); err != nil {
		return Superblock{}, dberr.Structuref("cannot read superblock: %v", err)
	}

	return Superblock{
		FreeListSentinel:  DecodeHeader(buf[freeListSentinelOffset:]),
		FreePagesCount:    binary.LittleEndian.Uint64(buf[freePagesCountOffset:]),
		PagesCount:        binary.LittleEndian.Uint64(buf[pagesCountOffset:]),
		ClassListSentinel: DecodeHeader(buf[classListSentinelOffset:]),
		ClassListCount:    binary.LittleEndian.Uint64(buf[classListCountOffset:]),
	}, nil
}

// InitSuperblock writes a fresh, empty superblock: magic, two empty list
// sentinels, and zeroed counters. It does not truncate any existing page
// table content past the superblock; callers that want a clean file should
// Clear the File first.
func InitSuperblock(f *storage.File) (Superblock, error) {
	sb := Superblock{
		FreeListSentinel:  emptySentinel(SentinelIndex),
		FreePagesCount:    0,
		PagesCount:        0,
		ClassListSentinel: emptySentinel(SentinelIndex),
		ClassListCount:    0,
	}
	if f.GetSize() < superblockEnd {
		if err := f.Extend(superblockEnd - f.GetSize()); err != nil {
			return Superblock{}, err
		}
	}
	if err := f.WriteUint64(magicOffset, Magic); err != nil {
		return Superblock{}, err
	}
	if err := WriteSuperblock(f, sb); err != nil {
		return Superblock{}, err
	}
	return sb, nil
}

// WriteSuperblock persists sb's mutable fields in full. Only InitSuperblock
// calls this (to lay down the two empty sentinels at file creation time):
// past that point the free-page and class-header lists own their own
// sentinel and count bytes (see List.writeHeader/setCount) and must not be
// clobbered by a stale in-memory copy, so the Allocator persists only
// PagesCount via writePagesCount instead of calling this again.
func WriteSuperblock(f *storage.File, sb Superblock) error {
	buf := make([]byte, superblockEnd-magicOffset-8)
	sb.FreeListSentinel.Encode(buf[freeListSentinelOffset-8:])
	binary.LittleEndian.PutUint64(buf[freePagesCountOffset-8:], sb.FreePagesCount)
	binary.LittleEndian.PutUint64(buf[pagesCountOffset-8:], sb.PagesCount)
	sb.ClassListSentinel.Encode(buf[classListSentinelOffset-8:])
	binary.LittleEndian.PutUint64(buf[classListCountOffset-8:], sb.ClassListCount)
	if err := f.WriteAt(freeListSentinelOffset, buf); err != nil {
		return dberr.WrapIO(err, "write superblock")
	}
	return nil
}

// writePagesCount persists only the page-count field of the superblock.
// The free-list and class-list sentinels and their counts are owned and
// written directly by List (PushBack/PopFront/Unlink/etc.); rewriting the
// whole superblock from an Allocator's in-memory snapshot would clobber
// whatever a List operation just linked in.
func writePagesCount(f *storage.File, n uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	if err := f.WriteAt(pagesCountOffset, buf[:]); err != nil {
		return dberr.WrapIO(err, "write superblock page count")
	}
	return nil
}

func emptySentinel(index uint64) Header {
	h := NewHeader(index)
	h.Kind = KindSentinel
	return h
}
