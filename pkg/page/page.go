// Package page implements the paged file layout: fixed-size page headers,
// the circular page lists threaded through them, the superblock, and the
// page allocator that grows and shrinks the backing file.
package page

import (
	"encoding/binary"

	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// Size is the fixed size of every page, header included.
const Size = 4096

// SentinelIndex is the reserved index naming a list's anchor record rather
// than a real page.
const SentinelIndex uint64 = ^uint64(0)

// Kind distinguishes what a page currently holds.
type Kind uint8

const (
	KindFree Kind = iota
	KindClassHeader
	KindData
	KindSentinel
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "Free"
	case KindClassHeader:
		return "ClassHeader"
	case KindData:
		return "Data"
	case KindSentinel:
		return "Sentinel"
	default:
		return "Unknown"
	}
}

// Header is the fixed-layout record at the front of every page (and of the
// sentinel records anchoring page lists). Field offsets are explicit in
// Encode/Decode rather than relied on from Go struct layout, since this is
// an on-disk wire format.
type Header struct {
	Kind       Kind
	Index      uint64
	InitOffset uint32 // first byte beyond ever-written content
	FreeOffset uint32 // head of the in-page free list, or == InitOffset
	ActualSize uint64 // live payload bytes
	Prev       uint64 // previous page/sentinel index in this page's list
	Next       uint64 // next page/sentinel index in this page's list
}

// HeaderSize is the encoded byte width of Header.
const HeaderSize = 1 + 8 + 4 + 4 + 8 + 8 + 8 // 41

// NewHeader builds a freshly-initialized standalone header for index: a
// singleton list member whose prev/next both name itself.
func NewHeader(index uint64) Header {
	return Header{
		Kind:       KindFree,
		Index:      index,
		InitOffset: HeaderSize,
		FreeOffset: HeaderSize,
		Prev:       index,
		Next:       index,
	}
}

// Encode writes h into buf, which must be at least HeaderSize bytes.
func (h Header) Encode(buf []byte) {
	buf[0] = byte(h.Kind)
	binary.LittleEndian.PutUint64(buf[1:9], h.Index)
	binary.LittleEndian.PutUint32(buf[9:13], h.InitOffset)
	binary.LittleEndian.PutUint32(buf[13:17], h.FreeOffset)
	binary.LittleEndian.PutUint64(buf[17:25], h.ActualSize)
	binary.LittleEndian.PutUint64(buf[25:33], h.Prev)
	binary.LittleEndian.PutUint64(buf[33:41], h.Next)
}

// DecodeHeader reads a Header from buf, which must be at least HeaderSize
// bytes.
func DecodeHeader(buf []byte) Header {
	return Header{
		Kind:       Kind(buf[0]),
		Index:      binary.LittleEndian.Uint64(buf[1:9]),
		InitOffset: binary.LittleEndian.Uint32(buf[9:13]),
		FreeOffset: binary.LittleEndian.Uint32(buf[13:17]),
		ActualSize: binary.LittleEndian.Uint64(buf[17:25]),
		Prev:       binary.LittleEndian.Uint64(buf[25:33]),
		Next:       binary.LittleEndian.Uint64(buf[33:41]),
	}
}

// Address returns the absolute file offset of page index's first byte.
func Address(index uint64) int64 {
	return kPagetableOffset + int64(index)*Size
}

// IndexOf returns the page index owning the absolute file offset.
func IndexOf(offset int64) uint64 {
	return uint64((offset - kPagetableOffset) / Size)
}

// ReadHeader reads the header of the page at index.
func ReadHeader(f *storage.File, index uint64) (Header, error) {
	buf := make([]byte, HeaderSize)
	if err := f.ReadAt(Address(index), buf); err != nil {
		return Header{}, dberr.WrapIO(err, "read page header")
	}
	return DecodeHeader(buf), nil
}

// WriteHeader persists h at its own page index.
func WriteHeader(f *storage.File, h Header) error {
	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	if err := f.WriteAt(Address(h.Index), buf); err != nil {
		return dberr.WrapIO(err, "write page header")
	}
	return nil
}
