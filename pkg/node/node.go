// Package node implements the node frame format shared by both node
// storage flavors: a leading magic word classifying each slot as valid,
// free, or invalid, followed by either an object id and payload or an
// 8-byte aux word whose meaning each storage flavor owns (see WriteFree).
package node

import (
	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
	"graphstore/pkg/types"
)

// State classifies a frame once its magic word has been read.
type State uint8

const (
	// StateInvalid marks bytes that are neither this class's magic nor its
	// complement: past the page's initialized region, or corrupted.
	StateInvalid State = iota
	StateValid
	StateFree
)

// NoFree marks the tail of a class's freed-slot chain.
const NoFree = ^uint64(0)

// frameHeaderSize is the width of the leading magic word common to every
// frame shape.
const frameHeaderSize = 8

// idSize is sizeof(object id).
const idSize = 8

// ValidSize returns the on-disk footprint of a valid frame carrying a
// payload of dataSize bytes.
func ValidSize(dataSize int) int { return frameHeaderSize + idSize + dataSize }

// FreeSize is the on-disk footprint of a free frame.
const FreeSize = frameHeaderSize + idSize

// Peek classifies the frame at offset without decoding its payload.
func Peek(f *storage.File, offset int64, magic uint64) (State, error) {
	raw, err := f.ReadUint64(offset)
	if err != nil {
		return StateInvalid, err
	}
	switch raw {
	case magic:
		return StateValid, nil
	case ^magic:
		return StateFree, nil
	default:
		return StateInvalid, nil
	}
}

// WriteValid encodes a live object at offset.
func WriteValid(f *storage.File, offset int64, magic, id uint64, data types.Object) error {
	if err := f.WriteUint64(offset, magic); err != nil {
		return err
	}
	if err := f.WriteUint64(offset+frameHeaderSize, id); err != nil {
		return err
	}
	return data.Write(f, offset+frameHeaderSize+idSize)
}

// ReadValid decodes the id and payload of a frame already known (via Peek)
// to be StateValid.
func ReadValid(f *storage.File, offset int64, class types.Class) (id uint64, data types.Object, err error) {
	id, err = f.ReadUint64(offset + frameHeaderSize)
	if err != nil {
		return 0, nil, err
	}
	data, err = types.NewZeroObject(class)
	if err != nil {
		return 0, nil, err
	}
	if err := data.Read(f, offset+frameHeaderSize+idSize); err != nil {
		return 0, nil, err
	}
	return id, data, nil
}

// WriteFree marks the frame at offset free. aux's meaning is owned by the
// caller: ConstSizeStorage threads it as the next offset in the class's
// single freed-slot chain; VarSizeStorage stores the frame's original total
// byte length, so a later scan can still skip over it.
func WriteFree(f *storage.File, offset int64, magic uint64, aux uint64) error {
	if err := f.WriteUint64(offset, ^magic); err != nil {
		return err
	}
	return f.WriteUint64(offset+frameHeaderSize, aux)
}

// ReadFree decodes a frame already known to be StateFree, returning its aux
// word (see WriteFree).
func ReadFree(f *storage.File, offset int64) (aux uint64, err error) {
	return f.ReadUint64(offset + frameHeaderSize)
}

// ErrNoSuchNode describes a lookup of an id that no live node carries.
// Neither storage's Get returns it: both report a missing node as
// found == false.
var ErrNoSuchNode = dberr.Runtimef("no node with that id")
