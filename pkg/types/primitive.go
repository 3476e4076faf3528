package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// Numeric is the set of Go types a Primitive may box; it mirrors the
// arithmetic Kinds enumerated in kind.go.
type Numeric interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Primitive boxes a fixed-width scalar value of Go type T alongside the
// PrimitiveClass describing its on-disk tag and name.
type Primitive[T Numeric] struct {
	class *PrimitiveClass
	value T
}

// NewPrimitive builds a Primitive with an explicit value.
func NewPrimitive[T Numeric](class *PrimitiveClass, value T) *Primitive[T] {
	return &Primitive[T]{class: class, value: value}
}

// Value returns the boxed scalar.
func (p *Primitive[T]) Value() T { return p.value }

// SetValue replaces the boxed scalar.
func (p *Primitive[T]) SetValue(v T) { p.value = v }

func (p *Primitive[T]) Class() Class { return p.class }
func (p *Primitive[T]) Size() int    { return p.class.kind.Size() }

func (p *Primitive[T]) Write(f *storage.File, offset int64) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, p.value); err != nil {
		return dberr.WrapIO(err, "encode primitive value")
	}
	if err := f.WriteAt(offset, buf.Bytes()); err != nil {
		return err
	}
	return nil
}

func (p *Primitive[T]) Read(f *storage.File, offset int64) error {
	buf := make([]byte, binary.Size(p.value))
	if err := f.ReadAt(offset, buf); err != nil {
		return err
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &p.value); err != nil {
		return dberr.WrapIO(err, "decode primitive value")
	}
	return nil
}

func (p *Primitive[T]) String() string {
	if b, ok := any(p.value).(bool); ok {
		if b {
			return p.class.Name() + ": true"
		}
		return p.class.Name() + ": false"
	}
	return fmt.Sprintf("%s: %v", p.class.Name(), p.value)
}
