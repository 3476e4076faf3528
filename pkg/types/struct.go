package types

import (
	"strings"

	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// Struct is an ordered tuple of field value objects, mirroring a
// StructClass's ordered field classes.
type Struct struct {
	class  *StructClass
	fields []Object
}

// NewStruct builds a Struct from its ordered field values. The caller is
// responsible for matching fields to class's declared field classes.
func NewStruct(class *StructClass, fields ...Object) *Struct {
	return &Struct{class: class, fields: append([]Object(nil), fields...)}
}

// Fields returns the struct's ordered field values.
func (s *Struct) Fields() []Object { return s.fields }

// Field returns the first field whose class name matches name.
func (s *Struct) Field(name string) (Object, error) {
	for _, f := range s.fields {
		if f.Class().Name() == name {
			return f, nil
		}
	}
	return nil, dberr.Runtimef("struct %s has no field named %q", s.class.Name(), name)
}

func (s *Struct) Class() Class { return s.class }

func (s *Struct) Size() int {
	total := 0
	for _, f := range s.fields {
		total += f.Size()
	}
	return total
}

func (s *Struct) Write(f *storage.File, offset int64) error {
	cur := offset
	for _, field := range s.fields {
		if err := field.Write(f, cur); err != nil {
			return err
		}
		cur += int64(field.Size())
	}
	return nil
}

func (s *Struct) Read(f *storage.File, offset int64) error {
	cur := offset
	for _, field := range s.fields {
		if err := field.Read(f, cur); err != nil {
			return err
		}
		cur += int64(field.Size())
	}
	return nil
}

func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString(s.class.Name())
	b.WriteString(": { ")
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	b.WriteString(" }")
	return b.String()
}
