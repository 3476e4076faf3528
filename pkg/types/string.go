package types

import "graphstore/pkg/storage"

// String is a variable-length byte value object.
type String struct {
	class *StringClass
	value string
}

// NewString builds a String with an explicit value.
func NewString(class *StringClass, value string) *String {
	return &String{class: class, value: value}
}

// Value returns the current string content.
func (s *String) Value() string { return s.value }

// SetValue replaces the string content.
func (s *String) SetValue(v string) { s.value = v }

func (s *String) Class() Class { return s.class }
func (s *String) Size() int    { return 4 + len(s.value) }

func (s *String) Write(f *storage.File, offset int64) error {
	if err := f.WriteUint32(offset, uint32(len(s.value))); err != nil {
		return err
	}
	return f.WriteString(offset+4, s.value)
}

func (s *String) Read(f *storage.File, offset int64) error {
	length, err := f.ReadUint32(offset)
	if err != nil {
		return err
	}
	str, err := f.ReadString(offset+4, int(length))
	if err != nil {
		return err
	}
	s.value = str
	return nil
}

func (s *String) String() string {
	return s.class.Name() + ": \"" + s.value + "\""
}
