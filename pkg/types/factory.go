package types

import "graphstore/pkg/dberr"

// NewZeroObject builds a zero-valued Object matching class's shape, ready to
// have Read called on it. Recognizes the four built-in Class
// implementations; a caller-defined Class type has no zero-value counterpart
// and returns an error.
func NewZeroObject(class Class) (Object, error) {
	switch c := class.(type) {
	case *PrimitiveClass:
		return newZeroPrimitive(c)
	case *StringClass:
		return NewString(c, ""), nil
	case *StructClass:
		fields := make([]Object, 0, len(c.fields))
		for _, fieldClass := range c.fields {
			field, err := NewZeroObject(fieldClass)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		return NewStruct(c, fields...), nil
	case *RelationClass:
		var attrs Object
		if c.HasAttributes() {
			a, err := NewZeroObject(c.attributes)
			if err != nil {
				return nil, err
			}
			attrs = a
		}
		return NewRelation(c, 0, 0, attrs)
	default:
		return nil, dberr.Typef("class %T has no zero-value object", class)
	}
}

func newZeroPrimitive(c *PrimitiveClass) (Object, error) {
	switch c.kind {
	case KindBool:
		return NewPrimitive[bool](c, false), nil
	case KindInt8:
		return NewPrimitive[int8](c, 0), nil
	case KindUint8:
		return NewPrimitive[uint8](c, 0), nil
	case KindInt16:
		return NewPrimitive[int16](c, 0), nil
	case KindUint16:
		return NewPrimitive[uint16](c, 0), nil
	case KindInt32:
		return NewPrimitive[int32](c, 0), nil
	case KindUint32:
		return NewPrimitive[uint32](c, 0), nil
	case KindInt64:
		return NewPrimitive[int64](c, 0), nil
	case KindUint64:
		return NewPrimitive[uint64](c, 0), nil
	case KindFloat32:
		return NewPrimitive[float32](c, 0), nil
	case KindFloat64:
		return NewPrimitive[float64](c, 0), nil
	case KindChar:
		return NewPrimitive[uint8](c, 0), nil
	default:
		return nil, dberr.Typef("unrecognized primitive kind %d", c.kind)
	}
}
