package types

import "strings"

// Class is a runtime type descriptor: one of PrimitiveClass, StringClass,
// StructClass, or RelationClass. Two classes are equal iff their
// serializations are equal.
type Class interface {
	// Serialize renders the canonical grammar form of this class.
	Serialize() string
	// Size returns sizeof the class's encoded form, or ok==false if the
	// class's encoded size varies (a String, or a Struct/Relation that
	// transitively contains one).
	Size() (size int, ok bool)
	// Name returns the class's declared name.
	Name() string
	// Count returns the number of scalar slots this class holds, used to
	// validate constructor arity.
	Count() int
}

// PrimitiveClass describes a fixed-width arithmetic field.
type PrimitiveClass struct {
	kind Kind
	name string
}

// NewPrimitiveClass builds a PrimitiveClass, validating name.
func NewPrimitiveClass(kind Kind, name string) (*PrimitiveClass, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &PrimitiveClass{kind: kind, name: name}, nil
}

func (c *PrimitiveClass) Kind() Kind   { return c.kind }
func (c *PrimitiveClass) Name() string { return c.name }
func (c *PrimitiveClass) Count() int   { return 1 }
func (c *PrimitiveClass) Size() (int, bool) {
	return c.kind.Size(), true
}
func (c *PrimitiveClass) Serialize() string {
	return "_" + c.kind.tag() + "@" + c.name + "_"
}

// StringClass describes a variable-length byte field.
type StringClass struct {
	name string
}

// NewStringClass builds a StringClass, validating name.
func NewStringClass(name string) (*StringClass, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &StringClass{name: name}, nil
}

func (c *StringClass) Name() string       { return c.name }
func (c *StringClass) Count() int         { return 1 }
func (c *StringClass) Size() (int, bool)  { return 0, false }
func (c *StringClass) Serialize() string  { return "_string@" + c.name + "_" }

// StructClass describes an ordered tuple of named fields.
type StructClass struct {
	name   string
	fields []Class
}

// NewStructClass builds a StructClass with the given ordered field classes;
// more fields can be appended with AddField before the class is registered.
func NewStructClass(name string, fields ...Class) (*StructClass, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &StructClass{name: name, fields: append([]Class(nil), fields...)}, nil
}

// AddField appends a field class to the struct, in declaration order.
func (c *StructClass) AddField(field Class) { c.fields = append(c.fields, field) }

// Fields returns the struct's ordered field classes.
func (c *StructClass) Fields() []Class { return c.fields }

func (c *StructClass) Name() string { return c.name }

func (c *StructClass) Count() int {
	count := 0
	for _, f := range c.fields {
		count += f.Count()
	}
	return count
}

func (c *StructClass) Size() (int, bool) {
	total := 0
	for _, f := range c.fields {
		size, ok := f.Size()
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

func (c *StructClass) Serialize() string {
	var b strings.Builder
	b.WriteString("_struct@")
	b.WriteString(c.name)
	b.WriteString("_<")
	for _, f := range c.fields {
		b.WriteString(f.Serialize())
	}
	b.WriteString(">_")
	return b.String()
}

// idSize is sizeof(ObjectId): two of these make up a Relation's ingress
// and egress references.
const idSize = 8

// RelationClass describes a typed directed edge between two classes, with
// an optional attributes class carried alongside the edge.
type RelationClass struct {
	name       string
	ingress    Class
	egress     Class
	attributes Class // nil when the relation carries no attributes
}

// NewRelationClass builds a RelationClass; attributes may be nil.
func NewRelationClass(name string, ingress, egress, attributes Class) (*RelationClass, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &RelationClass{name: name, ingress: ingress, egress: egress, attributes: attributes}, nil
}

func (c *RelationClass) Name() string             { return c.name }
func (c *RelationClass) IngressClass() Class       { return c.ingress }
func (c *RelationClass) EgressClass() Class        { return c.egress }
func (c *RelationClass) AttributesClass() Class    { return c.attributes }
func (c *RelationClass) HasAttributes() bool       { return c.attributes != nil }

func (c *RelationClass) Count() int {
	if c.attributes != nil {
		return c.attributes.Count() + 2
	}
	return 2
}

func (c *RelationClass) Size() (int, bool) {
	if c.attributes == nil {
		return 2 * idSize, true
	}
	size, ok := c.attributes.Size()
	if !ok {
		return 0, false
	}
	return size + 2*idSize, true
}

func (c *RelationClass) Serialize() string {
	var b strings.Builder
	b.WriteString("_relation@")
	b.WriteString(c.name)
	b.WriteString("_")
	b.WriteString(c.ingress.Serialize())
	b.WriteString(c.egress.Serialize())
	if c.attributes != nil {
		b.WriteString("1")
		b.WriteString(c.attributes.Serialize())
	} else {
		b.WriteString("_")
	}
	return b.String()
}
