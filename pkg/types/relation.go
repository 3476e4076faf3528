package types

import (
	"strconv"
	"strings"

	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// Id is a 64-bit, per-class object identifier.
type Id = uint64

// Relation is a typed directed edge: a pair of node ids plus an optional
// attributes value object.
type Relation struct {
	class      *RelationClass
	ingressID  Id
	egressID   Id
	attributes Object // nil when the class carries no attributes
}

// NewRelation builds a Relation, requiring attributes be present iff
// class.HasAttributes().
func NewRelation(class *RelationClass, ingressID, egressID Id, attributes Object) (*Relation, error) {
	if class.HasAttributes() && attributes == nil {
		return nil, dberr.Typef("relation %s declares attributes but none were provided", class.Name())
	}
	if !class.HasAttributes() && attributes != nil {
		return nil, dberr.Typef("relation %s declares no attributes but one was provided", class.Name())
	}
	return &Relation{class: class, ingressID: ingressID, egressID: egressID, attributes: attributes}, nil
}

func (r *Relation) IngressId() Id        { return r.ingressID }
func (r *Relation) EgressId() Id         { return r.egressID }
func (r *Relation) Attributes() Object   { return r.attributes }
func (r *Relation) Class() Class         { return r.class }

func (r *Relation) Size() int {
	size := 2 * idSize
	if r.attributes != nil {
		size += r.attributes.Size()
	}
	return size
}

func (r *Relation) Write(f *storage.File, offset int64) error {
	if err := f.WriteUint64(offset, r.ingressID); err != nil {
		return err
	}
	offset += idSize
	if err := f.WriteUint64(offset, r.egressID); err != nil {
		return err
	}
	offset += idSize
	if r.attributes != nil {
		return r.attributes.Write(f, offset)
	}
	return nil
}

func (r *Relation) Read(f *storage.File, offset int64) error {
	ingress, err := f.ReadUint64(offset)
	if err != nil {
		return err
	}
	offset += idSize
	egress, err := f.ReadUint64(offset)
	if err != nil {
		return err
	}
	offset += idSize
	r.ingressID = ingress
	r.egressID = egress
	if r.attributes != nil {
		return r.attributes.Read(f, offset)
	}
	return nil
}

func (r *Relation) String() string {
	var b strings.Builder
	b.WriteString("relation: ")
	b.WriteString(r.class.Name())
	b.WriteString(" ( ingress: ( id: ")
	b.WriteString(strconv.FormatUint(r.ingressID, 10))
	b.WriteString(", class: ")
	b.WriteString(r.class.IngressClass().Name())
	b.WriteString(" ), egress: ( id: ")
	b.WriteString(strconv.FormatUint(r.egressID, 10))
	b.WriteString(", class: ")
	b.WriteString(r.class.EgressClass().Name())
	b.WriteString(" )")
	if r.attributes != nil {
		b.WriteString(", attributes: ")
		b.WriteString(r.attributes.String())
	}
	b.WriteString(" )")
	return b.String()
}
