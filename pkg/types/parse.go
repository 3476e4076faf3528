package types

import "graphstore/pkg/dberr"

// Parse decodes a class's canonical serialization back into a Class tree.
func Parse(serialized string) (Class, error) {
	p := &parser{data: serialized}
	c, err := p.parseClass()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, dberr.Typef("empty class serialization")
	}
	return c, nil
}

type parser struct {
	data string
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) next() (byte, error) {
	if p.eof() {
		return 0, dberr.Typef("unexpected end of class serialization")
	}
	c := p.data[p.pos]
	p.pos++
	return c, nil
}

func (p *parser) expect(want byte) error {
	c, err := p.next()
	if err != nil {
		return err
	}
	if c != want {
		return dberr.Typef("expected %q, got %q at offset %d", want, c, p.pos-1)
	}
	return nil
}

// readUntil consumes bytes up to (and including) the next occurrence of
// delim, returning the bytes before it.
func (p *parser) readUntil(delim byte) (string, error) {
	start := p.pos
	for {
		c, err := p.next()
		if err != nil {
			return "", err
		}
		if c == delim {
			return p.data[start : p.pos-1], nil
		}
	}
}

// parseClass parses one class node. It returns (nil, nil) when it instead
// encounters the '>' sentinel closing a struct's field list.
func (p *parser) parseClass() (Class, error) {
	del, err := p.next()
	if err != nil {
		return nil, err
	}
	if del == '>' {
		return nil, nil
	}
	if del != '_' {
		return nil, dberr.Typef("malformed class serialization at offset %d", p.pos-1)
	}

	tag, err := p.readUntil('@')
	if err != nil {
		return nil, err
	}

	switch tag {
	case "struct":
		name, err := p.readUntil('_')
		if err != nil {
			return nil, err
		}
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		sc, err := NewStructClass(name)
		if err != nil {
			return nil, err
		}
		for {
			field, err := p.parseClass()
			if err != nil {
				return nil, err
			}
			if field == nil {
				break
			}
			sc.AddField(field)
		}
		if err := p.expect('_'); err != nil {
			return nil, err
		}
		return sc, nil

	case "relation":
		name, err := p.readUntil('_')
		if err != nil {
			return nil, err
		}
		ingress, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		egress, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		del, err := p.next()
		if err != nil {
			return nil, err
		}
		var attrs Class
		switch del {
		case '1':
			attrs, err = p.parseClass()
			if err != nil {
				return nil, err
			}
		case '_':
			// no attributes
		default:
			return nil, dberr.Typef("malformed relation attributes marker %q", del)
		}
		return NewRelationClass(name, ingress, egress, attrs)

	case "string":
		name, err := p.readUntil('_')
		if err != nil {
			return nil, err
		}
		return NewStringClass(name)

	default:
		kind, ok := kindFromTag(tag)
		if !ok {
			return nil, dberr.Typef("unknown class tag %q", tag)
		}
		name, err := p.readUntil('_')
		if err != nil {
			return nil, err
		}
		return NewPrimitiveClass(kind, name)
	}
}
