package grammar

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/magickxsd/xsdgen/ir"
)

// Base types of generated restrictions.
const (
	baseString      = "xs:string"
	baseEnumeration = "xs:NMTOKEN"
	valueAttribute  = "value"
)

// Builder assembles grammar nodes from API descriptors.
type Builder struct {
	mapper *Mapper
}

// NewBuilder returns a Builder using m for type mapping.
func NewBuilder(m *Mapper) *Builder {
	return &Builder{mapper: m}
}

// Element builds the element for a method or constructor group.
//
// A group without parameters yields an empty element. A directly typed group
// yields an element that references the parameter's type by name. Every other
// group yields an element wrapping a complex type with its arguments.
func (b *Builder) Element(g ir.MethodGroup) (*Node, error) {
	el := Element(Tag(g.Name), "")
	if len(g.Params()) == 0 {
		return el, nil
	}

	if p, ok := g.DirectlyTyped(); ok {
		el.Type = Tag(p.Name)
		return el, nil
	}

	args, err := b.Arguments(g)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s.%s", g.Kind, g.Owner, g.Name)
	}
	el.Children = []*Node{ComplexType(args...)}
	return el, nil
}

// Arguments builds the content of a complex type for the group's parameters:
// a sequence of child elements (omitted when empty) followed by attributes.
// Parameters missing from some overload are optional. Parameters that map to
// neither an element nor an attribute are left out.
func (b *Builder) Arguments(g ir.MethodGroup) ([]*Node, error) {
	params := g.AllParams()
	required := g.RequiredParams()

	var nodes []*Node

	seq := Sequence()
	for _, p := range params {
		typ := b.mapper.ElementType(p.Type)
		if typ == "" {
			continue
		}
		el := Element(p.Name, typ)
		el.Optional = !required[p.Name]
		seq.Children = append(seq.Children, el)
	}
	if len(seq.Children) > 0 {
		nodes = append(nodes, seq)
	}

	for _, p := range params {
		typ, err := b.mapper.AttributeType(p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", p.Name)
		}
		if typ == "" {
			continue
		}
		nodes = append(nodes, Attribute(p.Name, typ, required[p.Name]))
	}

	return nodes, nil
}

// Property builds the element that sets a property. ok is false when the
// property's type is excluded from scripting.
func (b *Builder) Property(p ir.Property) (el *Node, ok bool, err error) {
	attr, err := b.mapper.AttributeType(p.Type)
	if err != nil {
		return nil, false, errors.Wrapf(err, "property %s.%s", p.Owner, p.Name)
	}
	if attr != "" {
		return Element(Tag(p.Name), "", ComplexType(Attribute(valueAttribute, attr, true))), true, nil
	}

	elem := b.mapper.ElementType(p.Type)
	if elem == "" {
		return nil, false, nil
	}
	return Element(Tag(p.Name), "", ComplexType(Sequence(Element(elem, elem)))), true, nil
}

// Enum builds the simple type that lists the literals of an enumeration.
func (b *Builder) Enum(e ir.Enum) *Node {
	restriction := Restriction(baseEnumeration)
	for _, literal := range e.Literals() {
		restriction.Children = append(restriction.Children, Enumeration(literal))
	}
	return SimpleType(e.Name, restriction)
}
