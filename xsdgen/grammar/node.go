// Package grammar builds XML Schema grammar nodes for the MagickScript
// language from API surface descriptors.
//
// Nodes are plain values. The builder assembles complete subtrees before
// anything touches the template document, so a failed build leaves the
// document unchanged.
package grammar

// Kind identifies the XML Schema construct a Node represents.
type Kind int

const (
	KindElement Kind = iota
	KindAttribute
	KindComplexType
	KindSimpleType
	KindSequence
	KindRestriction
	KindEnumeration
	KindPattern
)

// Tag returns the local XML Schema tag for the kind.
func (k Kind) Tag() string {
	switch k {
	case KindElement:
		return "element"
	case KindAttribute:
		return "attribute"
	case KindComplexType:
		return "complexType"
	case KindSimpleType:
		return "simpleType"
	case KindSequence:
		return "sequence"
	case KindRestriction:
		return "restriction"
	case KindEnumeration:
		return "enumeration"
	case KindPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// String returns the tag name.
func (k Kind) String() string { return k.Tag() }

// Node is one grammar construct. Children are in document order.
type Node struct {
	Kind Kind

	// Name is the name attribute (elements, attributes, simple types).
	Name string

	// Type is the type reference (elements, attributes).
	Type string

	// Base is the base type of a restriction.
	Base string

	// Value is the literal of an enumeration or pattern facet.
	Value string

	// Required marks an attribute use="required".
	Required bool

	// Optional marks an element minOccurs="0".
	Optional bool

	Children []*Node
}

// Attr is a serialized attribute of a node.
type Attr struct {
	Key   string
	Value string
}

// Attrs returns the node's XML attributes in serialization order.
// The order is part of the output format and must stay stable.
func (n *Node) Attrs() []Attr {
	var attrs []Attr
	switch n.Kind {
	case KindElement:
		attrs = append(attrs, Attr{"name", n.Name})
		if n.Optional {
			attrs = append(attrs, Attr{"minOccurs", "0"})
		}
		if n.Type != "" {
			attrs = append(attrs, Attr{"type", n.Type})
		}
	case KindAttribute:
		attrs = append(attrs, Attr{"name", n.Name})
		if n.Required {
			attrs = append(attrs, Attr{"use", "required"})
		}
		if n.Type != "" {
			attrs = append(attrs, Attr{"type", n.Type})
		}
	case KindSimpleType:
		if n.Name != "" {
			attrs = append(attrs, Attr{"name", n.Name})
		}
	case KindRestriction:
		attrs = append(attrs, Attr{"base", n.Base})
	case KindEnumeration, KindPattern:
		attrs = append(attrs, Attr{"value", n.Value})
	}
	return attrs
}

// find returns the first descendant (depth-first, including n) matching kind and name.
func (n *Node) find(kind Kind, name string) *Node {
	if n.Kind == kind && n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.find(kind, name); found != nil {
			return found
		}
	}
	return nil
}

// Element returns an element node.
func Element(name, typ string, children ...*Node) *Node {
	return &Node{Kind: KindElement, Name: name, Type: typ, Children: children}
}

// Attribute returns an attribute node.
func Attribute(name, typ string, required bool) *Node {
	return &Node{Kind: KindAttribute, Name: name, Type: typ, Required: required}
}

// ComplexType returns an anonymous complex type.
func ComplexType(children ...*Node) *Node {
	return &Node{Kind: KindComplexType, Children: children}
}

// Sequence returns a sequence of elements.
func Sequence(children ...*Node) *Node {
	return &Node{Kind: KindSequence, Children: children}
}

// SimpleType returns a named simple type.
func SimpleType(name string, restriction *Node) *Node {
	return &Node{Kind: KindSimpleType, Name: name, Children: []*Node{restriction}}
}

// Restriction returns a restriction of base with the given facets.
func Restriction(base string, facets ...*Node) *Node {
	return &Node{Kind: KindRestriction, Base: base, Children: facets}
}

// Enumeration returns an enumeration facet.
func Enumeration(value string) *Node {
	return &Node{Kind: KindEnumeration, Value: value}
}

// Pattern returns a pattern facet.
func Pattern(value string) *Node {
	return &Node{Kind: KindPattern, Value: value}
}
