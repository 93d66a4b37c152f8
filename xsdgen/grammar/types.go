package grammar

import (
	"maps"

	"github.com/broady/magickxsd/xsdgen/ir"
)

// Grammar primitives generated or declared by the base template.
const (
	TypeQuantum = "quantum"
	TypeColor   = "color"
)

// defaultAttributeTypes maps host types that are scriptable as attributes.
var defaultAttributeTypes = map[string]string{
	"Encoding":    "xs:string",
	"string":      "xs:string",
	"Percentage":  "xs:double",
	"bool":        "xs:boolean",
	"int":         "xs:int",
	"double":      "xs:double",
	"Quantum":     TypeQuantum,
	"MagickColor": TypeColor,
}

// defaultElementTypes maps host types that are scriptable only as child elements.
var defaultElementTypes = map[string]string{
	"Coordinate":             "coordinate",
	"Drawable":               "drawable",
	"[]Coordinate":           "coordinates",
	"[]Drawable":             "drawables",
	"[]PathBase":             "paths",
	"[]PathArc":              "pathArcs",
	"[]PathCurveto":          "pathCurvetos",
	"[]PathQuadraticCurveto": "pathQuadraticCurvetos",
	"ImageProfile":           "profile",
	"MagickGeometry":         "geometry",
	"MagickImage":            "read",
	"PathArc":                "pathArc",
	"PathCurveto":            "pathCurveto",
	"PathQuadraticCurveto":   "pathQuadraticCurveto",
}

// Mapper maps host value types to grammar primitives.
// For a representable type exactly one of AttributeType and ElementType is non-empty.
type Mapper struct {
	attributes map[string]string
	elements   map[string]string
	excluded   map[string]bool
}

// NewMapper returns a Mapper over the default tables.
// overrides adds or replaces attribute mappings, keyed by canonical host type
// name (see ir.TypeRef.String). excluded lists host types that are
// intentionally not scriptable; they map to nothing without an error.
func NewMapper(overrides map[string]string, excluded []string) *Mapper {
	m := &Mapper{
		attributes: maps.Clone(defaultAttributeTypes),
		elements:   maps.Clone(defaultElementTypes),
		excluded:   make(map[string]bool, len(excluded)),
	}
	for host, prim := range overrides {
		m.attributes[host] = prim
		delete(m.elements, host)
	}
	for _, host := range excluded {
		m.excluded[host] = true
	}
	return m
}

// AttributeType returns the attribute primitive for t. Enumerations map to
// their own name. It returns "" for element-only and excluded types, and an
// ErrUnmappedType error for a type with no mapping at all.
func (m *Mapper) AttributeType(t ir.TypeRef) (string, error) {
	if t.Enum {
		return t.Name, nil
	}

	key := t.String()
	if prim, ok := m.attributes[key]; ok {
		return prim, nil
	}
	if _, ok := m.elements[key]; ok {
		return "", nil
	}
	if m.excluded[key] {
		return "", nil
	}
	return "", unmappedType(t)
}

// ElementType returns the element primitive for t, or "" if t is not
// representable as a child element.
func (m *Mapper) ElementType(t ir.TypeRef) string {
	if t.Enum {
		return ""
	}
	return m.elements[t.String()]
}
