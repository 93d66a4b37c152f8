// Package provider supplies the scriptable API surface to the generator.
//
// A Provider answers queries about the image library: its method groups,
// properties, constructors, type families and enumerations. Two
// implementations are available: CatalogProvider reads descriptor tables
// from YAML, and SourceProvider analyzes a Go package.
package provider

import (
	"strings"

	"github.com/broady/magickxsd/xsdgen/ir"
)

// DefaultImageType is the type whose members form the script actions.
const DefaultImageType = "MagickImage"

// Provider answers queries about the scriptable API surface.
// Implementations are side-effect free and return results in a
// deterministic order.
type Provider interface {
	// ImageType returns the name of the image type.
	ImageType() string

	// ListMethodGroups returns the method overloads of a type, grouped by
	// script name in first-seen order.
	ListMethodGroups(typeName string) []ir.MethodGroup

	// ListProperties returns the settable properties of a type.
	ListProperties(typeName string) []ir.Property

	// ListConstructorGroups returns the constructor overloads of a type.
	// The result has at most one group.
	ListConstructorGroups(typeName string) []ir.MethodGroup

	// ListFamily returns the member type names of a family.
	ListFamily(family string) []string

	// ListEnumTypes returns every enumeration.
	ListEnumTypes() []ir.Enum
}

// FamilyMembers returns the constructor groups of every member of a family,
// in family order. Members without constructors are omitted.
func FamilyMembers(p Provider, family string) []ir.MethodGroup {
	var groups []ir.MethodGroup
	for _, typeName := range p.ListFamily(family) {
		groups = append(groups, p.ListConstructorGroups(typeName)...)
	}
	return groups
}

// scriptName strips a family prefix from a member type name.
// The full name is kept when stripping would leave nothing.
func scriptName(typeName, prefix string) string {
	if prefix == "" || typeName == prefix {
		return typeName
	}
	if name, ok := strings.CutPrefix(typeName, prefix); ok {
		return name
	}
	return typeName
}
