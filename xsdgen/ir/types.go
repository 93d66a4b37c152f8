// Package ir defines the descriptors for the scriptable API surface.
// These types are independent of how the surface was discovered: providers
// build them from descriptor tables or from Go source, and the grammar
// builder consumes them without knowing which.
package ir

// MemberKind identifies the category of an API member.
type MemberKind int

const (
	KindMethod MemberKind = iota
	KindProperty
	KindConstructor
	KindEnum
)

// String returns the string representation of the member kind.
func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "Method"
	case KindProperty:
		return "Property"
	case KindConstructor:
		return "Constructor"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// TypeRef names a host value type.
type TypeRef struct {
	// Name is the host type name for scalar and named types,
	// e.g. "int", "double", "MagickColor". Empty for collections.
	Name string

	// Enum is true when the named type is an enumeration.
	Enum bool

	// Elem is the element type of a homogeneous collection.
	// Non-nil marks the reference as a collection.
	Elem *TypeRef
}

// Named returns a TypeRef for a scalar or named type.
func Named(name string) TypeRef {
	return TypeRef{Name: name}
}

// EnumRef returns a TypeRef for an enumeration type.
func EnumRef(name string) TypeRef {
	return TypeRef{Name: name, Enum: true}
}

// Collection returns a TypeRef for a homogeneous collection of elem.
func Collection(elem TypeRef) TypeRef {
	return TypeRef{Elem: &elem}
}

// IsCollection reports whether the reference is a homogeneous collection.
func (t TypeRef) IsCollection() bool {
	return t.Elem != nil
}

// IsZero returns true if the reference names nothing.
func (t TypeRef) IsZero() bool {
	return t.Name == "" && t.Elem == nil
}

// String returns the canonical host type name. Collections render as "[]Elem".
func (t TypeRef) String() string {
	if t.Elem != nil {
		return "[]" + t.Elem.String()
	}
	return t.Name
}

// Parameter is a named, typed parameter of a method or constructor.
// Identity within a parameter list is by name.
type Parameter struct {
	Name string
	Type TypeRef
}

// Member is a single method or constructor overload.
type Member struct {
	// Kind is KindMethod or KindConstructor.
	Kind MemberKind

	// Owner is the declaring type for methods and the constructed type for constructors.
	Owner string

	// Name is the logical (script) name. Overloads share it.
	Name string

	// Params is the ordered parameter list.
	Params []Parameter
}

// Property is a settable value of a type.
type Property struct {
	Owner string
	Name  string
	Type  TypeRef
}

// Enum is an enumeration with its member names in declaration order.
type Enum struct {
	Name    string
	Members []string
}

// UndefinedMember is the enumeration member that denotes "value unset".
// It is never an accepted literal.
const UndefinedMember = "Undefined"

// Literals returns the enum members that are valid script literals:
// every distinct member except UndefinedMember, in declaration order.
func (e Enum) Literals() []string {
	seen := make(map[string]bool, len(e.Members))
	literals := make([]string, 0, len(e.Members))
	for _, name := range e.Members {
		if name == UndefinedMember || seen[name] {
			continue
		}
		seen[name] = true
		literals = append(literals, name)
	}
	return literals
}
