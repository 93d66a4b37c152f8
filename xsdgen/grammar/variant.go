package grammar

import "github.com/broady/magickxsd/xsdgen/ir"

// Color literal patterns, widest channel last.
const (
	patternShortHex = "#([0-9a-fA-F]{3,4})"
	patternHex8     = "#([0-9a-fA-F]{2}){3,4}"
	patternHex16    = "#([0-9a-fA-F]{4}){3,4}"
)

// quantumBase is the unsigned primitive that holds one channel at each depth.
var quantumBase = map[ir.Depth]string{
	ir.Q8:  "xs:unsignedByte",
	ir.Q16: "xs:unsignedShort",
}

// Supported reports whether d has quantum and color mappings.
func Supported(d ir.Depth) bool {
	_, ok := quantumBase[d]
	return ok
}

// Color builds the "color" simple type. Higher depths accept wider channel literals.
func (b *Builder) Color(d ir.Depth) (*Node, error) {
	if !Supported(d) {
		return nil, unsupportedVariant(d, "color")
	}

	restriction := Restriction(baseString)
	if d >= ir.Q8 {
		restriction.Children = append(restriction.Children,
			Pattern(patternShortHex),
			Pattern(patternHex8))
	}
	if d >= ir.Q16 {
		restriction.Children = append(restriction.Children, Pattern(patternHex16))
	}
	return SimpleType(TypeColor, restriction), nil
}

// Quantum builds the "quantum" simple type backed by the unsigned primitive of d.
func (b *Builder) Quantum(d ir.Depth) (*Node, error) {
	base, ok := quantumBase[d]
	if !ok {
		return nil, unsupportedVariant(d, "quantum")
	}
	return SimpleType(TypeQuantum, Restriction(base)), nil
}
