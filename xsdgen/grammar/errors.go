package grammar

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/magickxsd/xsdgen/ir"
)

var (
	// ErrUnmappedType marks a host type with neither an attribute nor an
	// element mapping that is not excluded either.
	ErrUnmappedType = errors.New("unmapped type")

	// ErrUnsupportedVariant marks a depth without a quantum or color mapping.
	ErrUnsupportedVariant = errors.New("unsupported variant")
)

func unmappedType(t ir.TypeRef) error {
	err := errors.Newf("unmapped type %q", t.String())
	err = errors.Mark(err, ErrUnmappedType)
	return errors.WithHint(err, "add the type to typeMappings, or to excludedTypes if it is not scriptable")
}

func unsupportedVariant(d ir.Depth, what string) error {
	err := errors.Newf("unsupported variant %s: no %s mapping", d, what)
	return errors.Mark(err, ErrUnsupportedVariant)
}
