package xsdgen

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/magickxsd/xsdgen/grammar"
)

// Sentinel errors. Use errors.Is to test for them; the returned errors carry
// the offending value in their message.
var (
	// ErrUnknownPlaceholder is returned when the template contains a
	// placeholder id with no handler. Nothing is written.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrDuplicatePlaceholder is returned when a placeholder id appears more
	// than once in the template.
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder")

	// ErrInvalidTemplate is returned when the template cannot be parsed or
	// is not an XML Schema document.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigNotFound is returned by LoadConfig when the file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnmappedType is returned when an API member uses a host type with
	// no grammar mapping.
	ErrUnmappedType = grammar.ErrUnmappedType

	// ErrUnsupportedVariant is returned for a quantum depth with no color or
	// quantum mapping.
	ErrUnsupportedVariant = grammar.ErrUnsupportedVariant
)
