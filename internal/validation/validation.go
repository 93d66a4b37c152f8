// Package validation wraps go-playground/validator with the rules and
// message formatting shared by configuration, catalog and registry loading.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/broady/magickxsd/xsdgen/grammar"
)

// New returns a validator that reports fields by their yaml or toml key
// and understands the "ncname" tag (a name usable as an XML tag).
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"yaml", "toml"} {
			name, _, _ := strings.Cut(f.Tag.Get(key), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	if err := v.RegisterValidation("ncname", func(fl validator.FieldLevel) bool {
		return grammar.ValidTag(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Struct validates s and converts validation failures into a single error
// listing every failing field, marked with mark.
func Struct(v *validator.Validate, s any, mark error) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.Mark(err, mark)
	}

	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fieldPath(ve)+": "+formatValidationError(ve))
	}
	return errors.Mark(errors.Newf("%s", strings.Join(messages, "; ")), mark)
}

// fieldPath drops the root struct name from the namespace,
// e.g. "catalog.types[0].name" becomes "types[0].name".
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "required_if":
		return "required when " + strings.Replace(ve.Param(), " ", " is ", 1)
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "unique":
		return "must not contain duplicates"
	case "ncname":
		return fmt.Sprintf("%q is not a valid XML name", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
