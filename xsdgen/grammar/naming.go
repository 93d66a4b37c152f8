package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tag converts an API identifier to its grammar tag.
// An all upper-case identifier is lower-cased ("ICC" -> "icc"); otherwise only
// the first character is lowered ("FillColor" -> "fillColor").
func Tag(identifier string) string {
	if identifier == "" {
		return ""
	}
	if strings.ToUpper(identifier) == identifier {
		return strings.ToLower(identifier)
	}

	r, size := utf8.DecodeRuneInString(identifier)
	return string(unicode.ToLower(r)) + identifier[size:]
}

// ValidTag reports whether name is usable as an XML element or attribute name
// without a namespace prefix (an NCName restricted to letters, digits, '_',
// '-' and '.').
func ValidTag(name string) bool {
	if name == "" {
		return false
	}

	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(r) && r != '_' {
		return false
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return false
		}
	}

	// Names beginning with "xml" in any case are reserved.
	return !strings.HasPrefix(strings.ToLower(name), "xml")
}
