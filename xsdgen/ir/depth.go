package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Depth is the quantum depth of a configuration variant: the number of bits
// per color channel. It selects the quantum primitive and the accepted color
// literals of a generated grammar.
type Depth int

const (
	Q8  Depth = 8
	Q16 Depth = 16
)

// DefaultDepths lists the variants generated when none are configured,
// in increasing precision.
var DefaultDepths = []Depth{Q8, Q16}

// ParseDepth parses a variant identifier such as "Q8" or "Q16".
// Any positive tier parses; whether it can be generated is decided by the
// grammar builder.
func ParseDepth(s string) (Depth, error) {
	digits, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(s)), "Q")
	if !ok {
		return 0, fmt.Errorf("invalid depth %q: expected Q<bits>", s)
	}
	bits, err := strconv.Atoi(digits)
	if err != nil || bits <= 0 {
		return 0, fmt.Errorf("invalid depth %q: expected Q<bits>", s)
	}
	return Depth(bits), nil
}

// String returns the variant identifier, e.g. "Q16".
func (d Depth) String() string {
	return "Q" + strconv.Itoa(int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Depth) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Depth) UnmarshalText(text []byte) error {
	parsed, err := ParseDepth(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
