// Package formats provides the registry of image formats known to the
// image library. The registry is data: it is loaded once per process and
// passed by reference to whatever needs it.
package formats

import (
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/broady/magickxsd/internal/validation"
)

// ErrInvalidRegistry marks a registry that fails validation.
var ErrInvalidRegistry = errors.New("invalid format registry")

var validate = validation.New()

// Format describes one image format.
type Format struct {
	Name                  string `toml:"name" validate:"required"`
	Description           string `toml:"description"`
	Module                string `toml:"module"`
	MimeType              string `toml:"mimeType"`
	Readable              bool   `toml:"readable"`
	Writable              bool   `toml:"writable"`
	MultiFrame            bool   `toml:"multiFrame"`
	CanReadMultithreaded  bool   `toml:"canReadMultithreaded"`
	CanWriteMultithreaded bool   `toml:"canWriteMultithreaded"`
}

// EnumName returns the enumeration member name for the format.
func (f Format) EnumName() string {
	return EnumName(f.Name)
}

type file struct {
	Formats []Format `toml:"format" validate:"dive"`
}

// Registry is an ordered, read-only set of formats.
type Registry struct {
	formats []Format
	byName  map[string]int
}

// Load reads a registry from a TOML file.
func Load(path string) (*Registry, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrapf(err, "load format registry %s", path)
	}
	return newRegistry(f)
}

// Parse reads a registry from TOML text.
func Parse(data string) (*Registry, error) {
	var f file
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse format registry")
	}
	return newRegistry(f)
}

// New builds a registry from formats, in order. Later duplicates of a name
// are ignored.
func New(formats ...Format) (*Registry, error) {
	return newRegistry(file{Formats: formats})
}

func newRegistry(f file) (*Registry, error) {
	if err := validation.Struct(validate, f, ErrInvalidRegistry); err != nil {
		return nil, errors.Wrap(err, "invalid format registry")
	}

	r := &Registry{byName: make(map[string]int, len(f.Formats))}
	for _, format := range f.Formats {
		key := strings.ToLower(format.EnumName())
		if _, dup := r.byName[key]; dup {
			continue
		}
		r.byName[key] = len(r.formats)
		r.formats = append(r.formats, format)
	}
	return r, nil
}

// lookup finds a format by its name or enumeration name, ignoring case.
func (r *Registry) lookup(name string) (Format, bool) {
	i, ok := r.byName[strings.ToLower(EnumName(name))]
	if !ok {
		return Format{}, false
	}
	return r.formats[i], true
}

// EnumMembers returns the enumeration member names of all formats, in
// registry order.
func (r *Registry) EnumMembers() []string {
	members := make([]string, len(r.formats))
	for i, f := range r.formats {
		members[i] = f.EnumName()
	}
	return members
}

var digitWords = [...]string{"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}

// EnumName converts a format name to an enumeration member name:
// dashes are dropped, a leading digit is spelled out, and the rest is
// capitalized ("3FR" -> "ThreeFr", "JPEG" -> "Jpeg", "PNG-8" -> "Png8").
func EnumName(name string) string {
	name = strings.ReplaceAll(name, "-", "")
	if name == "" {
		return ""
	}

	var prefix string
	if c := name[0]; c >= '0' && c <= '9' {
		prefix = digitWords[c-'0']
		name = name[1:]
	}
	if name == "" {
		return prefix
	}

	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return prefix + string(runes)
}
