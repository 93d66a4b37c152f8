package provider

import (
	"os"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/broady/magickxsd/internal/validation"
	"github.com/broady/magickxsd/xsdgen/formats"
	"github.com/broady/magickxsd/xsdgen/ir"
)

// SupportedSchemaVersions is the constraint a catalog's schemaVersion must
// satisfy.
const SupportedSchemaVersions = "^1"

// ErrInvalidCatalog marks a catalog that cannot be loaded.
var ErrInvalidCatalog = errors.New("invalid catalog")

var validate = validation.New()

// catalog is the YAML document read by CatalogProvider.
type catalog struct {
	SchemaVersion string        `yaml:"schemaVersion" validate:"required"`
	Families      []familyEntry `yaml:"families" validate:"dive"`
	Types         []typeEntry   `yaml:"types" validate:"dive"`
	Enums         []enumEntry   `yaml:"enums" validate:"dive"`
}

type familyEntry struct {
	Name    string   `yaml:"name" validate:"required"`
	Prefix  string   `yaml:"prefix"`
	Members []string `yaml:"members" validate:"required,unique,dive,required"`
}

type typeEntry struct {
	Name         string          `yaml:"name" validate:"required"`
	Properties   []propertyEntry `yaml:"properties" validate:"dive"`
	Methods      []methodEntry   `yaml:"methods" validate:"dive"`
	Constructors []ctorEntry     `yaml:"constructors" validate:"dive"`
}

type propertyEntry struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"required"`
}

type methodEntry struct {
	Name   string       `yaml:"name" validate:"required"`
	Params []paramEntry `yaml:"params" validate:"dive"`
}

type ctorEntry struct {
	Params []paramEntry `yaml:"params" validate:"dive"`
}

type paramEntry struct {
	Name string `yaml:"name" validate:"required,ncname"`
	Type string `yaml:"type" validate:"required"`
}

type enumEntry struct {
	Name     string   `yaml:"name" validate:"required"`
	Members  []string `yaml:"members" validate:"dive,required"`
	Registry bool     `yaml:"registry"`
}

// CatalogProvider serves the API surface from descriptor tables.
// It is immutable once loaded.
type CatalogProvider struct {
	imageType  string
	methods    map[string][]ir.MethodGroup
	properties map[string][]ir.Property
	ctors      map[string][]ir.MethodGroup
	families   map[string][]string
	enums      []ir.Enum
}

var _ Provider = (*CatalogProvider)(nil)

// Option configures a provider.
type Option func(*options)

type options struct {
	imageType string
	registry  *formats.Registry
}

// WithImageType sets the image type. Defaults to DefaultImageType.
func WithImageType(name string) Option {
	return func(o *options) {
		if name != "" {
			o.imageType = name
		}
	}
}

// WithRegistry supplies the format registry used by enums that take their
// members from it.
func WithRegistry(r *formats.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

func applyOptions(opts []Option) options {
	o := options{imageType: DefaultImageType}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string, opts ...Option) (*CatalogProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	p, err := ParseCatalog(data, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	return p, nil
}

// ParseCatalog reads a catalog from YAML text.
func ParseCatalog(data []byte, opts ...Option) (*CatalogProvider, error) {
	o := applyOptions(opts)

	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse catalog"), ErrInvalidCatalog)
	}
	if err := validation.Struct(validate, c, ErrInvalidCatalog); err != nil {
		return nil, err
	}
	if err := checkSchemaVersion(c.SchemaVersion); err != nil {
		return nil, err
	}

	return newCatalogProvider(c, o)
}

func checkSchemaVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "schemaVersion %q", v), ErrInvalidCatalog)
	}
	constraint, err := semver.NewConstraint(SupportedSchemaVersions)
	if err != nil {
		return errors.Wrap(err, "schema version constraint")
	}
	if !constraint.Check(version) {
		err := errors.Newf("schemaVersion %s is not supported", version)
		err = errors.WithHintf(err, "this generator reads catalogs matching %s", SupportedSchemaVersions)
		return errors.Mark(err, ErrInvalidCatalog)
	}
	return nil
}

func newCatalogProvider(c catalog, o options) (*CatalogProvider, error) {
	invalid := func(format string, args ...any) error {
		return errors.Mark(errors.Newf(format, args...), ErrInvalidCatalog)
	}

	p := &CatalogProvider{
		imageType:  o.imageType,
		methods:    make(map[string][]ir.MethodGroup),
		properties: make(map[string][]ir.Property),
		ctors:      make(map[string][]ir.MethodGroup),
		families:   make(map[string][]string),
	}

	enumNames := make(map[string]bool, len(c.Enums))
	for _, e := range c.Enums {
		if enumNames[e.Name] {
			return nil, invalid("duplicate enum %s", e.Name)
		}
		enumNames[e.Name] = true

		members := append([]string(nil), e.Members...)
		if e.Registry {
			if o.registry == nil {
				return nil, errors.WithHint(invalid("enum %s: registry members requested but no format registry is loaded", e.Name),
					"set formats in the configuration")
			}
			members = append(members, o.registry.EnumMembers()...)
		}
		p.enums = append(p.enums, ir.Enum{Name: e.Name, Members: members})
	}

	types := make(map[string]bool, len(c.Types))
	for _, t := range c.Types {
		if types[t.Name] {
			return nil, invalid("duplicate type %s", t.Name)
		}
		types[t.Name] = true
	}

	prefixes := make(map[string]string)
	for _, f := range c.Families {
		if _, dup := p.families[f.Name]; dup {
			return nil, invalid("duplicate family %s", f.Name)
		}
		for _, m := range f.Members {
			if !types[m] {
				return nil, invalid("family %s: unknown type %s", f.Name, m)
			}
			if other, ok := prefixes[m]; ok && other != f.Prefix {
				return nil, invalid("type %s belongs to families with different prefixes", m)
			}
			prefixes[m] = f.Prefix
		}
		p.families[f.Name] = append([]string(nil), f.Members...)
	}

	for _, t := range c.Types {
		for _, prop := range t.Properties {
			p.properties[t.Name] = append(p.properties[t.Name], ir.Property{
				Owner: t.Name,
				Name:  prop.Name,
				Type:  parseTypeRef(prop.Type, enumNames),
			})
		}

		var methods []ir.Member
		for _, m := range t.Methods {
			methods = append(methods, ir.Member{
				Kind:   ir.KindMethod,
				Owner:  t.Name,
				Name:   m.Name,
				Params: parseParams(m.Params, enumNames),
			})
		}
		p.methods[t.Name] = ir.GroupMembers(methods)

		if len(t.Constructors) > 0 {
			name := scriptName(t.Name, prefixes[t.Name])
			var ctors []ir.Member
			for _, ctor := range t.Constructors {
				ctors = append(ctors, ir.Member{
					Kind:   ir.KindConstructor,
					Owner:  t.Name,
					Name:   name,
					Params: parseParams(ctor.Params, enumNames),
				})
			}
			p.ctors[t.Name] = ir.GroupMembers(ctors)
		}
	}

	return p, nil
}

func parseParams(entries []paramEntry, enums map[string]bool) []ir.Parameter {
	params := make([]ir.Parameter, len(entries))
	for i, e := range entries {
		params[i] = ir.Parameter{Name: e.Name, Type: parseTypeRef(e.Type, enums)}
	}
	return params
}

// parseTypeRef parses a catalog type string. A "[]" prefix marks a
// collection; names declared as enums become enum references.
func parseTypeRef(s string, enums map[string]bool) ir.TypeRef {
	s = strings.TrimSpace(s)
	if elem, ok := strings.CutPrefix(s, "[]"); ok {
		return ir.Collection(parseTypeRef(elem, enums))
	}
	if enums[s] {
		return ir.EnumRef(s)
	}
	return ir.Named(s)
}

func (p *CatalogProvider) ImageType() string { return p.imageType }

func (p *CatalogProvider) ListMethodGroups(typeName string) []ir.MethodGroup {
	return slices.Clone(p.methods[typeName])
}

func (p *CatalogProvider) ListProperties(typeName string) []ir.Property {
	return slices.Clone(p.properties[typeName])
}

func (p *CatalogProvider) ListConstructorGroups(typeName string) []ir.MethodGroup {
	return slices.Clone(p.ctors[typeName])
}

func (p *CatalogProvider) ListFamily(family string) []string {
	return slices.Clone(p.families[family])
}

func (p *CatalogProvider) ListEnumTypes() []ir.Enum {
	return slices.Clone(p.enums)
}
