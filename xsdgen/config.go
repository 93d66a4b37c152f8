package xsdgen

import (
	"bytes"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"

	"github.com/broady/magickxsd/internal/validation"
	"github.com/broady/magickxsd/xsdgen/ir"
	"github.com/broady/magickxsd/xsdgen/provider"
)

// Provider names.
const (
	ProviderCatalog = "catalog"
	ProviderSource  = "source"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// EnvPrefix prefixes environment variables that override configuration
// keys, e.g. MAGICKXSD_OUT_DIR overrides outDir.
const EnvPrefix = "MAGICKXSD_"

// Config holds the configuration for schema generation.
type Config struct {
	// Template is the base grammar template with placeholders.
	Template string `yaml:"template" schema:"template" validate:"required"`

	// Provider selects where the API surface comes from.
	// "catalog" (default) reads descriptor tables from Catalog.
	// "source" analyzes the Go packages in Packages.
	Provider string `yaml:"provider" schema:"provider" validate:"oneof=catalog source"`

	// Catalog is the YAML catalog read by the catalog provider.
	Catalog string `yaml:"catalog" schema:"catalog" validate:"required_if=Provider catalog"`

	// Packages are the Go package patterns analyzed by the source provider.
	Packages []string `yaml:"packages" schema:"packages" validate:"required_if=Provider source"`

	// Formats is an optional TOML format registry. Catalog enums marked
	// registry take their members from it.
	Formats string `yaml:"formats" schema:"formats"`

	// OutDir is the root below which Release<Depth>/MagickScript.xsd is written.
	OutDir string `yaml:"outDir" schema:"outdir" validate:"required"`

	// Variants are the quantum depths to generate.
	// Default: Q8, Q16
	Variants []ir.Depth `yaml:"variants" schema:"variants" validate:"min=1,unique"`

	// ImageType is the type whose properties and methods are script actions.
	// Default: MagickImage
	ImageType string `yaml:"imageType" schema:"imagetype"`

	// ExcludedTypes are host types that are intentionally not scriptable.
	// Parameters and properties of these types are left out.
	ExcludedTypes []string `yaml:"excludedTypes" schema:"excludedtypes"`

	// TypeMappings adds or replaces attribute type mappings,
	// e.g. {"float": "xs:float"}.
	TypeMappings map[string]string `yaml:"typeMappings" schema:"-"`

	// Jobs is the number of variants generated concurrently.
	// Default: 1
	Jobs int `yaml:"jobs" schema:"jobs" validate:"gte=1"`

	// LogFormat selects the CLI log encoding: "console" (default) or "json".
	LogFormat string `yaml:"logFormat" schema:"logformat" validate:"oneof=console json"`

	// Dir is the directory relative paths and package patterns are resolved
	// against. LoadConfig sets it to the directory of the configuration file.
	Dir string `yaml:"-" schema:"-"`
}

var validate = validation.New()

// LoadConfig reads a YAML configuration file. Relative paths in it are
// resolved against the file's directory. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		err = errors.Mark(errors.Newf("configuration file not found: %s", path), ErrConfigNotFound)
		return nil, errors.WithHint(err, "create magickxsd.yaml or set MAGICKXSD_CONFIG")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read configuration")
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "configuration %s", path)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(err, "resolve configuration directory")
	}
	cfg.Dir = dir
	return cfg, nil
}

// ParseConfig decodes YAML configuration text.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Mark(errors.Wrap(err, "parse configuration"), ErrInvalidConfig)
	}
	return &cfg, nil
}

var envDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(ir.Depth(0), func(s string) reflect.Value {
		depth, err := ir.ParseDepth(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(depth)
	})
	return d
}()

// ApplyEnv overrides configuration keys from environment entries in
// "KEY=value" form (see os.Environ). Keys are EnvPrefix followed by the
// configuration key in upper case, with optional underscores between
// words. List values are comma separated.
func (c *Config) ApplyEnv(environ []string) error {
	values := url.Values{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok || name == "CONFIG" {
			continue
		}
		name = strings.ToLower(strings.ReplaceAll(name, "_", ""))
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values.Add(name, v)
			}
		}
	}
	if len(values) == 0 {
		return nil
	}

	if err := envDecoder.Decode(c, values); err != nil {
		return errors.Mark(errors.Wrap(err, "environment overrides"), ErrInvalidConfig)
	}
	return nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Provider == "" {
		result.Provider = ProviderCatalog
	}
	if len(result.Variants) == 0 {
		result.Variants = slices.Clone(ir.DefaultDepths)
	}
	if result.ImageType == "" {
		result.ImageType = provider.DefaultImageType
	}
	if result.Jobs == 0 {
		result.Jobs = 1
	}
	if result.LogFormat == "" {
		result.LogFormat = LogFormatConsole
	}

	return &result
}

// Validate applies defaults to a copy of the configuration and checks it.
func (c *Config) Validate() error {
	return validation.Struct(validate, applyConfigDefaults(c), ErrInvalidConfig)
}

// OutputDir returns OutDir resolved against Dir.
func (c *Config) OutputDir() string {
	return c.path(c.OutDir)
}

// path resolves a configured path against Dir.
func (c *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
