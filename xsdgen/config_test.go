package xsdgen

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/magickxsd/xsdgen/ir"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/magickxsd.yaml")
	require.NoError(t, err)

	dir, err := filepath.Abs("testdata")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "template.xsd", cfg.Template)
	assert.Equal(t, []string{"Stream"}, cfg.ExcludedTypes)
	assert.Equal(t, filepath.Join(dir, "magick.yaml"), cfg.path(cfg.Catalog))
	assert.Equal(t, "/abs/out", cfg.path("/abs/out"))
	assert.Empty(t, cfg.path(""))
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
	assert.Contains(t, errors.GetAllHints(err), "create magickxsd.yaml or set MAGICKXSD_CONFIG")
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
template: base.xsd
provider: source
packages: [./magick/...]
outDir: dist
variants: [Q16]
typeMappings:
  float: xs:float
jobs: 2
logFormat: json
`))
	require.NoError(t, err)
	assert.Equal(t, ProviderSource, cfg.Provider)
	assert.Equal(t, []string{"./magick/..."}, cfg.Packages)
	assert.Equal(t, []ir.Depth{ir.Q16}, cfg.Variants)
	assert.Equal(t, map[string]string{"float": "xs:float"}, cfg.TypeMappings)
	assert.Equal(t, 2, cfg.Jobs)
	assert.NoError(t, cfg.Validate())

	empty, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, empty)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unknown key", "template: a.xsd\noutput: dist\n", "field output not found"},
		{"bad depth", "variants: [Q8, X]\n", `invalid depth "X"`},
		{"not a mapping", "- template\n", "cannot unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	in := &Config{Template: "t.xsd", Catalog: "c.yaml", OutDir: "out"}
	got := applyConfigDefaults(in)

	assert.Equal(t, ProviderCatalog, got.Provider)
	assert.Equal(t, []ir.Depth{ir.Q8, ir.Q16}, got.Variants)
	assert.Equal(t, "MagickImage", got.ImageType)
	assert.Equal(t, 1, got.Jobs)
	assert.Equal(t, LogFormatConsole, got.LogFormat)

	assert.Empty(t, in.Provider, "input must not be mutated")
	assert.Nil(t, in.Variants)

	got.Variants[0] = ir.Depth(4)
	assert.Equal(t, ir.Q8, ir.DefaultDepths[0], "defaults must be copied")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{Template: "t.xsd", Catalog: "c.yaml", OutDir: "out"}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing template", func(c *Config) { c.Template = "" }, "template: required"},
		{"missing out dir", func(c *Config) { c.OutDir = "" }, "outDir: required"},
		{"unknown provider", func(c *Config) { c.Provider = "reflect" }, "provider: must be one of: catalog source"},
		{"catalog provider without catalog", func(c *Config) { c.Catalog = "" }, "catalog: required when Provider is catalog"},
		{"source provider without packages", func(c *Config) { c.Provider = ProviderSource }, "packages: required when Provider is source"},
		{"duplicate variants", func(c *Config) { c.Variants = []ir.Depth{ir.Q8, ir.Q8} }, "variants: must not contain duplicates"},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, "jobs: must be at least 1"},
		{"bad log format", func(c *Config) { c.LogFormat = "text" }, "logFormat: must be one of: console json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := &Config{
		Template:      "t.xsd",
		OutDir:        "out",
		ExcludedTypes: []string{"Stream"},
		Jobs:          1,
	}

	err := cfg.ApplyEnv([]string{
		"HOME=/root",
		"MAGICKXSD_CONFIG=other.yaml",
		"MAGICKXSD_OUT_DIR=/tmp/schemas",
		"MAGICKXSD_VARIANTS=Q16, q8",
		"MAGICKXSD_EXCLUDED_TYPES=io.Reader,io.Writer",
		"MAGICKXSD_JOBS=4",
		"MAGICKXSD_LOGFORMAT=json",
		"MAGICKXSD_UNKNOWN=1",
		"MALFORMED",
	})
	require.NoError(t, err)

	assert.Equal(t, "t.xsd", cfg.Template)
	assert.Equal(t, "/tmp/schemas", cfg.OutDir)
	assert.Equal(t, []ir.Depth{ir.Q16, ir.Q8}, cfg.Variants)
	assert.Equal(t, []string{"io.Reader", "io.Writer"}, cfg.ExcludedTypes)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestConfig_ApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{"bad depth", "MAGICKXSD_VARIANTS=Q8,fast"},
		{"bad jobs", "MAGICKXSD_JOBS=many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.ApplyEnv([]string{tt.env})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestConfig_ApplyEnvNone(t *testing.T) {
	cfg := &Config{Template: "t.xsd"}
	require.NoError(t, cfg.ApplyEnv([]string{"PATH=/bin"}))
	assert.Equal(t, &Config{Template: "t.xsd"}, cfg)
}
