// Package xsdgen generates MagickScript XML Schema grammars.
//
// A hand-written base template carries placeholder annotations
// (<xs:annotation id="...">). For each configured quantum depth the
// generator replaces every placeholder with schema constructs synthesized
// from the image library's API surface, removes simple types nothing
// references, and writes Release<Depth>/MagickScript.xsd.
//
// Example:
//
//	cfg, err := xsdgen.LoadConfig("magickxsd.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := xsdgen.Generate(ctx, cfg, xsdgen.WithLogger(logger))
package xsdgen

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/broady/magickxsd/xsdgen/formats"
	"github.com/broady/magickxsd/xsdgen/grammar"
	"github.com/broady/magickxsd/xsdgen/ir"
	"github.com/broady/magickxsd/xsdgen/provider"
	"github.com/broady/magickxsd/xsdgen/sink"
)

// Result describes a completed generation.
type Result struct {
	// Variants are in configuration order.
	Variants []VariantResult
}

// VariantResult describes the schema generated for one depth.
type VariantResult struct {
	Depth ir.Depth

	// Path is the sink path the schema was written to.
	Path string

	// Placeholders is the number of placeholders replaced.
	Placeholders int

	// Pruned lists the simple types removed as unreferenced.
	Pruned []string

	// Size is the length of the schema in bytes.
	Size int
}

// Option configures Generate.
type Option func(*generator)

// WithLogger sets the logger. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(g *generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSink sets the output sink. Default: a FilesystemSink rooted at
// Config.OutDir.
func WithSink(s sink.OutputSink) Option {
	return func(g *generator) {
		g.sink = s
	}
}

// WithProvider sets the API surface provider, bypassing Config.Provider.
func WithProvider(p provider.Provider) Option {
	return func(g *generator) {
		g.provider = p
	}
}

type generator struct {
	cfg      *Config
	logger   *zap.Logger
	sink     sink.OutputSink
	provider provider.Provider
	builder  *grammar.Builder
	template []byte
}

// Generate generates the schema for every configured variant. Variants run
// concurrently up to Config.Jobs. A variant that fails writes nothing; the
// first error is returned.
func Generate(ctx context.Context, cfg *Config, opts ...Option) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &generator{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}

	template, err := os.ReadFile(cfg.path(cfg.Template))
	if err != nil {
		return nil, errors.Wrap(err, "read template")
	}
	g.template = template

	if g.provider == nil {
		if g.provider, err = newProvider(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if g.sink == nil {
		g.sink = sink.NewFilesystemSink(cfg.OutputDir())
	}
	g.builder = grammar.NewBuilder(grammar.NewMapper(cfg.TypeMappings, cfg.ExcludedTypes))

	for _, depth := range cfg.Variants {
		if !grammar.Supported(depth) {
			err := errors.Newf("no quantum or color mapping for %s", depth)
			return nil, errors.Wrapf(errors.Mark(err, ErrUnsupportedVariant), "variant %s", depth)
		}
	}

	results := make([]VariantResult, len(cfg.Variants))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Jobs)
	for i, depth := range cfg.Variants {
		eg.Go(func() error {
			r, err := g.variant(ctx, depth)
			if err != nil {
				return errors.Wrapf(err, "variant %s", depth)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &Result{Variants: results}, nil
}

// variant expands, prunes and writes the schema for one depth.
func (g *generator) variant(ctx context.Context, depth ir.Depth) (VariantResult, error) {
	if err := ctx.Err(); err != nil {
		return VariantResult{}, err
	}
	logger := g.logger.With(zap.Stringer("variant", depth))

	doc, err := parseTemplate(g.template)
	if err != nil {
		return VariantResult{}, err
	}

	x := &expander{
		provider: g.provider,
		builder:  g.builder,
		depth:    depth,
		logger:   logger,
	}
	n, err := x.expand(doc)
	if err != nil {
		return VariantResult{}, err
	}

	pruned := doc.prune()
	for _, name := range pruned {
		logger.Debug("removed unused simple type", zap.String("name", name))
	}

	out, err := doc.bytes()
	if err != nil {
		return VariantResult{}, err
	}

	path := OutputPath(depth)
	logger.Info("creating output", zap.String("path", path), zap.Int("bytes", len(out)))
	if err := g.sink.WriteFile(ctx, path, out); err != nil {
		return VariantResult{}, errors.Wrapf(err, "write %s", path)
	}

	return VariantResult{
		Depth:        depth,
		Path:         path,
		Placeholders: n,
		Pruned:       pruned,
		Size:         len(out),
	}, nil
}

// newProvider builds the provider selected by the configuration.
func newProvider(ctx context.Context, cfg *Config) (provider.Provider, error) {
	opts := []provider.Option{provider.WithImageType(cfg.ImageType)}
	if cfg.Formats != "" {
		registry, err := formats.Load(cfg.path(cfg.Formats))
		if err != nil {
			return nil, err
		}
		opts = append(opts, provider.WithRegistry(registry))
	}

	switch cfg.Provider {
	case ProviderCatalog:
		return provider.LoadCatalog(cfg.path(cfg.Catalog), opts...)
	case ProviderSource:
		return provider.LoadSource(ctx, cfg.Dir, cfg.Packages, opts...)
	default:
		return nil, errors.Mark(errors.Newf("unknown provider %q", cfg.Provider), ErrInvalidConfig)
	}
}
