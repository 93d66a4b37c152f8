package gen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/broady/magickxsd/cmd/magickxsd/internal/app"
	"github.com/broady/magickxsd/xsdgen"
)

// Cmd generates the schemas and writes them below the configured output
// directory.
type Cmd struct {
	out io.Writer
}

func (c *Cmd) Run(ctx context.Context, g *app.Globals) error {
	cfg, logger, err := g.Load(os.Environ())
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	result, err := xsdgen.Generate(ctx, cfg, xsdgen.WithLogger(logger))
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	root := cfg.OutputDir()
	for _, v := range result.Variants {
		fmt.Fprintf(out, "✓ %s: %s (%d bytes)\n", v.Depth, filepath.Join(root, filepath.FromSlash(v.Path)), v.Size)
	}
	return nil
}
