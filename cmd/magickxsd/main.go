package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/broady/magickxsd/cmd/magickxsd/internal/app"
	"github.com/broady/magickxsd/cmd/magickxsd/internal/check"
	"github.com/broady/magickxsd/cmd/magickxsd/internal/gen"
)

type CLI struct {
	app.Globals `embed:""`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate Release<Depth>/MagickScript.xsd for every configured depth."`
	Check   check.Cmd  `cmd:"" help:"Expand the template for every depth without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	// .env must be loaded before kong reads MAGICKXSD_CONFIG.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("magickxsd"),
		kong.Description("MagickScript XML Schema generator."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&cli.Globals),
	)
	err := kctx.Run()
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
	kctx.FatalIfErrorf(err)
}
