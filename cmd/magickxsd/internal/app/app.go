// Package app holds the state shared by the magickxsd commands.
package app

import (
	"go.uber.org/zap"

	"github.com/broady/magickxsd/internal/logging"
	"github.com/broady/magickxsd/xsdgen"
)

// Globals are the flags accepted by every command.
type Globals struct {
	Config  string `help:"Configuration file." short:"c" default:"magickxsd.yaml" env:"MAGICKXSD_CONFIG" type:"path"`
	Verbose bool   `help:"Log debug output." short:"v"`
}

// Load reads the configuration file and the MAGICKXSD_* overrides
// found in environ, and builds the logger the configuration asks for.
func (g *Globals) Load(environ []string) (*xsdgen.Config, *zap.Logger, error) {
	cfg, err := xsdgen.LoadConfig(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogFormat, g.Verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
