package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/semcheck/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	logger(g).Info("Initializing configuration", slog.String("path", root.Config), slog.Bool("force", i.Force))
	return config.Init(root.Config, i.Force)
}
