package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/semcheck/cmd/semcheck/commands"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}

	ctx := kong.Parse(&cli,
		kong.Name("semcheck"),
		kong.Description("Score and correct HTML documents against semantic markup rules."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	global.Logger = slog.Default()

	if err := ctx.Run(global, &cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		os.Exit(adapter.Report(os.Stderr, err))
	}
}
