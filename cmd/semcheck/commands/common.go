// Package commands implements the semcheck command-line interface.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/semcheck/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve ServeCmd `cmd:"" help:"Run the HTTP API"`
	Check CheckCmd `cmd:"" help:"Score and correct a single HTML file"`
	Mark  MarkCmd  `cmd:"" help:"Score directories of HTML files into a CSV table"`
	User  UserCmd  `cmd:"" help:"Manage user accounts"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`

	cfg    *config.Config
	cfgErr error
	loaded bool
}

// LoadConfig loads the configuration once and returns the cached result on
// later calls.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if !c.loaded {
		c.cfg, c.cfgErr = config.Load(c.Config)
		c.loaded = true
	}
	return c.cfg, c.cfgErr
}

// AfterApply runs after flag parsing; setup logging once. A configuration
// that fails to load falls back to default logging and the error surfaces
// from the command that needs it.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logging := config.Default().Logging
	if cfg, err := c.LoadConfig(); err == nil {
		logging = cfg.Logging
	}
	slog.SetDefault(NewLogger(logging, c.Verbose))
	return nil
}

// NewLogger builds the process logger. Verbose forces debug level.
func NewLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slogLevel(lc.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logger(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// isColorSupported checks if the terminal supports color output.
func isColorSupported() bool {
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		return false
	}
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
