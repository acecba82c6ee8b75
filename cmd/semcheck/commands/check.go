package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/lint"
	"git.home.luguber.info/inful/semcheck/internal/pipeline"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	File      string  `arg:"" help:"HTML file to check" type:"path"`
	Output    string  `short:"o" help:"Write the corrected HTML to this file"`
	Format    string  `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	FailUnder float64 `help:"Exit with an error when the score before correction is below this value"`
}

// Run executes the check command.
func (c *CheckCmd) Run(g *Global, _ *CLI) error {
	return c.run(context.Background(), os.Stdout, pipeline.New(nil, nil, pipeline.WithLogger(logger(g))), isColorSupported())
}

func (c *CheckCmd) run(ctx context.Context, w io.Writer, p *pipeline.Pipeline, useColor bool) error {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNotFound, "cannot read file").
			WithContext("file", c.File).
			Build()
	}

	res, err := p.Process(ctx, raw)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if dir := filepath.Dir(c.Output); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return errors.WrapError(err, errors.CategoryStorage, "cannot create output directory").Build()
			}
		}
		if err := os.WriteFile(c.Output, []byte(res.CorrectedHTML), 0o600); err != nil {
			return errors.WrapError(err, errors.CategoryStorage, "cannot write corrected html").
				WithContext("file", c.Output).
				Build()
		}
	}

	formatter := lint.NewFormatter(c.Format, useColor)
	if err := formatter.Format(w, []lint.Report{{Path: c.File, Result: res.Scored, Fix: res.Fix}}); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	if c.Format == "text" && res.EncodingFallback {
		_, _ = fmt.Fprintf(w, "  decoded as %s\n", res.Encoding)
	}

	if c.FailUnder > 0 && lint.Round2(res.Score) < c.FailUnder {
		return errors.ValidationError("score below threshold").
			WithContext("score", lint.Round2(res.Score)).
			WithContext("threshold", c.FailUnder).
			Build()
	}
	return nil
}
