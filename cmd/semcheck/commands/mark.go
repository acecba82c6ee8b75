package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/semcheck/internal/batch"
	"git.home.luguber.info/inful/semcheck/internal/lint"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
	"git.home.luguber.info/inful/semcheck/internal/watch"
)

// MarkCmd implements the 'mark' command.
type MarkCmd struct {
	Dirs    []string `arg:"" help:"Directories to scan for *.html files" type:"existingdir"`
	Output  string   `short:"o" required:"" help:"CSV file to write"`
	Workers int      `short:"w" help:"Files scored concurrently (defaults to batch.workers)"`
	Watch   bool     `help:"Re-mark whenever an HTML file changes"`
	Quiet   bool     `short:"q" help:"Suppress progress output"`
}

// Run executes the mark command.
func (m *MarkCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	workers := m.Workers
	if workers < 1 {
		workers = cfg.Batch.Workers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return m.run(ctx, os.Stderr, workers, isColorSupported(), g)
}

func (m *MarkCmd) run(ctx context.Context, w io.Writer, workers int, useColor bool, g *Global) error {
	progress := newProgressPrinter(w, useColor)
	opts := []batch.Option{batch.WithWorkers(workers), batch.WithLogger(logger(g))}
	if !m.Quiet {
		opts = append(opts, batch.WithProgress(progress.update))
	}
	marker := batch.NewMarker(nil, opts...)

	summary, err := marker.MarkToFile(ctx, m.Output, m.Dirs...)
	if err != nil {
		return err
	}
	progress.summary(summary, m.Output)

	if !m.Watch {
		return nil
	}

	watcher, err := watch.New(marker, m.Output, m.Dirs, watch.WithOnRun(func(s *batch.Summary, err error) {
		if err != nil {
			logger(g).Error("Re-marking failed", logfields.Error(err))
			return
		}
		progress.summary(s, m.Output)
	}))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, progress.dim.Sprint("Watching for changes, press Ctrl+C to stop"))
	return watcher.Run(ctx)
}

type progressPrinter struct {
	w    io.Writer
	ok   *color.Color
	warn *color.Color
	dim  *color.Color
}

func newProgressPrinter(w io.Writer, useColor bool) *progressPrinter {
	p := &progressPrinter{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
	}
	if !useColor {
		for _, c := range []*color.Color{p.ok, p.warn, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (p *progressPrinter) update(pr batch.Progress) {
	_, _ = fmt.Fprintf(p.w, "Processed %d/%d files (%.0f%%)\n", pr.Done, pr.Total, pr.Percent())
}

func (p *progressPrinter) summary(s *batch.Summary, out string) {
	_, _ = fmt.Fprintf(p.w, "%s %d row%s written to %s (average score %.2f, %s)\n",
		p.ok.Sprint("✓"), s.Rows, pluralize(s.Rows), out, lint.Round2(s.AverageScore), s.Duration.Round(time.Millisecond))
	for _, f := range s.Failures {
		_, _ = fmt.Fprintf(p.w, "%s %s: %v\n", p.warn.Sprint("!"), f.Path, f.Err)
	}
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
