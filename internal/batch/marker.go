// Package batch scores directories of HTML files offline and writes the
// results as a CSV table.
package batch

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
	"git.home.luguber.info/inful/semcheck/internal/lint"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
	"git.home.luguber.info/inful/semcheck/internal/textenc"
)

// Progress reports how many discovered files have been handled.
type Progress struct {
	Done  int
	Total int
	Path  string
}

// Percent returns the completed share in percent.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// ProgressFunc receives progress updates. Calls are serialized.
type ProgressFunc func(Progress)

// Row is one scored file.
type Row struct {
	Path   string
	Score  float64
	Errors []string
}

// Failure is a file that could not be scored.
type Failure struct {
	Path string
	Err  error
}

// Summary describes a completed run.
type Summary struct {
	Files        int
	Rows         int
	Failures     []Failure
	AverageScore float64
	Duration     time.Duration
}

// Marker scores HTML files with the source-aware rule variants. It never
// corrects documents.
type Marker struct {
	linter   *lint.Linter
	workers  int
	progress ProgressFunc
	logger   *slog.Logger
}

// Option configures a Marker.
type Option func(*Marker)

// WithWorkers sets the number of files scored concurrently. Values below one
// select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(m *Marker) { m.workers = n }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Marker) { m.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Marker) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMarker creates a marker. A nil linter selects the default rule set.
func NewMarker(linter *lint.Linter, opts ...Option) *Marker {
	if linter == nil {
		linter = lint.NewLinter(nil)
	}
	m := &Marker{linter: linter, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers < 1 {
		m.workers = runtime.GOMAXPROCS(0)
	}
	return m
}

// Discover returns every *.html file below dirs, sorted per directory.
// Hidden files and directories are skipped.
func Discover(dirs ...string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		var found []string
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".html") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryNotFound, "cannot read input directory").
				WithContext("dir", dir).
				Build()
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// MarkFile scores a single file.
func (m *Marker) MarkFile(path string) (Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Row{}, errors.WrapError(err, errors.CategoryNotFound, "cannot read file").
			WithContext("file", path).
			Build()
	}
	decoded := textenc.Decode(raw)
	doc, err := htmldoc.ParseString(decoded.Text)
	if err != nil {
		return Row{}, err
	}
	res := m.linter.ScoreSource(doc, &lint.Source{Path: path, Text: decoded.Text})
	return Row{Path: path, Score: res.Score, Errors: res.Messages()}, nil
}

// Mark scores every HTML file under dirs and writes the CSV to w. Rows keep
// discovery order regardless of completion order. Files that fail are listed
// in the summary and produce no row.
func (m *Marker) Mark(ctx context.Context, w io.Writer, dirs ...string) (*Summary, error) {
	start := time.Now()
	files, err := Discover(dirs...)
	if err != nil {
		return nil, err
	}

	rows := make([]*Row, len(files))
	fails := make([]error, len(files))

	var (
		mu   sync.Mutex
		done int
	)
	report := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if m.progress != nil {
			m.progress(Progress{Done: done, Total: len(files), Path: path})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(m.workers, len(files))))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			row, err := m.MarkFile(path)
			if err != nil {
				fails[i] = err
				m.logger.Warn("Skipping file", logfields.File(path), logfields.Error(err))
			} else {
				rows[i] = &row
			}
			report(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "batch marking canceled").Build()
	}

	summary := &Summary{Files: len(files)}
	out := make([]Row, 0, len(files))
	total := 0.0
	for i, row := range rows {
		if row == nil {
			summary.Failures = append(summary.Failures, Failure{Path: files[i], Err: fails[i]})
			continue
		}
		out = append(out, *row)
		total += row.Score
	}
	summary.Rows = len(out)
	if summary.Rows > 0 {
		summary.AverageScore = total / float64(summary.Rows)
	}

	if err := WriteCSV(w, out); err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)

	m.logger.Info("Batch marking complete",
		slog.Int("files", summary.Files),
		slog.Int("rows", summary.Rows),
		slog.Int("failures", len(summary.Failures)),
		logfields.Score(lint.Round2(summary.AverageScore)),
		logfields.Duration(summary.Duration))
	return summary, nil
}

// MarkToFile is Mark writing to a newly created (or truncated) file at outPath.
func (m *Marker) MarkToFile(ctx context.Context, outPath string, dirs ...string) (*Summary, error) {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryStorage, "cannot create output directory").Build()
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "cannot create output file").
			WithContext("file", outPath).
			Build()
	}

	summary, err := m.Mark(ctx, f, dirs...)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = errors.WrapError(cerr, errors.CategoryStorage, "cannot write output file").Build()
	}
	return summary, err
}
