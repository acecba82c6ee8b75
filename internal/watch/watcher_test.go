package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/semcheck/internal/batch"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

type runs struct {
	mu        sync.Mutex
	summaries []*batch.Summary
}

func (r *runs) record(s *batch.Summary, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
}

func (r *runs) last() *batch.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.summaries) == 0 {
		return nil
	}
	return r.summaries[len(r.summaries)-1]
}

func TestWatcher_RemarksOnChange(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.html"), []byte(`<p>a</p>`), 0o600))

	rec := &runs{}
	w, err := New(batch.NewMarker(nil, batch.WithWorkers(1)), out, []string{in},
		WithDebounce(20*time.Millisecond), WithOnRun(rec.record))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-w.Ready()

	require.NoError(t, os.WriteFile(filepath.Join(in, "b.html"), []byte(`<nav>n</nav>`), 0o600))

	require.Eventually(t, func() bool {
		s := rec.last()
		return s != nil && s.Rows == 2
	}, 5*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\r\n"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(batch.NewMarker(nil), "out.csv", []string{filepath.Join(t.TempDir(), "missing")})

	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	w, err := New(batch.NewMarker(nil), "out.csv", []string{dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"html write", fsnotify.Event{Name: filepath.Join(dir, "a.html"), Op: fsnotify.Write}, true},
		{"upper-case extension", fsnotify.Event{Name: filepath.Join(dir, "A.HTML"), Op: fsnotify.Create}, true},
		{"text file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Create}, false},
		{"hidden file", fsnotify.Event{Name: filepath.Join(dir, ".a.html"), Op: fsnotify.Write}, false},
		{"editor backup", fsnotify.Event{Name: filepath.Join(dir, "a.html~"), Op: fsnotify.Write}, false},
		{"swap file", fsnotify.Event{Name: filepath.Join(dir, "a.html.swp"), Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(dir, "a.html"), Op: fsnotify.Chmod}, false},
		{"removed html", fsnotify.Event{Name: filepath.Join(dir, "a.html"), Op: fsnotify.Remove}, true},
		{"new directory", fsnotify.Event{Name: sub, Op: fsnotify.Create}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
