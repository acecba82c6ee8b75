package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"git.home.luguber.info/inful/semcheck/internal/auth"
	"git.home.luguber.info/inful/semcheck/internal/config"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/lint"
	"git.home.luguber.info/inful/semcheck/internal/pipeline"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

const navDoc = `<html><body><div class="nav-a">x</div></body></html>`

func writeHTML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParse_Commands(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"serve"}, "serve"},
		{[]string{"check", "page.html", "-o", "out.html", "--format", "json"}, "check <file>"},
		{[]string{"mark", dir, "-o", "out.csv", "--workers", "2"}, "mark <dirs>"},
		{[]string{"user", "add", "--email", "a@b.co", "--password", "secret123"}, "user add"},
		{[]string{"init", "--force"}, "init"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			_, ctx := parse(t, tt.args...)
			assert.Equal(t, tt.command, ctx.Command())
		})
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	cli, _ := parse(t, "-c", "custom.yaml", "-v", "serve")

	assert.Equal(t, "custom.yaml", cli.Config)
	assert.True(t, cli.Verbose)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cli := &CLI{Config: "missing.yaml"}

	cfg, err := cli.LoadConfig()
	require.NoError(t, err)
	again, err := cli.LoadConfig()
	require.NoError(t, err)

	assert.Same(t, cfg, again)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	l := NewLogger(config.LoggingConfig{Level: config.LogLevelWarn, Format: config.LogFormatJSON}, false)
	assert.False(t, l.Enabled(ctx, slog.LevelInfo))
	assert.True(t, l.Enabled(ctx, slog.LevelWarn))
	_, isJSON := l.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)

	l = NewLogger(config.LoggingConfig{Level: config.LogLevelError}, true)
	assert.True(t, l.Enabled(ctx, slog.LevelDebug))
	_, isText := l.Handler().(*slog.TextHandler)
	assert.True(t, isText)
}

func TestCheck_TextWritesCorrectedHTML(t *testing.T) {
	dir := t.TempDir()
	in := writeHTML(t, dir, "page.html", navDoc)
	out := filepath.Join(dir, "fixed", "page.html")

	var buf bytes.Buffer
	cmd := &CheckCmd{File: in, Output: out, Format: "text"}
	require.NoError(t, cmd.run(context.Background(), &buf, pipeline.New(nil, nil), false))

	assert.Contains(t, buf.String(), in+"  0.20 (3/15 rules)")
	assert.Contains(t, buf.String(), "✗ "+lint.RuleNavUsage)

	fixed, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(fixed), `<nav class="nav-a">x</nav>`)
}

func TestCheck_JSON(t *testing.T) {
	in := writeHTML(t, t.TempDir(), "page.html", navDoc)

	var buf bytes.Buffer
	cmd := &CheckCmd{File: in, Format: "json"}
	require.NoError(t, cmd.run(context.Background(), &buf, pipeline.New(nil, nil), false))

	var output lint.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Files, 1)
	assert.InDelta(t, 0.2, output.Files[0].Score, 1e-9)
	assert.Contains(t, output.Files[0].FailedRules, lint.RuleNavUsage)
	assert.NotEmpty(t, output.Files[0].Fixes)
}

func TestCheck_FailUnder(t *testing.T) {
	in := writeHTML(t, t.TempDir(), "page.html", navDoc)

	cmd := &CheckCmd{File: in, Format: "text", FailUnder: 0.5}
	err := cmd.run(context.Background(), &bytes.Buffer{}, pipeline.New(nil, nil), false)

	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestCheck_MissingFile(t *testing.T) {
	cmd := &CheckCmd{File: filepath.Join(t.TempDir(), "missing.html"), Format: "text"}
	err := cmd.run(context.Background(), &bytes.Buffer{}, pipeline.New(nil, nil), false)

	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestMark_WritesCSVAndProgress(t *testing.T) {
	dir := t.TempDir()
	writeHTML(t, dir, "a.html", navDoc)
	writeHTML(t, dir, "b.html", `<p>x</p>`)
	out := filepath.Join(t.TempDir(), "out.csv")

	var buf bytes.Buffer
	cmd := &MarkCmd{Dirs: []string{dir}, Output: out}
	require.NoError(t, cmd.run(context.Background(), &buf, 2, false, &Global{}))

	assert.Contains(t, buf.String(), "Processed 2/2 files (100%)")
	assert.Contains(t, buf.String(), "2 rows written to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "\uFEFFfile_path,score,errors"))
}

func TestMark_Quiet(t *testing.T) {
	dir := t.TempDir()
	writeHTML(t, dir, "a.html", navDoc)

	var buf bytes.Buffer
	cmd := &MarkCmd{Dirs: []string{dir}, Output: filepath.Join(t.TempDir(), "out.csv"), Quiet: true}
	require.NoError(t, cmd.run(context.Background(), &buf, 1, false, &Global{}))

	assert.NotContains(t, buf.String(), "Processed")
	assert.Contains(t, buf.String(), "1 row written")
}

func TestUserAdd(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	m := auth.NewManager(st, nil, auth.WithBcryptCost(bcrypt.MinCost))

	var buf bytes.Buffer
	cmd := &UserAddCmd{Email: " Alice@Example.com ", Password: "secret123"}
	require.NoError(t, cmd.run(context.Background(), &buf, m))
	assert.Contains(t, buf.String(), "Created user alice@example.com")

	_, err = st.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	err = cmd.run(context.Background(), &buf, m)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
}

func TestUserAdd_ShortPassword(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cmd := &UserAddCmd{Email: "bob@example.com", Password: "short"}
	err = cmd.run(context.Background(), &bytes.Buffer{}, auth.NewManager(st, nil))

	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestInit_WritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd := &InitCmd{}

	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: path}))
	assert.FileExists(t, path)

	err := cmd.Run(&Global{}, &CLI{Config: path})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
}
