package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 1, adapter.ExitCodeFor(stderrors.New("plain")))
	assert.Equal(t, 2, adapter.ExitCodeFor(ValidationError("bad flag").Build()))
	assert.Equal(t, 7, adapter.ExitCodeFor(ConfigError("bad config").Build()))
	assert.Equal(t, 9, adapter.ExitCodeFor(ParseError("bad html").Build()))
	assert.Equal(t, 10, adapter.ExitCodeFor(InternalError("bug").Build()))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	code := adapter.Report(&out, ConfigError("jwt secret is empty").Build())

	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "jwt secret is empty")

	out.Reset()
	adapter.Report(&out, InternalError("nil registry").Build())
	assert.Contains(t, out.String(), "use -v for details")
}
