package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRequestID  = "request_id"
	KeyUserID     = "user_id"
	KeyAnalysisID = "analysis_id"
	KeyFile       = "file"
	KeyRule       = "rule"
	KeyKind       = "kind"
	KeyScore      = "score"
	KeyStage      = "stage"
	KeyEncoding   = "encoding"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func UserID(id string) slog.Attr       { return slog.String(KeyUserID, id) }
func AnalysisID(id string) slog.Attr   { return slog.String(KeyAnalysisID, id) }
func File(path string) slog.Attr       { return slog.String(KeyFile, path) }
func Rule(name string) slog.Attr       { return slog.String(KeyRule, name) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Score(s float64) slog.Attr        { return slog.Float64(KeyScore, s) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Encoding(label string) slog.Attr  { return slog.String(KeyEncoding, label) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
