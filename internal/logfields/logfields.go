package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyStage      = "stage"
	KeyKind       = "kind"
	KeyTarget     = "target"
	KeyLayout     = "layout"
	KeyPlugin     = "plugin"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyAttempt    = "attempt"
	KeyEvent      = "event"
	KeyURL        = "url"
	KeyError      = "error"
	KeyResult     = "result"
	KeyOutcome    = "outcome"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Result(r string) slog.Attr       { return slog.String(KeyResult, r) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Layout(name string) slog.Attr    { return slog.String(KeyLayout, name) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func Page(n int) slog.Attr            { return slog.Int(KeyPage, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Since reports the elapsed milliseconds from start.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
