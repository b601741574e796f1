package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFile       = "file"
	KeyPath       = "path"
	KeySyntax     = "syntax"
	KeyTarget     = "target"
	KeyDecision   = "decision"
	KeyKind       = "kind"
	KeyOffset     = "offset"
	KeyMarkers    = "markers"
	KeyLinked     = "linked"
	KeyHeld       = "held"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyJobID      = "job_id"
	KeyConfig     = "config"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func File(name string) slog.Attr     { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Syntax(name string) slog.Attr   { return slog.String(KeySyntax, name) }
func Target(url string) slog.Attr    { return slog.String(KeyTarget, url) }
func Decision(d string) slog.Attr    { return slog.String(KeyDecision, d) }
func Kind(k string) slog.Attr        { return slog.String(KeyKind, k) }
func Offset(n int) slog.Attr         { return slog.Int(KeyOffset, n) }
func Markers(n int) slog.Attr        { return slog.Int(KeyMarkers, n) }
func Linked(n int) slog.Attr         { return slog.Int(KeyLinked, n) }
func Held(n int) slog.Attr           { return slog.Int(KeyHeld, n) }
func Files(n int) slog.Attr          { return slog.Int(KeyFiles, n) }
func JobID(id string) slog.Attr      { return slog.String(KeyJobID, id) }
func Config(path string) slog.Attr   { return slog.String(KeyConfig, path) }
func Addr(a string) slog.Attr        { return slog.String(KeyAddr, a) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
