package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyConfig     = "config"
	KeyField      = "field"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeySource     = "source"
	KeyLinkKind   = "link_kind"
	KeyPolicy     = "policy"
	KeyURL        = "url"
	KeyDocID      = "doc_id"
	KeyRoute      = "route"
	KeyCount      = "count"
	KeySnapshot   = "snapshot"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Config(path string) slog.Attr     { return slog.String(KeyConfig, path) }
func Field(name string) slog.Attr      { return slog.String(KeyField, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Target(t string) slog.Attr        { return slog.String(KeyTarget, t) }
func Source(s string) slog.Attr        { return slog.String(KeySource, s) }
func LinkKind(k string) slog.Attr      { return slog.String(KeyLinkKind, k) }
func Policy(p string) slog.Attr        { return slog.String(KeyPolicy, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func DocID(id string) slog.Attr        { return slog.String(KeyDocID, id) }
func Route(r string) slog.Attr         { return slog.String(KeyRoute, r) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Snapshot(s string) slog.Attr      { return slog.String(KeySnapshot, s) }
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
