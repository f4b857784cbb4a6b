package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyChapterID  = "chapter_id"
	KeyCount      = "count"
	KeyLang       = "lang"
	KeyKind       = "kind"
	KeyCategory   = "category"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func ChapterID(id int) slog.Attr      { return slog.Int(KeyChapterID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Lang(code string) slog.Attr      { return slog.String(KeyLang, code) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
