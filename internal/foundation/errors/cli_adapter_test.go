package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "structure error", err: StructuralMismatchError("no body").Build(), expected: 3},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "template error", err: MissingTemplateError("missing chapter.xhtml").Build(), expected: 9},
		{name: "packaging error", err: PackagingError("empty spine").Build(), expected: 11},
		{name: "internal error", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified error", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	err := PackagingError("spine is empty").WithContext("raw", "/tmp/raw").Build()
	if got := quiet.FormatError(err); got != "Error: spine is empty" {
		t.Errorf("quiet FormatError() = %q", got)
	}
	if got := verbose.FormatError(err); !strings.Contains(got, "[packaging:fatal]") {
		t.Errorf("verbose FormatError() = %q", got)
	}
	if got := quiet.FormatError(InternalError("nil map").Build()); !strings.Contains(got, "use -v") {
		t.Errorf("internal errors should be hidden in quiet mode, got %q", got)
	}
	if got := quiet.FormatError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("unclassified FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, outBuf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logBuf, nil)))
	adapter.out = &outBuf
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(MissingTemplateError("template missing").WithContext("file", "Text/chapter.xhtml").Build())

	if code != 9 {
		t.Errorf("expected exit code 9, got %d", code)
	}
	if !strings.Contains(outBuf.String(), "template missing") {
		t.Errorf("expected message on output, got %q", outBuf.String())
	}
	if !strings.Contains(logBuf.String(), "category=template") {
		t.Errorf("expected category in log, got %q", logBuf.String())
	}
}
