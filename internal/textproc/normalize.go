package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

// Normalize drops blank lines and merges lines that were wrapped in the
// middle of a sentence. It fails with an empty_input error when no
// non-blank line is left.
func Normalize(lines []string) ([]string, error) {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, errors.EmptyInputError("input does not contain any non-blank line").
			WithContext("lines", len(lines)).
			Build()
	}

	result := []string{kept[0]}
	for _, x := range kept[1:] {
		tail := len(result) - 1
		last, _ := utf8.DecodeLastRuneInString(result[tail])
		first, _ := utf8.DecodeRuneInString(x)

		switch {
		case continuesSentence(last, first):
			result[tail] = result[tail] + " " + x
		case isDetachedPunct(first):
			result[tail] += x
		default:
			result = append(result, x)
		}
	}
	return result, nil
}

// continuesSentence reports whether a line starting with first continues the
// paragraph ending with last.
func continuesSentence(last, first rune) bool {
	return last == ',' ||
		unicode.IsLower(first) ||
		unicode.IsLower(last) ||
		(last == '"' && unicode.IsLower(first)) ||
		(first == '"' && unicode.IsLower(last))
}

func isDetachedPunct(r rune) bool {
	return r == '.' || r == ',' || r == ':'
}
