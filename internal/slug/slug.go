// Package slug derives file-system safe names from novel titles.
package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength is the slug length cap used for EPUB file names.
const DefaultMaxLength = 32

// Options controls slug generation.
type Options struct {
	// AllowUnicode keeps non-ASCII letters instead of folding them to ASCII.
	AllowUnicode bool
	// MaxLength caps the slug in characters; 0 disables the cap. Truncation
	// happens on a word boundary when the first word fits.
	MaxLength int
}

var lower = cases.Lower(language.Und)

// Make returns a lower-case, hyphen-separated slug of s. Without
// AllowUnicode the title is transliterated to ASCII first, so CJK titles
// slug to their romanization. The result is empty only when s has no
// letters or digits at all.
func Make(s string, opts Options) string {
	var keep func(rune) bool
	if opts.AllowUnicode {
		s = norm.NFKC.String(s)
		keep = func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
		}
	} else {
		s = unidecode.Unidecode(norm.NFC.String(s))
		t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if folded, _, err := transform.String(t, s); err == nil {
			s = folded
		}
		keep = func(r rune) bool {
			return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
		}
	}
	s = lower.String(s)

	words := strings.FieldsFunc(s, func(r rune) bool { return !keep(r) })
	return truncate(words, opts.MaxLength)
}

// truncate joins words with hyphens, stopping before the first word that
// would push the slug past max.
func truncate(words []string, max int) string {
	joined := strings.Join(words, "-")
	if max <= 0 || utf8.RuneCountInString(joined) <= max {
		return joined
	}
	if len(words) == 0 {
		return ""
	}
	if utf8.RuneCountInString(words[0]) > max {
		return string([]rune(words[0])[:max])
	}
	var b strings.Builder
	n := 0
	for i, w := range words {
		wl := utf8.RuneCountInString(w)
		if i > 0 {
			wl++
		}
		if n+wl > max {
			break
		}
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(w)
		n += wl
	}
	return b.String()
}
