package textproc

import (
	"strings"
	"unicode/utf8"
)

// Defaults for DedupTitle.
const DefaultMaxTitleLength = 100

// DefaultIdentities are the markers that identify a restated chapter title.
var DefaultIdentities = []string{"Chương", "章"}

type dedupOptions struct {
	identities []string
	maxLength  int
}

// DedupOption customizes DedupTitle.
type DedupOption func(*dedupOptions)

// WithIdentities replaces the title markers. An empty list keeps the defaults.
func WithIdentities(ids ...string) DedupOption {
	return func(o *dedupOptions) {
		if len(ids) > 0 {
			o.identities = ids
		}
	}
}

// WithMaxLength sets the exclusive upper bound, in characters, for a
// paragraph to count as a title. Values below 1 keep the default.
func WithMaxLength(n int) DedupOption {
	return func(o *dedupOptions) {
		if n > 0 {
			o.maxLength = n
		}
	}
}

// DedupTitle removes the leading run of paragraphs that restate the chapter
// title. Only a contiguous prefix is removed; a matching paragraph later in
// the body is kept. The returned slice shares the input's backing array.
func DedupTitle(paragraphs []string, opts ...DedupOption) []string {
	o := dedupOptions{identities: DefaultIdentities, maxLength: DefaultMaxTitleLength}
	for _, opt := range opts {
		opt(&o)
	}

	n := 0
	for n < len(paragraphs) && isTitleRepeat(paragraphs[n], o) {
		n++
	}
	return paragraphs[n:]
}

func isTitleRepeat(p string, o dedupOptions) bool {
	if utf8.RuneCountInString(p) >= o.maxLength {
		return false
	}
	for _, id := range o.identities {
		if strings.Contains(p, id) {
			return true
		}
	}
	return false
}
