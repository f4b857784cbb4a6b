package novel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EncodeChapter renders a chapter in raw-directory layout.
func EncodeChapter(c *Chapter) []byte {
	lines := make([]string, 0, len(c.Paragraphs)+1)
	lines = append(lines, c.Title)
	lines = append(lines, c.Paragraphs...)
	return []byte(strings.Join(lines, "\n"))
}

// EncodeForeword renders an info block in raw-directory layout.
func EncodeForeword(i *Info) []byte {
	lines := []string{i.Title, i.Author, i.SourceURL, i.Types}
	lines = append(lines, i.Foreword...)
	return []byte(strings.Join(lines, "\n"))
}

// WriteText writes a novel to dir using the raw-directory layout, so the
// output of a clean run is itself a valid raw directory. It returns the
// names of the files written.
func WriteText(dir string, n *Novel) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	var written []string
	for _, it := range n.Items() {
		var name string
		var data []byte
		switch v := it.(type) {
		case *Cover:
			name, data = v.Name, v.Data
		case *Info:
			name, data = ForewordFile, EncodeForeword(v)
		case *Chapter:
			name, data = ChapterFileName(v.ID), EncodeChapter(v)
		default:
			panic(fmt.Sprintf("novel: unhandled item type %T", it))
		}
		// #nosec G306 -- output files are meant to be readable by other tools.
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}
