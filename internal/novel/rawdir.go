package novel

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
)

// File names of the raw directory contract.
const (
	ForewordFile = "foreword.txt"
	CoverFile    = "cover.jpg"
	chapterExt   = ".txt"
)

// coverCandidates lists the accepted cover names, contract name first.
var coverCandidates = []string{CoverFile, "cover.jpeg", "cover.png", "cover.webp", "cover.gif"}

// forewordHeaderLines is the number of metadata lines before the foreword text.
const forewordHeaderLines = 4

// FileError is a per-file problem found while reading a raw directory. The
// file is left out of the novel; the rest of the directory is still usable.
type FileError struct {
	Name      string
	ChapterID int // 0 for non-chapter files
	Err       error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }
func (e FileError) Unwrap() error { return e.Err }

// ReadRawDir reads a raw directory from disk.
func ReadRawDir(dir string) (*Novel, []FileError, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewError(errors.CategoryNotFound, "raw directory not found").
				Fatal().
				WithContext("path", dir).
				Build()
		}
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "stat raw directory").Fatal().Build()
	}
	if !info.IsDir() {
		return nil, nil, errors.ValidationError("raw path is not a directory").WithContext("path", dir).Build()
	}
	return ReadRaw(os.DirFS(dir))
}

// ReadRaw reads the raw directory contract from fsys. Malformed files are
// returned as FileErrors; only unreadable or empty directories fail.
func ReadRaw(fsys fs.FS) (*Novel, []FileError, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "read raw directory").Fatal().Build()
	}
	if len(entries) == 0 {
		return nil, nil, errors.ValidationError("raw directory is empty").Build()
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = true
		}
	}

	var items []Item
	var problems []FileError

	for _, name := range coverCandidates {
		if !names[name] {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "read cover").Fatal().Build()
		}
		items = append(items, &Cover{Name: name, Data: data})
		break
	}

	if names[ForewordFile] {
		data, err := fs.ReadFile(fsys, ForewordFile)
		if err != nil {
			return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "read foreword").Fatal().Build()
		}
		info, perr := ParseForeword(data)
		if perr != nil {
			problems = append(problems, FileError{Name: ForewordFile, Err: perr})
		} else {
			items = append(items, info)
		}
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := ChapterIDFromName(e.Name())
		if !ok {
			if e.Name() != ForewordFile && !isCoverName(e.Name()) {
				slog.Debug("Ignoring file outside raw directory contract", logfields.File(e.Name()))
			}
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "read chapter").
				Fatal().
				WithContext("file", e.Name()).
				Build()
		}
		ch, perr := ParseChapter(id, data)
		if perr != nil {
			problems = append(problems, FileError{Name: e.Name(), ChapterID: id, Err: perr})
			continue
		}
		items = append(items, ch)
	}

	n, err := Assemble(items)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryInternal, "assemble novel").Fatal().Build()
	}
	return n, problems, nil
}

// ChapterIDFromName parses "<id>.txt" where id is a canonical positive
// integer. "01.txt", "0.txt" and "-3.txt" are not chapter files.
func ChapterIDFromName(name string) (int, bool) {
	stem, ok := strings.CutSuffix(name, chapterExt)
	if !ok || stem == "" {
		return 0, false
	}
	id, err := strconv.Atoi(stem)
	if err != nil || id < 1 || strconv.Itoa(id) != stem {
		return 0, false
	}
	return id, true
}

// ChapterFileName is the inverse of ChapterIDFromName.
func ChapterFileName(id int) string {
	return strconv.Itoa(id) + chapterExt
}

// ParseChapter splits a chapter file into its title line and body lines.
func ParseChapter(id int, data []byte) (*Chapter, error) {
	lines := SplitLines(data)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, errors.StructuralMismatchError("chapter file has no title line").
			WithContext("chapter_id", id).
			Build()
	}
	if len(lines) == 1 {
		return nil, errors.StructuralMismatchError("chapter file has no body after its title line").
			WithContext("chapter_id", id).
			Build()
	}
	return &Chapter{
		ID:         id,
		Title:      strings.TrimSpace(lines[0]),
		Paragraphs: lines[1:],
	}, nil
}

// ParseForeword reads the four metadata lines and the foreword paragraphs.
func ParseForeword(data []byte) (*Info, error) {
	lines := SplitLines(data)
	if len(lines) < forewordHeaderLines {
		return nil, errors.StructuralMismatchError("foreword needs title, author, source URL and types lines").
			WithContext("lines", len(lines)).
			Build()
	}
	return &Info{
		Title:     strings.TrimSpace(lines[0]),
		Author:    strings.TrimSpace(lines[1]),
		SourceURL: strings.TrimSpace(lines[2]),
		Types:     strings.TrimSpace(lines[3]),
		Foreword:  lines[forewordHeaderLines:],
	}, nil
}

// SplitLines splits on \n, \r\n and \r. A trailing line break does not
// produce an empty last line, and a UTF-8 BOM is dropped.
func SplitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(data) == 0 {
		return nil
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// IsContractFile reports whether name is one of the files a raw directory
// contract reads.
func IsContractFile(name string) bool {
	if _, ok := ChapterIDFromName(name); ok {
		return true
	}
	return name == ForewordFile || isCoverName(name)
}

func isCoverName(name string) bool {
	for _, c := range coverCandidates {
		if c == name {
			return true
		}
	}
	return false
}
