package novel

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func TestReadRaw(t *testing.T) {
	fsys := fstest.MapFS{
		"cover.jpg":    &fstest.MapFile{Data: []byte{0xff, 0xd8, 0xff}},
		"foreword.txt": file("Sample Title\nAuthor A\nhttp://example.test\nFantasy\nForeword line one.\n"),
		"1.txt":        file("Chapter One\nĐây là một\ncâu rất dài."),
		"10.txt":       file("Chapter Ten\r\nBody.\r\n"),
		"2.txt":        file("Chapter Two\nBody two."),
		"notes.md":     file("ignored"),
		"01.txt":       file("not canonical"),
	}

	n, problems, err := ReadRaw(fsys)
	require.NoError(t, err)
	require.Empty(t, problems)

	require.NotNil(t, n.Cover)
	require.Equal(t, "cover.jpg", n.Cover.Name)

	require.NotNil(t, n.Info)
	require.Equal(t, "Sample Title", n.Info.Title)
	require.Equal(t, "Author A", n.Info.Author)
	require.Equal(t, "http://example.test", n.Info.SourceURL)
	require.Equal(t, "Fantasy", n.Info.Types)
	require.Equal(t, []string{"Foreword line one."}, n.Info.Foreword)

	require.Equal(t, []int{1, 2, 10}, n.ChapterIDs())
	require.Equal(t, "Chapter One", n.Chapters[1].Title)
	require.Equal(t, []string{"Đây là một", "câu rất dài."}, n.Chapters[1].Paragraphs)
	require.Equal(t, []string{"Body."}, n.Chapters[10].Paragraphs)
}

func TestReadRawReportsMalformedFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"foreword.txt": file("Only title\nAuthor"),
		"3.txt":        file("Title without body"),
		"4.txt":        file(""),
		"5.txt":        file("Fine\nBody."),
	}

	n, problems, err := ReadRaw(fsys)
	require.NoError(t, err)
	require.Nil(t, n.Info)
	require.Equal(t, []int{5}, n.ChapterIDs())
	require.Len(t, problems, 3)
	for _, p := range problems {
		require.True(t, errors.HasCategory(p.Err, errors.CategoryStructure), "%s: %v", p.Name, p.Err)
	}
}

func TestReadRawWithoutChaptersIsValid(t *testing.T) {
	n, problems, err := ReadRaw(fstest.MapFS{
		"foreword.txt": file("T\nA\nU\nTypes"),
	})
	require.NoError(t, err)
	require.Empty(t, problems)
	require.Empty(t, n.Chapters)
	require.Empty(t, n.Info.Foreword)
}

func TestReadRawEmptyDirectory(t *testing.T) {
	_, _, err := ReadRaw(fstest.MapFS{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestReadRawDirMissing(t *testing.T) {
	_, _, err := ReadRawDir(filepath.Join(t.TempDir(), "nope"))
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestChapterIDFromName(t *testing.T) {
	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{"1.txt", 1, true},
		{"120.txt", 120, true},
		{"0.txt", 0, false},
		{"01.txt", 0, false},
		{"-2.txt", 0, false},
		{"+2.txt", 0, false},
		{"a1.txt", 0, false},
		{"1.xhtml", 0, false},
		{".txt", 0, false},
		{"foreword.txt", 0, false},
	}
	for _, tt := range tests {
		id, ok := ChapterIDFromName(tt.name)
		require.Equal(t, tt.ok, ok, tt.name)
		require.Equal(t, tt.id, id, tt.name)
	}
	require.Equal(t, "42.txt", ChapterFileName(42))

	require.True(t, IsContractFile("3.txt"))
	require.True(t, IsContractFile("foreword.txt"))
	require.True(t, IsContractFile("cover.png"))
	require.False(t, IsContractFile("novel.epub"))
	require.False(t, IsContractFile("03.txt"))
}

func TestSplitLines(t *testing.T) {
	require.Nil(t, SplitLines(nil))
	require.Equal(t, []string{"a", "b"}, SplitLines([]byte("a\r\nb\r\n")))
	require.Equal(t, []string{"a", "", "b"}, SplitLines([]byte("a\n\nb")))
	require.Equal(t, []string{"a", "b"}, SplitLines([]byte("\xef\xbb\xbfa\rb")))
}

func TestWriteTextRoundTrip(t *testing.T) {
	n := New()
	n.Info = &Info{Title: "T", Author: "A", SourceURL: "U", Types: "X,Y", Foreword: []string{"F."}}
	n.Cover = &Cover{Name: "cover.jpg", Data: []byte{1, 2, 3}}
	n.Chapters[2] = &Chapter{ID: 2, Title: "Two", Paragraphs: []string{"P1.", "P2."}}
	n.Chapters[10] = &Chapter{ID: 10, Title: "Ten", Paragraphs: []string{"P."}}

	dir := t.TempDir()
	written, err := WriteText(dir, n)
	require.NoError(t, err)
	require.Equal(t, []string{"cover.jpg", "foreword.txt", "2.txt", "10.txt"}, written)

	data, err := os.ReadFile(filepath.Join(dir, "2.txt"))
	require.NoError(t, err)
	require.Equal(t, "Two\nP1.\nP2.", string(data))

	back, problems, err := ReadRawDir(dir)
	require.NoError(t, err)
	require.Empty(t, problems)
	require.Equal(t, n.Info, back.Info)
	require.Equal(t, n.Chapters, back.Chapters)
	require.Equal(t, n.Cover, back.Cover)
}
