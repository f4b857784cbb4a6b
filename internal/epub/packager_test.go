package epub

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/imageinfo"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/slug"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
)

var fixedTime = time.Date(2024, 3, 9, 14, 30, 5, 0, time.FixedZone("ICT", 7*3600))

func newTestPackager(t *testing.T) (*Packager, *templates.Renderer) {
	t.Helper()
	set, err := templates.LoadDefault()
	require.NoError(t, err)
	p := NewPackager(set,
		WithIDGenerator(func() string { return "11111111-2222-3333-4444-555555555555" }),
		WithClock(func() time.Time { return fixedTime }),
	)
	return p, templates.NewRenderer(set, "vi", templates.LabelsFor("vi", nil))
}

func chapterDocs(t *testing.T, r *templates.Renderer, ids ...int) []templates.Document {
	t.Helper()
	docs := make([]templates.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := r.Chapter(&novel.Chapter{ID: id, Title: "Chương " + strconv.Itoa(id), Paragraphs: []string{"nội dung"}})
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	return docs
}

func pngCover(t *testing.T) *imageinfo.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 5))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	info, err := imageinfo.Inspect(buf.Bytes())
	require.NoError(t, err)
	return info
}

func TestPackageOrdersChaptersNumerically(t *testing.T) {
	p, r := newTestPackager(t)
	// Deliberately shuffled and with ids that sort differently as strings.
	docs := chapterDocs(t, r, 10, 2, 5, 1)

	a, err := p.Package(docs, nil, Metadata{Title: "Truyện", Lang: "vi", Labels: r.Labels()})
	require.NoError(t, err)

	data, err := a.Bytes()
	require.NoError(t, err)
	in, err := Inspect(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	want := []string{
		"OEBPS/Text/nav.xhtml",
		"OEBPS/Text/1.xhtml",
		"OEBPS/Text/2.xhtml",
		"OEBPS/Text/5.xhtml",
		"OEBPS/Text/10.xhtml",
	}
	assert.Equal(t, want, in.Spine)
	assert.Equal(t, want, in.NCX)
	assert.Equal(t, want, in.Nav)
	assert.Equal(t, "urn:uuid:11111111-2222-3333-4444-555555555555", in.Identifier)
	assert.Equal(t, "Truyện", in.Title)
}

func TestPackageMimetypeFirstAndStored(t *testing.T) {
	p, r := newTestPackager(t)
	a, err := p.Package(chapterDocs(t, r, 1), nil, Metadata{Title: "T"})
	require.NoError(t, err)

	data, err := a.Bytes()
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	first := zr.File[0]
	require.Equal(t, "mimetype", first.Name)
	require.Equal(t, zip.Store, first.Method)
	rc, err := first.Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "application/epub+zip", string(content))

	// The raw local header puts "mimetype" at byte 30.
	require.Equal(t, "mimetypeapplication/epub+zip", string(data[30:58]))

	for _, f := range zr.File[1:] {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
	}
}

func TestPackageWithCoverAndForeword(t *testing.T) {
	p, r := newTestPackager(t)
	cover := pngCover(t)
	coverDoc, err := r.Cover(cover)
	require.NoError(t, err)
	infoDoc, err := r.Info(&novel.Info{Title: "Tên truyện", Author: "Tác giả", SourceURL: "https://example.com", Types: "Tiên hiệp"})
	require.NoError(t, err)

	docs := append(chapterDocs(t, r, 3, 1), infoDoc, coverDoc)
	a, err := p.Package(docs, cover, Metadata{
		Title:     "Tên truyện",
		Author:    "Tác giả",
		Lang:      "vi",
		Publisher: "novelbuilder",
		Subjects:  []string{"Tiên hiệp"},
		Generator: "novelbuilder test",
		Labels:    r.Labels(),
	})
	require.NoError(t, err)
	assert.Equal(t, "ten-truyen.epub", a.Name)

	img, ok := a.Entry("OEBPS/Images/cover.png")
	require.True(t, ok)
	assert.Equal(t, cover.Data, img.Data)

	opf, ok := a.Entry(PackagePath)
	require.True(t, ok)
	s := string(opf.Data)
	assert.Contains(t, s, `<meta name="cover" content="cover-image"/>`)
	assert.Contains(t, s, `media-type="image/png" properties="cover-image"`)
	assert.Contains(t, s, "<dc:date>2024-03-09</dc:date>")
	assert.Contains(t, s, `<meta property="dcterms:modified">2024-03-09T07:30:05Z</meta>`)
	assert.Contains(t, s, "<dc:subject>Tiên hiệp</dc:subject>")
	assert.Contains(t, s, `<meta name="generator" content="novelbuilder test"/>`)

	data, err := a.Bytes()
	require.NoError(t, err)
	in, err := Inspect(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"OEBPS/Text/cover.xhtml",
		"OEBPS/Text/foreword.xhtml",
		"OEBPS/Text/nav.xhtml",
		"OEBPS/Text/1.xhtml",
		"OEBPS/Text/3.xhtml",
	}, in.Spine)
	assert.Equal(t, in.Spine, in.Nav)

	nav, ok := a.Entry("OEBPS/Text/nav.xhtml")
	require.True(t, ok)
	assert.Contains(t, string(nav.Data), "Mục lục")
}

func TestPackageEmptySpine(t *testing.T) {
	p, r := newTestPackager(t)
	infoDoc, err := r.Info(&novel.Info{Title: "T"})
	require.NoError(t, err)

	_, err = p.Package([]templates.Document{infoDoc}, nil, Metadata{Title: "T"})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryPackaging))
}

func TestPackageDuplicateChapterID(t *testing.T) {
	p, r := newTestPackager(t)
	docs := chapterDocs(t, r, 4, 4)

	_, err := p.Package(docs, nil, Metadata{Title: "T"})
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryPackaging, ce.Category())
	id, _ := ce.Context().GetString("id")
	require.Equal(t, "c4", id)
}

func TestPackageCoverPageWithoutImage(t *testing.T) {
	p, r := newTestPackager(t)
	coverDoc, err := r.Cover(pngCover(t))
	require.NoError(t, err)

	_, err = p.Package(append(chapterDocs(t, r, 1), coverDoc), nil, Metadata{Title: "T"})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryPackaging))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "novel.epub", FileName("", slug.Options{}))
	assert.Equal(t, "dou-po-cang-qiong.epub", FileName("斗破苍穹", slug.Options{MaxLength: slug.DefaultMaxLength}))
	assert.NotEqual(t, FileName("斗破苍穹", slug.Options{}), FileName("凡人修仙传", slug.Options{}))
	assert.Equal(t, "斗破苍穹.epub", FileName("斗破苍穹", slug.Options{AllowUnicode: true}))
}
