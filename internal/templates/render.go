package templates

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/imageinfo"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
)

// Generated page names under OEBPS/Text.
const (
	ForewordPage = "foreword.xhtml"
	CoverPage    = "cover.xhtml"
	NavPage      = "nav.xhtml"
)

// Document is a rendered content page.
type Document struct {
	Kind      novel.ItemKind
	Name      string
	ChapterID int // 0 unless Kind is KindChapter
	Title     string
	Content   []byte
}

// ChapterPage returns the page name of a chapter.
func ChapterPage(id int) string {
	return strconv.Itoa(id) + ".xhtml"
}

// ParagraphMarkup escapes each paragraph, wraps it in <p> and joins the
// results with a blank line.
func ParagraphMarkup(paragraphs []string) string {
	parts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		parts[i] = "<p>" + html.EscapeString(p) + "</p>"
	}
	return strings.Join(parts, "\n\n")
}

func (s *Set) execute(file string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates[file].Execute(&buf, data); err != nil {
		return nil, ferrors.TemplateError("render template").WithCause(err).WithContext("file", file).Build()
	}
	return buf.Bytes(), nil
}

// RenderChapter renders a chapter page. Title and Lang are escaped;
// Paragraphs must already be markup.
func (s *Set) RenderChapter(slots ChapterSlots) ([]byte, error) {
	return s.execute(ChapterFile, slots.escaped())
}

// RenderInfo renders the foreword page.
func (s *Set) RenderInfo(slots InfoSlots) ([]byte, error) {
	return s.execute(ForewordFile, slots.escaped())
}

// RenderCover renders the cover page.
func (s *Set) RenderCover(slots CoverSlots) ([]byte, error) {
	return s.execute(CoverFile, slots.escaped())
}

// RenderNav renders the EPUB 3 navigation document.
func (s *Set) RenderNav(slots NavSlots) ([]byte, error) {
	return s.execute(NavFile, slots.escaped())
}

// RenderOPF renders the package document.
func (s *Set) RenderOPF(slots PackageSlots) ([]byte, error) {
	return s.execute(PackageFile, slots.escaped())
}

// RenderNCX renders the NCX table of contents.
func (s *Set) RenderNCX(slots NCXSlots) ([]byte, error) {
	return s.execute(NCXFile, slots.escaped())
}

// Renderer turns novel items into content pages for one language.
type Renderer struct {
	set    *Set
	lang   string
	labels Labels
}

// NewRenderer returns a renderer using set, writing lang into each page.
func NewRenderer(set *Set, lang string, labels Labels) *Renderer {
	return &Renderer{set: set, lang: lang, labels: labels}
}

// Labels returns the labels the renderer was built with.
func (r *Renderer) Labels() Labels { return r.labels }

// Chapter renders one chapter. A chapter without paragraphs is a structural
// mismatch and produces no document.
func (r *Renderer) Chapter(c *novel.Chapter) (Document, error) {
	if len(c.Paragraphs) == 0 {
		return Document{}, ferrors.StructuralMismatchError("chapter has no paragraphs").
			WithContext("chapter_id", c.ID).
			Build()
	}
	content, err := r.set.RenderChapter(ChapterSlots{
		Lang:       r.lang,
		Title:      c.Title,
		Paragraphs: ParagraphMarkup(c.Paragraphs),
	})
	if err != nil {
		return Document{}, err
	}
	return Document{
		Kind:      novel.KindChapter,
		Name:      ChapterPage(c.ID),
		ChapterID: c.ID,
		Title:     c.Title,
		Content:   content,
	}, nil
}

// Info renders the foreword page.
func (r *Renderer) Info(info *novel.Info) (Document, error) {
	content, err := r.set.RenderInfo(InfoSlots{
		Lang:       r.lang,
		Heading:    r.labels.Info,
		Title:      info.Title,
		Author:     info.Author,
		Types:      info.Types,
		SourceURL:  info.SourceURL,
		Paragraphs: ParagraphMarkup(info.Foreword),
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Kind: novel.KindInfo, Name: ForewordPage, Title: r.labels.Foreword, Content: content}, nil
}

// Cover renders the cover page around an inspected image.
func (r *Renderer) Cover(img *imageinfo.Image) (Document, error) {
	content, err := r.set.RenderCover(CoverSlots{
		Lang:   r.lang,
		Title:  r.labels.Cover,
		Href:   "../Images/" + img.FileName(),
		Width:  img.Width,
		Height: img.Height,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Kind: novel.KindCover, Name: CoverPage, Title: r.labels.Cover, Content: content}, nil
}
