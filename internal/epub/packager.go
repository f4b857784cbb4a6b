package epub

import (
	"archive/zip"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/imageinfo"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/slug"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
)

// Archive layout.
const (
	ContainerPath  = "META-INF/container.xml"
	contentDir     = "OEBPS/"
	PackagePath    = contentDir + "content.opf"
	NCXPath        = contentDir + "toc.ncx"
	stylesheetHref = "Styles/stylesheet.css"
	textDir        = "Text/"
	imageDir       = "Images/"
)

// Date layouts written into the package document.
const (
	DateLayout     = "2006-01-02"
	ModifiedLayout = "2006-01-02T15:04:05Z"
)

// DefaultLang is written when no language is given.
const DefaultLang = "en"

// fallbackSlug names the archive when the title has no usable characters.
const fallbackSlug = "novel"

// Metadata describes the book as a whole.
type Metadata struct {
	Title     string
	Author    string
	Lang      string
	Publisher string
	Source    string
	Subjects  []string
	Generator string
	Labels    templates.Labels
}

// Packager builds archives from rendered documents.
type Packager struct {
	set      *templates.Set
	newID    func() string
	now      func() time.Time
	slugOpts slug.Options
}

// Option configures a Packager.
type Option func(*Packager)

// WithIDGenerator replaces the random UUID used as book identifier.
func WithIDGenerator(fn func() string) Option {
	return func(p *Packager) { p.newID = fn }
}

// WithClock replaces the clock used for dc:date and dcterms:modified.
func WithClock(fn func() time.Time) Option {
	return func(p *Packager) { p.now = fn }
}

// WithSlugOptions controls how the archive file name is derived.
func WithSlugOptions(opts slug.Options) Option {
	return func(p *Packager) { p.slugOpts = opts }
}

// NewPackager returns a packager rendering its package documents with set.
func NewPackager(set *templates.Set, opts ...Option) *Packager {
	p := &Packager{
		set:      set,
		newID:    uuid.NewString,
		now:      time.Now,
		slugOpts: slug.Options{MaxLength: slug.DefaultMaxLength},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FileName returns the archive file name for a title.
func FileName(title string, opts slug.Options) string {
	s := slug.Make(title, opts)
	if s == "" {
		s = fallbackSlug
	}
	return s + ".epub"
}

// readingItem is one document in reading order.
type readingItem struct {
	id    string
	href  string // relative to the package document
	title string
}

// Package assembles docs and the optional cover image into an archive.
// Chapters are ordered by ascending numeric id regardless of their order in
// docs. The cover page, foreword page and navigation document come first.
func (p *Packager) Package(docs []templates.Document, cover *imageinfo.Image, meta Metadata) (*Archive, error) {
	var (
		coverDoc    *templates.Document
		forewordDoc *templates.Document
		chapters    []templates.Document
	)
	for i := range docs {
		d := &docs[i]
		switch d.Kind {
		case novel.KindCover:
			if coverDoc != nil {
				return nil, errors.PackagingError("more than one cover page").Build()
			}
			coverDoc = d
		case novel.KindInfo:
			if forewordDoc != nil {
				return nil, errors.PackagingError("more than one foreword page").Build()
			}
			forewordDoc = d
		case novel.KindChapter:
			if d.ChapterID < 1 {
				return nil, errors.PackagingError("chapter page without a positive id").WithContext("name", d.Name).Build()
			}
			chapters = append(chapters, *d)
		default:
			return nil, errors.InternalError("unknown document kind").WithContext("kind", d.Kind.String()).Build()
		}
	}
	if len(chapters) == 0 {
		return nil, errors.PackagingError("no chapters to package").Build()
	}
	if coverDoc != nil && cover == nil {
		return nil, errors.PackagingError("cover page without a cover image").Build()
	}
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].ChapterID < chapters[j].ChapterID })

	lang := meta.Lang
	if lang == "" {
		lang = DefaultLang
	}
	id := p.newID()
	now := p.now().UTC()

	m := newManifest()
	var order []readingItem
	entries := []Entry{
		{Path: MimeTypePath, Data: []byte(MimeType), Method: zip.Store},
		{Path: ContainerPath, Data: p.set.Container(), Method: zip.Deflate},
	}
	var pages []Entry

	if err := m.add(ManifestItem{ID: idNCX, Href: "toc.ncx", MediaType: MediaTypeNCX}); err != nil {
		return nil, err
	}
	if err := m.add(ManifestItem{ID: idStylesheet, Href: stylesheetHref, MediaType: MediaTypeCSS}); err != nil {
		return nil, err
	}

	coverImageID := ""
	if cover != nil {
		href := imageDir + cover.FileName()
		if err := m.add(ManifestItem{ID: idCoverImage, Href: href, MediaType: cover.MediaType(), Properties: "cover-image"}); err != nil {
			return nil, err
		}
		coverImageID = idCoverImage
		pages = append(pages, Entry{Path: contentDir + href, Data: cover.Data, Method: zip.Deflate})
	}
	if coverDoc != nil {
		href := textDir + coverDoc.Name
		if err := m.add(ManifestItem{ID: idCover, Href: href, MediaType: MediaTypeXHTML}); err != nil {
			return nil, err
		}
		order = append(order, readingItem{id: idCover, href: href, title: titleOr(coverDoc.Title, meta.Labels.Cover)})
		pages = append(pages, Entry{Path: contentDir + href, Data: coverDoc.Content, Method: zip.Deflate})
	}
	if forewordDoc != nil {
		href := textDir + forewordDoc.Name
		if err := m.add(ManifestItem{ID: idForeword, Href: href, MediaType: MediaTypeXHTML}); err != nil {
			return nil, err
		}
		order = append(order, readingItem{id: idForeword, href: href, title: titleOr(forewordDoc.Title, meta.Labels.Foreword)})
		pages = append(pages, Entry{Path: contentDir + href, Data: forewordDoc.Content, Method: zip.Deflate})
	}

	navHref := textDir + templates.NavPage
	if err := m.add(ManifestItem{ID: idNav, Href: navHref, MediaType: MediaTypeXHTML, Properties: "nav"}); err != nil {
		return nil, err
	}
	order = append(order, readingItem{id: idNav, href: navHref, title: titleOr(meta.Labels.Contents, "Contents")})

	for _, c := range chapters {
		href := textDir + c.Name
		itemID := "c" + strconv.Itoa(c.ChapterID)
		if err := m.add(ManifestItem{ID: itemID, Href: href, MediaType: MediaTypeXHTML}); err != nil {
			return nil, err
		}
		order = append(order, readingItem{id: itemID, href: href, title: titleOr(c.Title, strconv.Itoa(c.ChapterID))})
		pages = append(pages, Entry{Path: contentDir + href, Data: c.Content, Method: zip.Deflate})
	}

	title := titleOr(meta.Title, fallbackSlug)

	navEntries := make([]templates.NavEntry, len(order))
	navPoints := make([]templates.NavPoint, len(order))
	spine := make([]templates.SpineRef, len(order))
	for i, it := range order {
		// nav.xhtml sits in Text/ next to the pages it links.
		navEntries[i] = templates.NavEntry{Href: it.href[len(textDir):], Title: it.title}
		navPoints[i] = templates.NavPoint{ID: it.id, PlayOrder: i + 1, Label: it.title, Src: it.href}
		spine[i] = templates.SpineRef{IDRef: it.id, Linear: true}
	}

	nav, err := p.set.RenderNav(templates.NavSlots{Lang: lang, Title: titleOr(meta.Labels.Contents, "Contents"), Entries: navEntries})
	if err != nil {
		return nil, err
	}
	ncx, err := p.set.RenderNCX(templates.NCXSlots{Lang: lang, Identifier: id, Title: title, NavPoints: navPoints})
	if err != nil {
		return nil, err
	}

	manifestEntries := make([]templates.ManifestEntry, len(m.items))
	for i, it := range m.items {
		manifestEntries[i] = templates.ManifestEntry(it)
	}
	opf, err := p.set.RenderOPF(templates.PackageSlots{
		Lang:         lang,
		Identifier:   id,
		Title:        title,
		Author:       meta.Author,
		Publisher:    meta.Publisher,
		Date:         now.Format(DateLayout),
		Modified:     now.Format(ModifiedLayout),
		Subjects:     meta.Subjects,
		Source:       meta.Source,
		CoverImageID: coverImageID,
		Generator:    meta.Generator,
		TocID:        idNCX,
		Manifest:     manifestEntries,
		Spine:        spine,
	})
	if err != nil {
		return nil, err
	}

	entries = append(entries,
		Entry{Path: PackagePath, Data: opf, Method: zip.Deflate},
		Entry{Path: NCXPath, Data: ncx, Method: zip.Deflate},
		Entry{Path: contentDir + stylesheetHref, Data: p.set.Stylesheet(), Method: zip.Deflate},
		Entry{Path: contentDir + navHref, Data: nav, Method: zip.Deflate},
	)
	entries = append(entries, pages...)

	a := &Archive{
		Name:     FileName(meta.Title, p.slugOpts),
		Entries:  entries,
		Modified: now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func titleOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
