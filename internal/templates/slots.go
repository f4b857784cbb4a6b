package templates

import "html"

// ChapterSlots fills OEBPS/Text/chapter.xhtml.
type ChapterSlots struct {
	Lang  string
	Title string
	// Paragraphs is markup built with ParagraphMarkup.
	Paragraphs string
}

// InfoSlots fills OEBPS/Text/foreword.xhtml.
type InfoSlots struct {
	Lang       string
	Heading    string
	Title      string
	Author     string
	Types      string
	SourceURL  string
	Paragraphs string
}

// CoverSlots fills OEBPS/Text/cover.xhtml.
type CoverSlots struct {
	Lang   string
	Title  string
	Href   string
	Width  int
	Height int
}

// NavEntry is one line of the navigation document.
type NavEntry struct {
	Href  string
	Title string
}

// NavSlots fills OEBPS/Text/nav.xhtml.
type NavSlots struct {
	Lang    string
	Title   string
	Entries []NavEntry
}

// ManifestEntry is one OPF manifest item.
type ManifestEntry struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// SpineRef is one OPF itemref.
type SpineRef struct {
	IDRef  string
	Linear bool
}

// PackageSlots fills OEBPS/content.opf.
type PackageSlots struct {
	Lang         string
	Identifier   string
	Title        string
	Author       string
	Publisher    string
	Date         string
	Modified     string
	Subjects     []string
	Source       string
	CoverImageID string
	Generator    string
	TocID        string
	Manifest     []ManifestEntry
	Spine        []SpineRef
}

// NavPoint is one NCX navPoint.
type NavPoint struct {
	ID        string
	PlayOrder int
	Label     string
	Src       string
}

// NCXSlots fills OEBPS/toc.ncx.
type NCXSlots struct {
	Lang       string
	Identifier string
	Title      string
	NavPoints  []NavPoint
}

var esc = html.EscapeString

func (s ChapterSlots) escaped() ChapterSlots {
	s.Lang = esc(s.Lang)
	s.Title = esc(s.Title)
	return s
}

func (s InfoSlots) escaped() InfoSlots {
	s.Lang = esc(s.Lang)
	s.Heading = esc(s.Heading)
	s.Title = esc(s.Title)
	s.Author = esc(s.Author)
	s.Types = esc(s.Types)
	s.SourceURL = esc(s.SourceURL)
	return s
}

func (s CoverSlots) escaped() CoverSlots {
	s.Lang = esc(s.Lang)
	s.Title = esc(s.Title)
	s.Href = esc(s.Href)
	return s
}

func (s NavSlots) escaped() NavSlots {
	s.Lang = esc(s.Lang)
	s.Title = esc(s.Title)
	entries := make([]NavEntry, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = NavEntry{Href: esc(e.Href), Title: esc(e.Title)}
	}
	s.Entries = entries
	return s
}

func (s PackageSlots) escaped() PackageSlots {
	s.Lang = esc(s.Lang)
	s.Identifier = esc(s.Identifier)
	s.Title = esc(s.Title)
	s.Author = esc(s.Author)
	s.Publisher = esc(s.Publisher)
	s.Source = esc(s.Source)
	s.Generator = esc(s.Generator)
	subjects := make([]string, len(s.Subjects))
	for i, v := range s.Subjects {
		subjects[i] = esc(v)
	}
	s.Subjects = subjects
	manifest := make([]ManifestEntry, len(s.Manifest))
	for i, m := range s.Manifest {
		manifest[i] = ManifestEntry{
			ID:         esc(m.ID),
			Href:       esc(m.Href),
			MediaType:  esc(m.MediaType),
			Properties: esc(m.Properties),
		}
	}
	s.Manifest = manifest
	spine := make([]SpineRef, len(s.Spine))
	for i, r := range s.Spine {
		spine[i] = SpineRef{IDRef: esc(r.IDRef), Linear: r.Linear}
	}
	s.Spine = spine
	return s
}

func (s NCXSlots) escaped() NCXSlots {
	s.Lang = esc(s.Lang)
	s.Identifier = esc(s.Identifier)
	s.Title = esc(s.Title)
	points := make([]NavPoint, len(s.NavPoints))
	for i, p := range s.NavPoints {
		points[i] = NavPoint{ID: esc(p.ID), PlayOrder: p.PlayOrder, Label: esc(p.Label), Src: esc(p.Src)}
	}
	s.NavPoints = points
	return s
}
