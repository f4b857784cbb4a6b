package epub

import (
	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

// Media types used in the package document.
const (
	MimeType       = "application/epub+zip"
	MediaTypeXHTML = "application/xhtml+xml"
	MediaTypeNCX   = "application/x-dtbncx+xml"
	MediaTypeCSS   = "text/css"
)

// Fixed manifest ids.
const (
	idNCX        = "ncx"
	idStylesheet = "style"
	idNav        = "nav"
	idCover      = "cover"
	idCoverImage = "cover-image"
	idForeword   = "foreword"
)

// ManifestItem is one entry of the OPF manifest. Href is relative to the
// package document.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// manifest keeps items in insertion order and rejects duplicate ids.
type manifest struct {
	items []ManifestItem
	ids   map[string]struct{}
}

func newManifest() *manifest {
	return &manifest{ids: make(map[string]struct{})}
}

func (m *manifest) add(item ManifestItem) error {
	if _, dup := m.ids[item.ID]; dup {
		return errors.PackagingError("duplicate manifest id").WithContext("id", item.ID).Build()
	}
	m.ids[item.ID] = struct{}{}
	m.items = append(m.items, item)
	return nil
}
