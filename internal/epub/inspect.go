package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

// maxEntrySize bounds a single decompressed entry while inspecting.
const maxEntrySize int64 = 256 << 20

// Inspection is what Inspect found in an archive. Sequences hold archive
// paths of the referenced documents, in order.
type Inspection struct {
	Entries     []string
	PackagePath string
	Title       string
	Identifier  string
	Spine       []string
	NCX         []string
	Nav         []string
}

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Titles      []string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Identifiers []string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type ncxNavPoint struct {
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

type ncxDocument struct {
	XMLName   xml.Name      `xml:"ncx"`
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

// InspectFile opens an archive on disk and inspects it.
func InspectFile(name string) (*Inspection, error) {
	// #nosec G304 -- inspecting a user-named archive is the purpose.
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "archive not found").Fatal().WithContext("path", name).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read archive").Fatal().WithContext("path", name).Build()
	}
	return Inspect(bytes.NewReader(data), int64(len(data)))
}

// Inspect reads an archive and checks that the mimetype entry comes first,
// is stored and holds the exact media type; that container.xml points at a
// package document; and that the OPF spine, the NCX navMap and the nav.xhtml
// table of contents list the same documents in the same order.
func Inspect(r io.ReaderAt, size int64) (*Inspection, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPackaging, "not a zip archive").Fatal().Build()
	}
	if len(zr.File) == 0 {
		return nil, errors.PackagingError("archive is empty").Build()
	}

	in := &Inspection{}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		in.Entries = append(in.Entries, f.Name)
		files[f.Name] = f
	}

	first := zr.File[0]
	if first.Name != MimeTypePath {
		return nil, errors.PackagingError("mimetype is not the first entry").WithContext("first", first.Name).Build()
	}
	if first.Method != zip.Store {
		return nil, errors.PackagingError("mimetype entry is compressed").Build()
	}
	mt, err := readEntry(first)
	if err != nil {
		return nil, err
	}
	if string(mt) != MimeType {
		return nil, errors.PackagingError("mimetype entry has wrong content").WithContext("content", string(mt)).Build()
	}

	opfPath, err := rootFile(files)
	if err != nil {
		return nil, err
	}
	in.PackagePath = opfPath

	opfFile, ok := files[opfPath]
	if !ok {
		return nil, errors.PackagingError("package document missing").WithContext("path", opfPath).Build()
	}
	data, err := readEntry(opfFile)
	if err != nil {
		return nil, err
	}
	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryPackaging, "parse package document").Fatal().Build()
	}
	if len(pkg.Metadata.Titles) > 0 {
		in.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	if len(pkg.Metadata.Identifiers) > 0 {
		in.Identifier = strings.TrimSpace(pkg.Metadata.Identifiers[0])
	}

	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	navPath := ""
	for _, it := range pkg.Manifest.Items {
		resolved := resolve(opfPath, it.Href)
		if _, ok := files[resolved]; !ok {
			return nil, errors.PackagingError("manifest item missing from archive").WithContext("href", it.Href).Build()
		}
		hrefByID[it.ID] = resolved
		if slices.Contains(strings.Fields(it.Properties), "nav") {
			navPath = resolved
		}
	}
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			return nil, errors.PackagingError("spine references unknown manifest id").WithContext("idref", ref.IDRef).Build()
		}
		in.Spine = append(in.Spine, href)
	}
	if len(in.Spine) == 0 {
		return nil, errors.PackagingError("spine is empty").Build()
	}

	ncxPath, ok := hrefByID[pkg.Spine.Toc]
	if !ok {
		return nil, errors.PackagingError("spine has no toc reference").Build()
	}
	if in.NCX, err = readNCX(files[ncxPath], ncxPath); err != nil {
		return nil, err
	}
	if navPath == "" {
		return nil, errors.PackagingError("manifest has no nav document").Build()
	}
	if in.Nav, err = readNav(files[navPath], navPath); err != nil {
		return nil, err
	}

	if !slices.Equal(in.Spine, in.NCX) {
		return in, orderMismatch("ncx", in.Spine, in.NCX)
	}
	if !slices.Equal(in.Spine, in.Nav) {
		return in, orderMismatch("nav", in.Spine, in.Nav)
	}
	return in, nil
}

func orderMismatch(what string, spine, other []string) error {
	return errors.PackagingError("reading order differs from spine").
		WithContext("document", what).
		WithContext("spine", strings.Join(spine, ",")).
		WithContext(what, strings.Join(other, ",")).
		Build()
}

func rootFile(files map[string]*zip.File) (string, error) {
	f, ok := files[ContainerPath]
	if !ok {
		return "", errors.PackagingError("container.xml missing").Build()
	}
	data, err := readEntry(f)
	if err != nil {
		return "", err
	}
	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", errors.WrapError(err, errors.CategoryPackaging, "parse container.xml").Fatal().Build()
	}
	for _, rf := range c.RootFiles {
		if p := strings.TrimSpace(rf.FullPath); p != "" {
			return p, nil
		}
	}
	return "", errors.PackagingError("container.xml has no rootfile").Build()
}

func readNCX(f *zip.File, ncxPath string) ([]string, error) {
	if f == nil {
		return nil, errors.PackagingError("ncx missing").WithContext("path", ncxPath).Build()
	}
	data, err := readEntry(f)
	if err != nil {
		return nil, err
	}
	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryPackaging, "parse ncx").Fatal().Build()
	}
	var out []string
	var walk func([]ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, np := range points {
			out = append(out, resolve(ncxPath, np.Content.Src))
			walk(np.Children)
		}
	}
	walk(doc.NavPoints)
	return out, nil
}

func readNav(f *zip.File, navPath string) ([]string, error) {
	data, err := readEntry(f)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPackaging, "parse nav document").Fatal().Build()
	}
	toc := findNav(doc, "toc")
	if toc == nil {
		return nil, errors.PackagingError("nav document has no toc").Build()
	}
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); href != "" {
				out = append(out, resolve(navPath, href))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(toc)
	return out, nil
}

func findNav(n *html.Node, epubType string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "nav" && slices.Contains(strings.Fields(attr(n, "epub:type")), epubType) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNav(c, epubType); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolve turns href, relative to the entry base, into an archive path.
// Fragments are dropped.
func resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	return path.Clean(path.Join(path.Dir(base), href))
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(maxEntrySize) {
		return nil, errors.PackagingError("archive entry too large").WithContext("path", f.Name).Build()
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPackaging, fmt.Sprintf("open %s", f.Name)).Fatal().Build()
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPackaging, fmt.Sprintf("read %s", f.Name)).Fatal().Build()
	}
	if int64(len(data)) > maxEntrySize {
		return nil, errors.PackagingError("archive entry too large").WithContext("path", f.Name).Build()
	}
	return data, nil
}
