package templates

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"text/template"
	"text/template/parse"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
)

// Template file paths, relative to the root of a template set.
const (
	ContainerFile  = "META-INF/container.xml"
	PackageFile    = "OEBPS/content.opf"
	NCXFile        = "OEBPS/toc.ncx"
	StylesheetFile = "OEBPS/Styles/stylesheet.css"
	ChapterFile    = "OEBPS/Text/chapter.xhtml"
	ForewordFile   = "OEBPS/Text/foreword.xhtml"
	CoverFile      = "OEBPS/Text/cover.xhtml"
	NavFile        = "OEBPS/Text/nav.xhtml"
)

//go:embed all:assets
var embedded embed.FS

// DefaultFS returns the embedded default template set.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(fmt.Sprintf("templates: embedded assets: %v", err))
	}
	return sub
}

// templateDef describes one executable template: its file, the slot names its
// parse tree must reference and sample data used for a trial execution.
type templateDef struct {
	file     string
	required []string
	sample   any
}

var templateDefs = []templateDef{
	{
		file:     ChapterFile,
		required: []string{"Title", "Paragraphs"},
		sample:   ChapterSlots{Lang: "en", Title: "t", Paragraphs: "<p>p</p>"},
	},
	{
		file:     ForewordFile,
		required: []string{"Heading", "Title", "Author", "Types", "SourceURL", "Paragraphs"},
		sample:   InfoSlots{Lang: "en", Heading: "h", Title: "t", Author: "a", Types: "x", SourceURL: "u", Paragraphs: "<p>p</p>"},
	},
	{
		file:     CoverFile,
		required: []string{"Href", "Width", "Height"},
		sample:   CoverSlots{Lang: "en", Title: "t", Href: "../Images/cover.jpg", Width: 1, Height: 1},
	},
	{
		file:     NavFile,
		required: []string{"Title", "Entries", "Href"},
		sample:   NavSlots{Lang: "en", Title: "t", Entries: []NavEntry{{Href: "1.xhtml", Title: "1"}}},
	},
	{
		file:     PackageFile,
		required: []string{"Identifier", "Title", "Lang", "Modified", "Manifest", "ID", "Href", "MediaType", "Spine", "IDRef"},
		sample: PackageSlots{
			Lang: "en", Identifier: "id", Title: "t", Author: "a", Publisher: "p", Date: "2000-01-01",
			Modified: "2000-01-01T00:00:00Z", Subjects: []string{"s"}, Source: "u", CoverImageID: "cover-image",
			Generator: "g", TocID: "ncx",
			Manifest: []ManifestEntry{{ID: "c1", Href: "Text/1.xhtml", MediaType: "application/xhtml+xml", Properties: "nav"}},
			Spine:    []SpineRef{{IDRef: "c1", Linear: true}, {IDRef: "c2"}},
		},
	},
	{
		file:     NCXFile,
		required: []string{"Identifier", "Title", "NavPoints", "PlayOrder", "Label", "Src"},
		sample: NCXSlots{
			Lang: "en", Identifier: "id", Title: "t",
			NavPoints: []NavPoint{{ID: "c1", PlayOrder: 1, Label: "1", Src: "Text/1.xhtml"}},
		},
	},
}

var staticFiles = []string{ContainerFile, StylesheetFile}

// Set is a loaded and checked template set.
type Set struct {
	templates map[string]*template.Template
	static    map[string][]byte
}

// LoadDefault loads the embedded template set.
func LoadDefault() (*Set, error) {
	return Load(DefaultFS())
}

// LoadDir loads a template set from dir, or the embedded set when dir is
// empty.
func LoadDir(dir string) (*Set, error) {
	if dir == "" {
		return LoadDefault()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, ferrors.MissingTemplateError("template directory not found").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.TemplateError("template path is not a directory").WithContext("path", dir).Build()
	}
	return Load(os.DirFS(dir))
}

// Load reads and checks every template in fsys.
func Load(fsys fs.FS) (*Set, error) {
	s := &Set{
		templates: make(map[string]*template.Template, len(templateDefs)),
		static:    make(map[string][]byte, len(staticFiles)),
	}
	for _, name := range staticFiles {
		data, err := readTemplateFile(fsys, name)
		if err != nil {
			return nil, err
		}
		s.static[name] = data
	}
	for _, sp := range templateDefs {
		tpl, err := loadTemplate(fsys, sp)
		if err != nil {
			return nil, err
		}
		s.templates[sp.file] = tpl
	}
	return s, nil
}

func readTemplateFile(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.MissingTemplateError("template file missing").WithContext("file", name).Build()
		}
		return nil, ferrors.TemplateError("read template file").WithCause(err).WithContext("file", name).Build()
	}
	return data, nil
}

func loadTemplate(fsys fs.FS, sp templateDef) (*template.Template, error) {
	data, err := readTemplateFile(fsys, sp.file)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(sp.file).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, ferrors.TemplateError("parse template").WithCause(err).WithContext("file", sp.file).Build()
	}
	referenced := fieldNames(tpl.Tree.Root)
	for _, slot := range sp.required {
		if !slices.Contains(referenced, slot) {
			return nil, ferrors.TemplateError("template does not reference required slot").
				WithContext("file", sp.file).
				WithContext("slot", slot).
				Build()
		}
	}
	if err := tpl.Execute(io.Discard, sp.sample); err != nil {
		return nil, ferrors.TemplateError("template does not execute").WithCause(err).WithContext("file", sp.file).Build()
	}
	return tpl, nil
}

// fieldNames collects every field identifier referenced in a parse tree.
func fieldNames(node parse.Node) []string {
	var out []string
	var walk func(parse.Node)
	walk = func(n parse.Node) {
		switch v := n.(type) {
		case nil:
		case *parse.ListNode:
			if v == nil {
				return
			}
			for _, c := range v.Nodes {
				walk(c)
			}
		case *parse.ActionNode:
			walk(v.Pipe)
		case *parse.PipeNode:
			if v == nil {
				return
			}
			for _, c := range v.Cmds {
				walk(c)
			}
		case *parse.CommandNode:
			for _, a := range v.Args {
				walk(a)
			}
		case *parse.FieldNode:
			out = append(out, v.Ident...)
		case *parse.ChainNode:
			out = append(out, v.Field...)
			walk(v.Node)
		case *parse.IfNode:
			walk(v.Pipe)
			walk(v.List)
			walk(v.ElseList)
		case *parse.RangeNode:
			walk(v.Pipe)
			walk(v.List)
			walk(v.ElseList)
		case *parse.WithNode:
			walk(v.Pipe)
			walk(v.List)
			walk(v.ElseList)
		case *parse.TemplateNode:
			walk(v.Pipe)
		}
	}
	walk(node)
	return out
}

// Container returns the static META-INF/container.xml content.
func (s *Set) Container() []byte { return s.static[ContainerFile] }

// Stylesheet returns the static stylesheet content.
func (s *Set) Stylesheet() []byte { return s.static[StylesheetFile] }
