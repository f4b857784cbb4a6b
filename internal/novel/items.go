package novel

import "fmt"

// ItemKind enumerates the closed set of things a raw directory can hold.
type ItemKind int

const (
	KindInfo ItemKind = iota + 1
	KindChapter
	KindCover
)

func (k ItemKind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindChapter:
		return "chapter"
	case KindCover:
		return "cover"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Item is one of *Info, *Chapter or *Cover. The interface is sealed so type
// switches over it can be exhaustive.
type Item interface {
	Kind() ItemKind
	sealed()
}

// Info is the novel-level metadata and foreword read from foreword.txt.
type Info struct {
	Title     string
	Author    string
	SourceURL string
	Types     string
	Foreword  []string
}

// Chapter is a single numbered chapter.
type Chapter struct {
	ID         int
	Title      string
	Paragraphs []string
}

// Cover is the raw cover image.
type Cover struct {
	Name string
	Data []byte
}

func (*Info) Kind() ItemKind    { return KindInfo }
func (*Chapter) Kind() ItemKind { return KindChapter }
func (*Cover) Kind() ItemKind   { return KindCover }

func (*Info) sealed()    {}
func (*Chapter) sealed() {}
func (*Cover) sealed()   {}

// Clone returns a deep copy of the chapter.
func (c *Chapter) Clone() *Chapter {
	if c == nil {
		return nil
	}
	out := *c
	out.Paragraphs = append([]string(nil), c.Paragraphs...)
	return &out
}

// Clone returns a deep copy of the info block.
func (i *Info) Clone() *Info {
	if i == nil {
		return nil
	}
	out := *i
	out.Foreword = append([]string(nil), i.Foreword...)
	return &out
}
