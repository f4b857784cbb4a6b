package novel

import (
	"fmt"
	"slices"
	"sort"
)

// Novel is a cover, an optional info block and a sparse set of chapters.
// The same shape is used before and after cleaning.
type Novel struct {
	Cover    *Cover
	Info     *Info
	Chapters map[int]*Chapter
}

// New returns an empty novel.
func New() *Novel {
	return &Novel{Chapters: make(map[int]*Chapter)}
}

// Assemble builds a novel from scanned items. Duplicate chapter ids, a second
// info block or a second cover are rejected.
func Assemble(items []Item) (*Novel, error) {
	n := New()
	for _, it := range items {
		switch v := it.(type) {
		case *Info:
			if n.Info != nil {
				return nil, fmt.Errorf("duplicate info item")
			}
			n.Info = v
		case *Chapter:
			if v.ID < 1 {
				return nil, fmt.Errorf("chapter id must be positive, got %d", v.ID)
			}
			if _, dup := n.Chapters[v.ID]; dup {
				return nil, fmt.Errorf("duplicate chapter id %d", v.ID)
			}
			n.Chapters[v.ID] = v
		case *Cover:
			if n.Cover != nil {
				return nil, fmt.Errorf("duplicate cover item")
			}
			n.Cover = v
		default:
			panic(fmt.Sprintf("novel: unhandled item type %T", it))
		}
	}
	return n, nil
}

// Items flattens the novel back into items: cover, info, then chapters in
// reading order.
func (n *Novel) Items() []Item {
	items := make([]Item, 0, len(n.Chapters)+2)
	if n.Cover != nil {
		items = append(items, n.Cover)
	}
	if n.Info != nil {
		items = append(items, n.Info)
	}
	for _, c := range n.Ordered() {
		items = append(items, c)
	}
	return items
}

// ChapterIDs returns the chapter ids in ascending numeric order.
func (n *Novel) ChapterIDs() []int {
	ids := make([]int, 0, len(n.Chapters))
	for id := range n.Chapters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Ordered returns the chapters in reading order.
func (n *Novel) Ordered() []*Chapter {
	ids := n.ChapterIDs()
	out := make([]*Chapter, len(ids))
	for i, id := range ids {
		out[i] = n.Chapters[id]
	}
	return out
}

// Title returns the novel title, or fallback when there is no info block.
func (n *Novel) Title(fallback string) string {
	if n.Info != nil && n.Info.Title != "" {
		return n.Info.Title
	}
	return fallback
}

// Clone returns a deep copy.
func (n *Novel) Clone() *Novel {
	out := New()
	if n.Cover != nil {
		c := *n.Cover
		c.Data = slices.Clone(n.Cover.Data)
		out.Cover = &c
	}
	out.Info = n.Info.Clone()
	for id, c := range n.Chapters {
		out.Chapters[id] = c.Clone()
	}
	return out
}
