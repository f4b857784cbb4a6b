package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/novelbuilder/internal/epub"
	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/imageinfo"
	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/observability"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
	"git.home.luguber.info/inful/novelbuilder/internal/version"
)

func stageRender(ctx context.Context, st *State) error {
	set, err := st.pipeline.templateSet()
	if err != nil {
		return err
	}
	labels := templates.LabelsFor(st.Lang, st.pipeline.cfg.LabelOverrides())
	st.renderer = templates.NewRenderer(set, st.Lang, labels)

	var docs []templates.Document
	if cover := st.Clean.Cover; cover != nil {
		img, err := imageinfo.Inspect(cover.Data)
		if err != nil {
			err = ferrors.WrapError(err, ferrors.CategoryStructure, "cover image is unreadable").
				Warning().
				WithContext("file", cover.Name).
				Build()
			st.Report.AddIssue(StageRender, 0, cover.Name, err)
			observability.WarnContext(ctx, "Omitting cover", logfields.File(cover.Name), logfields.Error(err))
		} else {
			doc, err := st.renderer.Cover(img)
			if err != nil {
				return err
			}
			st.Cover = img
			docs = append(docs, doc)
		}
	}
	if st.Clean.Info != nil {
		doc, err := st.renderer.Info(st.Clean.Info)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	chapters := st.Clean.Ordered()
	results, err := mapChapters(ctx, st.pipeline.workers(), chapters, st.renderer.Chapter)
	if err != nil {
		return err
	}
	for i, r := range results {
		if r.err != nil {
			st.dropChapter(ctx, StageRender, chapters[i].ID, r.err)
			continue
		}
		docs = append(docs, r.value)
	}
	st.Docs = docs
	return nil
}

func stagePackage(ctx context.Context, st *State) error {
	set, err := st.pipeline.templateSet()
	if err != nil {
		return err
	}
	archive, err := st.pipeline.packager(set).Package(st.Docs, st.Cover, st.metadata())
	if err != nil {
		return err
	}
	st.Archive = archive
	observability.DebugContext(ctx, "Packaged archive",
		logfields.File(archive.Name),
		logfields.Count(len(archive.Entries)))
	return nil
}

// metadata describes the book for the package document. Without a foreword
// the raw directory name is the title.
func (st *State) metadata() epub.Metadata {
	meta := epub.Metadata{
		Title:     st.Clean.Title(filepath.Base(st.Request.Input)),
		Lang:      st.Lang,
		Publisher: st.pipeline.cfg.EPUB.Publisher,
		Generator: version.Generator(),
	}
	if st.renderer != nil {
		meta.Labels = st.renderer.Labels()
	}
	if info := st.Clean.Info; info != nil {
		meta.Author = info.Author
		meta.Source = info.SourceURL
		meta.Subjects = splitTypes(info.Types)
	}
	return meta
}

// splitTypes turns the comma-joined genre line into subjects.
func splitTypes(types string) []string {
	var out []string
	for _, t := range strings.Split(types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func countChapters(docs []templates.Document) int {
	n := 0
	for _, d := range docs {
		if d.Kind == novel.KindChapter {
			n++
		}
	}
	return n
}
