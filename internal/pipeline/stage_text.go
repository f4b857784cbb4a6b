package pipeline

import (
	"context"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/observability"
	"git.home.luguber.info/inful/novelbuilder/internal/textproc"
)

func stageReadRaw(ctx context.Context, st *State) error {
	n, problems, err := novel.ReadRawDir(st.Request.Input)
	if err != nil {
		return err
	}
	for _, p := range problems {
		if p.ChapterID > 0 {
			st.Report.Available++
			st.recorder.IncChapterOutcome(string(StageReadRaw), metrics.ChapterSkipped)
		}
		st.Report.AddIssue(StageReadRaw, p.ChapterID, p.Name, p.Err)
		observability.WarnContext(ctx, "Skipping malformed file",
			logfields.File(p.Name),
			logfields.Category(string(ferrors.GetCategory(p.Err))),
			logfields.Error(p.Err))
	}
	st.Report.Available += len(n.Chapters)
	st.Raw = n
	observability.DebugContext(ctx, "Read raw directory",
		logfields.Path(st.Request.Input),
		logfields.Count(len(n.Chapters)),
		slog.Bool("cover", n.Cover != nil),
		slog.Bool("foreword", n.Info != nil))
	return nil
}

func stageNormalize(ctx context.Context, st *State) error {
	raw := st.Raw
	clean := novel.New()
	clean.Cover = raw.Cover

	if raw.Info != nil {
		info := raw.Info.Clone()
		foreword, err := textproc.Normalize(info.Foreword)
		switch {
		case err == nil:
			info.Foreword = foreword
		case ferrors.HasCategory(err, ferrors.CategoryEmptyInput):
			// A foreword file may carry metadata only.
			info.Foreword = nil
		default:
			return err
		}
		clean.Info = info
	}

	chapters := raw.Ordered()
	results, err := mapChapters(ctx, st.pipeline.workers(), chapters, func(c *novel.Chapter) (*novel.Chapter, error) {
		paragraphs, err := textproc.Normalize(c.Paragraphs)
		if err != nil {
			return nil, err
		}
		out := c.Clone()
		out.Paragraphs = paragraphs
		return out, nil
	})
	if err != nil {
		return err
	}
	for i, r := range results {
		if r.err != nil {
			st.dropChapter(ctx, StageNormalize, chapters[i].ID, r.err)
			continue
		}
		clean.Chapters[r.value.ID] = r.value
	}
	st.Clean = clean
	return nil
}

// stageDedup strips restated titles from the raw body lines, before
// normalize can merge a title line with the sentence after it. Blank lines
// are dropped first so they do not end the title run.
func stageDedup(ctx context.Context, st *State) error {
	opts := st.pipeline.dedupOptions()
	raw := st.Raw.Clone()
	for _, c := range raw.Ordered() {
		c.Paragraphs = textproc.DedupTitle(nonBlank(c.Paragraphs), opts...)
		if len(c.Paragraphs) == 0 {
			delete(raw.Chapters, c.ID)
			st.dropChapter(ctx, StageDedup, c.ID, ferrors.EmptyInputError("chapter body only restates its title").
				WithContext("chapter_id", c.ID).
				Build())
		}
	}
	st.Raw = raw
	return nil
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// dropChapter records a recovered per-chapter error. The chapter is not in
// the output.
func (st *State) dropChapter(ctx context.Context, stage StageName, id int, err error) {
	st.Report.AddIssue(stage, id, novel.ChapterFileName(id), err)
	st.recorder.IncChapterOutcome(string(stage), metrics.ChapterSkipped)
	observability.WarnContext(ctx, "Skipping chapter",
		logfields.ChapterID(id),
		logfields.Error(err))
}
