package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/observability"
	"git.home.luguber.info/inful/novelbuilder/internal/workspace"
)

// Directory layout of a convert run, mirroring OEBPS.
const (
	textDir   = "Text"
	styleDir  = "Styles"
	imageDir  = "Images"
	styleFile = "stylesheet.css"
)

func stageWriteText(ctx context.Context, st *State) error {
	return st.writeOutputs(ctx, func(dir string) ([]string, error) {
		written, err := novel.WriteText(dir, st.Clean)
		if err != nil {
			return written, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write cleaned text").Fatal().Build()
		}
		st.Report.Produced = len(st.Clean.Chapters)
		return written, nil
	})
}

func stageWriteXHTML(ctx context.Context, st *State) error {
	return st.writeOutputs(ctx, func(dir string) ([]string, error) {
		var written []string
		write := func(rel string, data []byte) error {
			if err := writeFile(filepath.Join(dir, rel), data); err != nil {
				return err
			}
			written = append(written, filepath.ToSlash(rel))
			return nil
		}
		if st.Cover != nil {
			if err := write(filepath.Join(imageDir, st.Cover.FileName()), st.Cover.Data); err != nil {
				return written, err
			}
		}
		set, err := st.pipeline.templateSet()
		if err != nil {
			return written, err
		}
		if err := write(filepath.Join(styleDir, styleFile), set.Stylesheet()); err != nil {
			return written, err
		}
		for _, d := range st.Docs {
			if err := write(filepath.Join(textDir, d.Name), d.Content); err != nil {
				return written, err
			}
		}
		st.Report.Produced = countChapters(st.Docs)
		return written, nil
	})
}

func stageWriteEpub(ctx context.Context, st *State) error {
	return st.writeOutputs(ctx, func(dir string) ([]string, error) {
		if err := st.Archive.WriteFile(filepath.Join(dir, st.Archive.Name)); err != nil {
			return nil, err
		}
		st.Report.Produced = countChapters(st.Docs)
		return []string{st.Archive.Name}, nil
	})
}

// writeOutputs prepares the output directory, runs write against it and
// records what was produced. When the output is the input directory the
// files are staged in a workspace and copied over once complete, so a
// failed run leaves the raw directory as it was.
func (st *State) writeOutputs(ctx context.Context, write func(dir string) ([]string, error)) error {
	input, output := st.Request.Input, st.Request.Output

	if st.Request.RemoveExisting || st.pipeline.cfg.Output.Clean {
		if err := removeExisting(input, output); err != nil {
			return err
		}
	}

	dir := output
	var ws *workspace.Manager
	if input == output {
		ws = workspace.NewManager("")
		if err := ws.Create(); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create staging workspace").Fatal().Build()
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Warn("Failed to remove staging workspace", logfields.Error(err))
			}
		}()
		dir = ws.GetPath()
	} else if err := os.MkdirAll(output, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			Fatal().
			WithContext("path", output).
			Build()
	}

	written, err := write(dir)
	if err != nil {
		return err
	}
	if ws != nil {
		if err := ws.Commit(output); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "commit staged output").
				Fatal().
				WithContext("path", output).
				Build()
		}
	}

	st.Report.Outputs = written
	for n := 0; n < st.Report.Produced; n++ {
		st.recorder.IncChapterOutcome(string(StageWrite), metrics.ChapterProduced)
	}
	observability.InfoContext(ctx, "Wrote output", logfields.Path(output), logfields.Count(len(written)))
	return nil
}

// removeExisting empties output. It refuses when that would delete the
// input, i.e. when output is the input or one of its parents.
func removeExisting(input, output string) error {
	if input == output || isWithin(output, input) {
		slog.Warn("Ignoring --rm: output directory contains the raw directory", logfields.Path(output))
		return nil
	}
	entries, err := os.ReadDir(output)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "read output directory").
			Fatal().
			WithContext("path", output).
			Build()
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(output, e.Name())); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove previous output").
				Fatal().
				WithContext("path", e.Name()).
				Build()
		}
	}
	slog.Debug("Removed previous output", logfields.Path(output), logfields.Count(len(entries)))
	return nil
}

// isWithin reports whether path lies below dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create directory").
			Fatal().
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	// #nosec G306 -- generated documents are meant to be shared.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write output file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
