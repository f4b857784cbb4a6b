package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/novelbuilder/internal/epub"
	"git.home.luguber.info/inful/novelbuilder/internal/pipeline"
	"git.home.luguber.info/inful/novelbuilder/internal/watch"
)

// EpubCmd groups EPUB commands.
type EpubCmd struct {
	FromRaw EpubFromRawCmd `cmd:"" name:"from_raw" help:"Build an EPUB from a raw directory"`
	Verify  EpubVerifyCmd  `cmd:"" help:"Check the container structure and reading order of an EPUB"`
	Watch   EpubWatchCmd   `cmd:"" help:"Rebuild the EPUB whenever the raw directory changes"`
}

// EpubFromRawCmd implements 'novelbuilder epub from_raw'.
type EpubFromRawCmd struct {
	TextFlags `embed:""`
	Lang      string `help:"Language code of the novel (default from config)" placeholder:"CODE"`
}

func (e *EpubFromRawCmd) request() pipeline.Request {
	return pipeline.Request{
		Input:  e.Raw,
		Output: ResolveOutputDir(e.Result, e.Raw, parentDir),
		Dedup:  e.Dedup,
		Lang:   e.Lang,
	}
}

func (e *EpubFromRawCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	r := newRunner(root, cfg)
	return r.run(r.pipeline.BuildEpub, e.request())
}

// EpubVerifyCmd implements 'novelbuilder epub verify'.
type EpubVerifyCmd struct {
	File string `arg:"" help:"EPUB file" type:"existingfile"`
}

func (v *EpubVerifyCmd) Run(_ *Global, _ *CLI) error {
	in, err := epub.InspectFile(v.File)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %q, %d entries, %d documents in reading order\n",
		filepath.Base(v.File), in.Title, len(in.Entries), len(in.Spine))
	fmt.Println("ok")
	return nil
}

// EpubWatchCmd implements 'novelbuilder epub watch'.
type EpubWatchCmd struct {
	EpubFromRawCmd `embed:""`
	Quiet          time.Duration `help:"Quiet period before a rebuild" default:"500ms"`
}

func (w *EpubWatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	r := newRunner(root, cfg)
	req := w.request()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	build := func(ctx context.Context) error {
		report, err := r.pipeline.BuildEpub(ctx, req)
		if werr := r.writeMetrics(); werr != nil {
			slog.Warn("Failed to write metrics", "error", werr)
		}
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	}

	// A broken first build is reported and fixed by the next change.
	if err := build(ctx); err != nil {
		slog.Error("Build failed", "error", err)
	}

	watcher, err := watch.New(watch.Config{Dir: req.Input, QuietWindow: w.Quiet}, build)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
