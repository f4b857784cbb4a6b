package commands

import (
	"git.home.luguber.info/inful/novelbuilder/internal/pipeline"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	TextFlags `embed:""`
	Rm        bool `help:"Remove old files in the result directory first"`
}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	r := newRunner(root, cfg)
	return r.run(r.pipeline.Clean, pipeline.Request{
		Input:          c.Raw,
		Output:         ResolveOutputDir(c.Result, c.Raw, siblingResultDir),
		Dedup:          c.Dedup,
		RemoveExisting: c.Rm,
	})
}

// DedupCmd implements the 'dedup' command: clean with title deduplication
// forced on, writing back into the raw directory by default.
type DedupCmd struct {
	Raw    string `arg:"" help:"Raw directory" type:"existingdir"`
	Result string `help:"Result directory (default: the raw directory)" type:"path" placeholder:"DIR"`
}

func (d *DedupCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	r := newRunner(root, cfg)
	return r.run(r.pipeline.Clean, pipeline.Request{
		Input:  d.Raw,
		Output: ResolveOutputDir(d.Result, d.Raw, inPlace),
		Dedup:  true,
	})
}
