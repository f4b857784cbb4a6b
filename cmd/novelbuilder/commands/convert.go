package commands

import (
	"git.home.luguber.info/inful/novelbuilder/internal/pipeline"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	TextFlags `embed:""`
	Lang      string `help:"Language code written into the pages (default from config)" placeholder:"CODE"`
	Rm        bool   `help:"Remove old files in the result directory first"`
}

func (c *ConvertCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	r := newRunner(root, cfg)
	return r.run(r.pipeline.Convert, pipeline.Request{
		Input:          c.Raw,
		Output:         ResolveOutputDir(c.Result, c.Raw, siblingResultDir),
		Dedup:          c.Dedup,
		Lang:           c.Lang,
		RemoveExisting: c.Rm,
	})
}
