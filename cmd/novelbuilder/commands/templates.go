package commands

import (
	"fmt"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/templates"
)

// TemplatesCmd groups template commands.
type TemplatesCmd struct {
	Export TemplatesExportCmd `cmd:"" help:"Write the built-in template set to a directory for editing"`
	Check  TemplatesCheckCmd  `cmd:"" help:"Load a template set and report problems"`
}

// TemplatesExportCmd implements 'novelbuilder templates export'.
type TemplatesExportCmd struct {
	Dir   string `arg:"" help:"Target directory" type:"path"`
	Force bool   `help:"Overwrite existing files"`
}

func (t *TemplatesExportCmd) Run(_ *Global, _ *CLI) error {
	written, err := templates.Export(t.Dir, t.Force)
	for _, path := range written {
		fmt.Println(path)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "export templates").WithContext("path", t.Dir).Build()
	}
	fmt.Printf("Exported %d template files; set pipeline.template_dir to %s to use them\n", len(written), t.Dir)
	return nil
}

// TemplatesCheckCmd implements 'novelbuilder templates check'.
type TemplatesCheckCmd struct {
	Dir string `arg:"" help:"Template directory" type:"existingdir"`
}

func (t *TemplatesCheckCmd) Run(_ *Global, _ *CLI) error {
	if _, err := templates.LoadDir(t.Dir); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
