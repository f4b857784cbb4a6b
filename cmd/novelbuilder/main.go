package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/novelbuilder/cmd/novelbuilder/commands"
	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("novelbuilder"),
		kong.Description("Turn a directory of plain-text novel chapters into an EPUB."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
