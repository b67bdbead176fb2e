package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pluginpack/cmd/pluginpack/commands"
	"git.home.luguber.info/inful/pluginpack/internal/errors"
	"git.home.luguber.info/inful/pluginpack/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("pluginpack"),
		kong.Description("Validate and package deployment-platform plugins"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()})
	if err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, os.Stderr, slog.Default())
		os.Exit(adapter.Report(err))
	}
}
