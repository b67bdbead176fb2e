package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/pluginpack/internal/builder"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	PluginDir string `arg:"" type:"existingdir" help:"Plugin source tree to validate"`
}

func (v *ValidateCmd) Run(g *Global) error {
	outcome, err := builder.Check(context.Background(), v.PluginDir)
	if outcome != nil && outcome.Violations != nil && len(outcome.Violations.Violations) > 0 {
		outcome.Violations.Write(os.Stderr)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Plugin tree is valid (package format %s)\n", outcome.Report.FormatVersion)
	return nil
}
