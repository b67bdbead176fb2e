package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/pluginpack/internal/builder"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	PluginDir  string `arg:"" type:"existingdir" help:"Plugin source tree to package"`
	Output     string `short:"o" help:"Output directory for the artifact (defaults to the plugin tree)"`
	StrictTies bool   `name:"strict-ties" help:"Fail when two tasks declare the same stage position instead of using declaration order"`
	SkipHook   bool   `name:"skip-hook" help:"Do not run the pre_build_hook executable"`
}

func (b *BuildCmd) Run(g *Global) error {
	fmt.Printf("Building plugin from %s\n", b.PluginDir)

	outcome, err := builder.Build(context.Background(), b.PluginDir, builder.Options{
		OutputDir:  b.Output,
		StrictTies: b.StrictTies,
		SkipHook:   b.SkipHook,
	})
	if outcome != nil && outcome.Violations != nil && len(outcome.Violations.Violations) > 0 {
		outcome.Violations.Write(os.Stderr)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Plugin package created: %s\n", outcome.ArtifactPath)
	return nil
}
