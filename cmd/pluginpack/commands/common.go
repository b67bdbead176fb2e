package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Validate a plugin tree and build its package artifact"`
	Validate ValidateCmd `cmd:"" help:"Validate a plugin tree without building"`
	Create   CreateCmd   `cmd:"" help:"Scaffold a new plugin tree"`
}

// AfterApply runs after flag parsing; setup logging once. Logs go to
// stderr so progress output on stdout stays machine-consumable.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
