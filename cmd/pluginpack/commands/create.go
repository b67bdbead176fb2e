package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/pluginpack/internal/scaffold"
)

// CreateCmd implements the 'create' command.
type CreateCmd struct {
	Name           string `arg:"" help:"Plugin name (lowercase letters, digits, '_' and '-')"`
	Dir            string `short:"d" help:"Target directory (defaults to ./NAME)"`
	PackageVersion string `name:"package-version" default:"3.0.0" help:"Package format version for the new plugin"`
	Force          bool   `help:"Overwrite an existing directory"`
}

func (c *CreateCmd) Run(g *Global) error {
	dir := c.Dir
	if dir == "" {
		dir = filepath.Join(".", c.Name)
	}
	if err := scaffold.Create(dir, c.Name, c.PackageVersion, c.Force); err != nil {
		return err
	}
	fmt.Printf("Plugin scaffold created in %s\n", dir)
	return nil
}
