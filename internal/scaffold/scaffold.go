// Package scaffold generates the initial file tree for a new plugin:
// enough metadata, tasks, and directory structure to validate and build
// out of the box.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/pluginpack/internal/schema"
)

type templateData struct {
	Name          string
	Title         string
	FormatVersion string
	Provenance    bool
}

// Create materializes a new plugin tree at dir for the given format
// version. It refuses to overwrite an existing tree unless force is set.
func Create(dir, name, formatVersion string, force bool) error {
	sch, err := schema.For(formatVersion)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", dir)
	}

	data := templateData{
		Name:          name,
		Title:         titleCase(name),
		FormatVersion: formatVersion,
		Provenance:    sch.RequireProvenance,
	}

	for _, d := range []string{
		"deployment_scripts",
		"repositories/ubuntu",
		"repositories/centos",
	} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return err
		}
	}

	files := map[string]string{
		"metadata.yaml":                metadataTemplate,
		"tasks.yaml":                   tasksTemplate,
		"environment_config.yaml":      envConfigTemplate,
		"deployment_scripts/deploy.sh": deployScriptTemplate,
	}
	for path, tmpl := range files {
		if err := renderFile(filepath.Join(dir, path), path, tmpl, data); err != nil {
			return err
		}
	}
	return os.Chmod(filepath.Join(dir, "deployment_scripts/deploy.sh"), 0o755)
}

// titleCase turns "fuel_monitoring" into "Fuel Monitoring" for the
// human-facing title field.
func titleCase(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func renderFile(path, name, tmpl string, data templateData) error {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := t.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return f.Close()
}
