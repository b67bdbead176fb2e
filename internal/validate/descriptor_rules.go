package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
)

// namePattern is the allowed plugin name shape: package managers on both
// target OS families accept it without escaping.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func (v *Validator) checkDescriptor(tree *descriptor.Tree, res *Result) {
	meta := tree.Meta
	doc := descriptor.MetadataFile

	if meta.Name == "" {
		res.Add(Violation{
			Document: doc, Path: "name", Rule: "name-required",
			Severity: SeverityError,
			Message:  "name is required",
		})
	} else if !namePattern.MatchString(meta.Name) {
		res.Add(Violation{
			Document: doc, Path: "name", Rule: "name-format",
			Severity: SeverityError,
			Message: fmt.Sprintf(
				"name %q must start with a lowercase letter or digit and contain only lowercase letters, digits, '_' and '-'",
				meta.Name),
		})
	}

	if meta.Version == "" {
		res.Add(Violation{
			Document: doc, Path: "version", Rule: "version-required",
			Severity: SeverityError,
			Message:  "version is required",
		})
	}

	for i, group := range meta.Groups {
		if !v.schema.Groups.Has(group) {
			res.Add(Violation{
				Document: doc, Path: fmt.Sprintf("groups[%d]", i),
				Rule:     "group-enum",
				Severity: SeverityError,
				Message: fmt.Sprintf("unknown group %q, allowed: %s",
					group, strings.Join(sets.Sorted(v.schema.Groups), ", ")),
			})
		}
	}

	if v.schema.RequireProvenance {
		v.checkProvenance(meta, res)
	}

	if len(meta.Releases) == 0 {
		res.Add(Violation{
			Document: doc, Path: "releases", Rule: "releases-required",
			Severity: SeverityError,
			Message:  "at least one release entry is required",
		})
		return
	}
	for i, rel := range meta.Releases {
		v.checkRelease(tree.Root, i, rel, res)
	}
}

// checkProvenance enforces the fields gated on format version >= 2.0.0.
func (v *Validator) checkProvenance(meta *descriptor.PluginDescriptor, res *Result) {
	doc := descriptor.MetadataFile
	gate := fmt.Sprintf("required for package format version %s", v.schema.FormatVersion)

	if len(meta.Authors) == 0 {
		res.Add(Violation{
			Document: doc, Path: "authors", Rule: "authors-required",
			Severity: SeverityError,
			Message:  "authors is " + gate,
		})
	}
	if len(meta.Licenses) == 0 {
		res.Add(Violation{
			Document: doc, Path: "licenses", Rule: "licenses-required",
			Severity: SeverityError,
			Message:  "licenses is " + gate,
		})
	}
	if meta.Homepage == "" {
		res.Add(Violation{
			Document: doc, Path: "homepage", Rule: "homepage-required",
			Severity: SeverityError,
			Message:  "homepage is " + gate,
		})
	}
}

func (v *Validator) checkRelease(root string, i int, rel descriptor.Release, res *Result) {
	doc := descriptor.MetadataFile
	at := func(field string) string { return fmt.Sprintf("releases[%d].%s", i, field) }

	if rel.OS == "" {
		res.Add(Violation{
			Document: doc, Path: at("os"), Rule: "release-os",
			Severity: SeverityError,
			Message:  "os is required",
		})
	} else if !v.schema.OSKinds.Has(rel.OS) {
		res.Add(Violation{
			Document: doc, Path: at("os"), Rule: "release-os",
			Severity: SeverityError,
			Message: fmt.Sprintf("unknown os %q, allowed: %s",
				rel.OS, strings.Join(sets.Sorted(v.schema.OSKinds), ", ")),
		})
	}

	if rel.DeploymentMode == "" {
		res.Add(Violation{
			Document: doc, Path: at("deployment_mode"), Rule: "release-mode",
			Severity: SeverityError,
			Message:  "deployment_mode is required",
		})
	} else if !v.schema.DeploymentModes.Has(rel.DeploymentMode) {
		res.Add(Violation{
			Document: doc, Path: at("deployment_mode"), Rule: "release-mode",
			Severity: SeverityError,
			Message: fmt.Sprintf("unknown deployment_mode %q, allowed: %s",
				rel.DeploymentMode, strings.Join(sets.Sorted(v.schema.DeploymentModes), ", ")),
		})
	}

	v.checkReleasePath(root, at("deployment_scripts_path"), "deployment_scripts_path",
		rel.DeploymentScriptsPath, res)
	v.checkReleasePath(root, at("repository_path"), "repository_path",
		rel.RepositoryPath, res)
}

// checkReleasePath verifies a declared relative path exists inside the
// plugin tree.
func (v *Validator) checkReleasePath(root, at, field, rel string, res *Result) {
	doc := descriptor.MetadataFile
	if rel == "" {
		res.Add(Violation{
			Document: doc, Path: at, Rule: "release-path",
			Severity: SeverityError,
			Message:  field + " is required",
		})
		return
	}
	if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
		res.Add(Violation{
			Document: doc, Path: at, Rule: "release-path",
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s %q does not exist in the plugin tree", field, rel),
		})
	}
}
