package schema

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/pluginpack/internal/errors"
	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
)

// Stage names shared by the stage vocabularies below. The numeric-postfix
// refinement ("deployment/20") is handled by the stage planner, not here.
const (
	StagePreDeployment  = "pre_deployment"
	StageDeployment     = "deployment"
	StagePostDeployment = "post_deployment"
)

// TaskTypeReboot is the distinguished task type scheduled as a marker in
// the execution sequence rather than ordinary work.
const TaskTypeReboot = "reboot"

// registry maps each supported package_format_version to its schema.
// Entries are complete, self-contained rule sets so each version stays
// auditable on its own.
var registry = map[string]*Schema{
	"1.0.0": {
		FormatVersion:     "1.0.0",
		Layout:            LayoutLegacyBundle,
		RequireProvenance: false,
		Groups: sets.New(
			"network", "storage", "storage::cinder", "storage::glance",
			"hypervisor", "monitoring",
		),
		OSKinds:         sets.New("ubuntu", "centos"),
		DeploymentModes: sets.New("ha", "multinode"),
		TaskTypes:       sets.New("puppet", "shell"),
		TimeoutRequired: sets.New("shell"),
		StageOrder: []string{
			StagePreDeployment, StageDeployment, StagePostDeployment,
		},
		AttributeTypes: sets.New(
			"text", "checkbox", "select", "password", "hidden",
		),
	},
	"2.0.0": {
		FormatVersion:     "2.0.0",
		Layout:            LayoutNativePackage,
		RequireProvenance: true,
		Groups: sets.New(
			"network", "storage", "storage::cinder", "storage::glance",
			"hypervisor", "monitoring",
		),
		OSKinds:         sets.New("ubuntu", "centos"),
		DeploymentModes: sets.New("ha", "multinode"),
		TaskTypes:       sets.New("puppet", "shell", TaskTypeReboot),
		TimeoutRequired: sets.New("shell", TaskTypeReboot),
		StageOrder: []string{
			StagePreDeployment, StageDeployment, StagePostDeployment,
		},
		AttributeTypes: sets.New(
			"text", "checkbox", "select", "password", "hidden",
		),
	},
	"3.0.0": {
		FormatVersion:       "3.0.0",
		Layout:              LayoutNativePackage,
		RequireProvenance:   true,
		IncludeInstallHooks: true,
		Groups: sets.New(
			"network", "storage", "storage::cinder", "storage::glance",
			"hypervisor", "monitoring", "equipment",
		),
		OSKinds:         sets.New("ubuntu", "centos"),
		DeploymentModes: sets.New("ha", "multinode"),
		TaskTypes: sets.New(
			"puppet", "shell", "skipped", "copy_files", "sync",
			"upload_file", TaskTypeReboot,
		),
		TimeoutRequired: sets.New("shell", TaskTypeReboot),
		StageOrder: []string{
			StagePreDeployment, StageDeployment, StagePostDeployment,
		},
		AttributeTypes: sets.New(
			"text", "checkbox", "select", "password", "hidden", "radio",
		),
	},
}

func init() {
	for v, s := range registry {
		parsed, err := semver.NewVersion(v)
		if err != nil {
			panic("schema registry: bad version key " + v + ": " + err.Error())
		}
		s.version = parsed
	}
}

// For resolves the schema for a declared package format version. Unknown
// versions are a hard failure, never a fallback to an older schema.
func For(formatVersion string) (*Schema, error) {
	s, ok := registry[formatVersion]
	if !ok {
		return nil, errors.UnsupportedFormatVersion(formatVersion, Supported())
	}
	return s, nil
}

// Supported returns the known format versions in ascending order.
func Supported() []string {
	versions := make([]*semver.Version, 0, len(registry))
	for v := range registry {
		versions = append(versions, semver.MustParse(v))
	}
	sort.Sort(semver.Collection(versions))
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.Original()
	}
	return out
}

// AtLeast reports whether this schema's format version satisfies the given
// minimum, e.g. AtLeast("2.0.0") for provenance-gated fields.
func (s *Schema) AtLeast(minimum string) bool {
	return !s.version.LessThan(semver.MustParse(minimum))
}
