// Package schema holds one validation schema per supported package-format
// version. Schemas for different versions are independent documents, not
// deltas: adding a version means adding a complete new entry, and an
// unknown version never falls back to an older schema.
package schema

import (
	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
)

// ArtifactLayout selects the output artifact shape for a format version.
type ArtifactLayout int

const (
	// LayoutLegacyBundle is a single flat tar.gz bundle (.fp file).
	LayoutLegacyBundle ArtifactLayout = iota
	// LayoutNativePackage is an OS-native package directory layout with
	// regenerated repository index metadata per release OS.
	LayoutNativePackage
)

// String returns the layout name used in logs and reports.
func (l ArtifactLayout) String() string {
	switch l {
	case LayoutLegacyBundle:
		return "legacy-bundle"
	case LayoutNativePackage:
		return "native-package"
	default:
		return "unknown"
	}
}

// Schema is the immutable rule set for one package-format version.
type Schema struct {
	// FormatVersion is the exact declared version this schema covers.
	FormatVersion string

	// Layout selects the assembler backend.
	Layout ArtifactLayout

	// RequireProvenance gates the authors/licenses/homepage fields.
	RequireProvenance bool

	// IncludeInstallHooks stages pre_install.sh/post_install.sh/
	// uninstall.sh files into the artifact when present.
	IncludeInstallHooks bool

	// Groups is the allowed capability tag vocabulary.
	Groups sets.Set[string]

	// OSKinds is the allowed release os vocabulary.
	OSKinds sets.Set[string]

	// DeploymentModes is the allowed release deployment_mode vocabulary.
	DeploymentModes sets.Set[string]

	// TaskTypes is the allowed task type vocabulary.
	TaskTypes sets.Set[string]

	// TimeoutRequired lists task types that must declare an explicit
	// timeout parameter.
	TimeoutRequired sets.Set[string]

	// StageOrder is the global stage-name ordering for this format
	// version, first-to-last.
	StageOrder []string

	// AttributeTypes is the allowed environment-config attribute type
	// vocabulary.
	AttributeTypes sets.Set[string]

	version *semver.Version
}

// Version returns the parsed format version.
func (s *Schema) Version() *semver.Version { return s.version }
