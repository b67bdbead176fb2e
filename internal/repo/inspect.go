// Package repo verifies that every package artifact inside an OS-specific
// repository directory is structurally valid for that OS's package format.
// Naive repository assembly (plain file copy) used to ship broken
// repositories; verification runs before any index metadata is generated.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pluginpack/internal/validate"
)

// Inspect checks every package file under dir for the given os kind
// ("ubuntu" → deb, "centos" → rpm). Each corrupt, truncated, or
// misdescribed package yields one blocking violation naming the file;
// inspection never stops at the first bad file. Non-package files (index
// metadata and the like) are ignored.
func Inspect(dir, osKind string) *validate.Result {
	res := &validate.Result{}

	files, err := packageFiles(dir, extensionFor(osKind))
	if err != nil {
		res.Add(validate.Violation{
			Document: dir, Rule: "repository-unreadable",
			Severity: validate.SeverityError,
			Message:  fmt.Sprintf("cannot read repository directory: %v", err),
		})
		return res
	}

	for _, path := range files {
		if err := checkPackage(path, osKind); err != nil {
			res.Add(validate.Violation{
				Document: filepath.Base(path), Rule: "repository-corruption",
				Severity: validate.SeverityError,
				Message:  err.Error(),
			})
		}
	}
	return res
}

func extensionFor(osKind string) string {
	if osKind == "centos" {
		return ".rpm"
	}
	return ".deb"
}

// packageFiles returns package paths under dir sorted by name so
// violation order is deterministic.
func packageFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func checkPackage(path, osKind string) error {
	switch osKind {
	case "centos":
		info, err := ReadRPM(path)
		if err != nil {
			return fmt.Errorf("corrupt rpm package: %v", err)
		}
		return matchRPMFilename(filepath.Base(path), info)
	default:
		info, err := ReadDeb(path)
		if err != nil {
			return fmt.Errorf("corrupt deb package: %v", err)
		}
		return matchDebFilename(filepath.Base(path), info)
	}
}

// matchDebFilename checks the name_version_arch.deb convention against the
// control data.
func matchDebFilename(filename string, info *DebInfo) error {
	base := strings.TrimSuffix(filename, ".deb")
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 {
		// Unconventional name; control data already proved integrity.
		return nil
	}
	if parts[0] != info.Name || parts[1] != info.Version {
		return fmt.Errorf(
			"package declares %s %s but filename says %s %s",
			info.Name, info.Version, parts[0], parts[1])
	}
	return nil
}

// matchRPMFilename checks the name-version-release.arch.rpm convention
// against the header tags.
func matchRPMFilename(filename string, info *RPMInfo) error {
	base := strings.TrimSuffix(filename, ".rpm")
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i] // drop arch
	}
	relIdx := strings.LastIndex(base, "-")
	if relIdx <= 0 {
		return nil
	}
	verIdx := strings.LastIndex(base[:relIdx], "-")
	if verIdx <= 0 {
		return nil
	}
	name, version := base[:verIdx], base[verIdx+1:relIdx]
	if name != info.Name || version != info.Version {
		return fmt.Errorf(
			"package declares %s %s but filename says %s %s",
			info.Name, info.Version, name, version)
	}
	return nil
}
