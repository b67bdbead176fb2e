package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
)

// buildRepositories lays out every release's repository for its OS's
// package manager. Repositories are resolved against the staged source
// tree so the originals in the plugin tree stay untouched.
func (a *Assembler) buildRepositories() error {
	done := sets.New[string]()
	for _, rel := range a.tree.Meta.Releases {
		repoDir := filepath.Join(a.SrcDir(), rel.RepositoryPath)
		if done.Has(repoDir) {
			continue
		}
		done.Add(repoDir)

		var err error
		switch rel.OS {
		case "centos":
			err = buildCentosRepo(repoDir)
		default:
			err = buildUbuntuRepo(repoDir, a.tree.Meta.Name, a.tree.Meta.Version)
		}
		if err != nil {
			return fmt.Errorf("build %s repository %s: %w", rel.OS, rel.RepositoryPath, err)
		}
	}
	return nil
}

// buildCentosRepo arranges an rpm repository: packages move into a
// Packages subdirectory, the layout the downstream createrepo backend
// expects.
func buildCentosRepo(repoDir string) error {
	packagesDir := filepath.Join(repoDir, "Packages")
	if err := os.MkdirAll(packagesDir, 0o755); err != nil {
		return err
	}
	rpms, err := filepath.Glob(filepath.Join(repoDir, "*.rpm"))
	if err != nil {
		return err
	}
	for _, rpm := range rpms {
		dst := filepath.Join(packagesDir, filepath.Base(rpm))
		if err := os.Rename(rpm, dst); err != nil {
			return err
		}
	}
	return nil
}
