package assemble

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"git.home.luguber.info/inful/pluginpack/internal/manifest"
	"git.home.luguber.info/inful/pluginpack/internal/repo"
)

// buildUbuntuRepo regenerates apt index metadata for a deb repository:
// Packages.gz from the control data of every package, plus the Release
// file. Packages shipped without the Release file are rejected by apt, so
// both writes are verified afterwards instead of merely attempted.
func buildUbuntuRepo(repoDir, pluginName, pluginVersion string) error {
	if err := writePackagesIndex(repoDir); err != nil {
		return err
	}
	if err := writeReleaseFile(repoDir, pluginName, pluginVersion); err != nil {
		return err
	}
	return verifyAptIndexes(repoDir)
}

// writePackagesIndex scans every deb in repoDir and writes Packages.gz.
// Entries are ordered by filename for reproducible index bytes.
func writePackagesIndex(repoDir string) error {
	debs, err := filepath.Glob(filepath.Join(repoDir, "*.deb"))
	if err != nil {
		return err
	}
	sort.Strings(debs)

	var b strings.Builder
	for _, deb := range debs {
		info, err := repo.ReadDeb(deb)
		if err != nil {
			return fmt.Errorf("index %s: %w", filepath.Base(deb), err)
		}
		digest, err := manifest.HashFile(deb)
		if err != nil {
			return err
		}
		b.WriteString(strings.TrimRight(info.Control, "\n"))
		fmt.Fprintf(&b, "\nFilename: ./%s\n", filepath.Base(deb))
		fmt.Fprintf(&b, "Size: %d\n", info.Size)
		fmt.Fprintf(&b, "SHA256: %s\n\n", digest)
	}

	f, err := os.Create(filepath.Join(repoDir, "Packages.gz"))
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(gz, b.String()); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}

// writeReleaseFile writes the repository Release file.
func writeReleaseFile(repoDir, pluginName, pluginVersion string) error {
	major := pluginVersion
	if i := strings.LastIndex(pluginVersion, "."); i > 0 {
		major = pluginVersion[:i]
	}
	content := fmt.Sprintf(
		"Origin: %s\nLabel: %s\nSuite: %s-%s\nCodename: %s\nVersion: %s\nArchitectures: amd64\nDescription: %s plugin repository\n",
		pluginName, pluginName, pluginName, major, pluginName, major, pluginName)
	return os.WriteFile(filepath.Join(repoDir, "Release"), []byte(content), 0o644)
}

// verifyAptIndexes confirms both index files exist and Packages.gz
// decompresses cleanly.
func verifyAptIndexes(repoDir string) error {
	if _, err := os.Stat(filepath.Join(repoDir, "Release")); err != nil {
		return fmt.Errorf("Release file missing after write: %w", err)
	}
	f, err := os.Open(filepath.Join(repoDir, "Packages.gz"))
	if err != nil {
		return fmt.Errorf("Packages.gz missing after write: %w", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("Packages.gz unreadable after write: %w", err)
	}
	defer gz.Close()
	if _, err := io.Copy(io.Discard, gz); err != nil {
		return fmt.Errorf("Packages.gz corrupt after write: %w", err)
	}
	return nil
}
