// Package assemble stages a validated plugin tree into its final artifact
// layout and publishes it atomically: staging happens in a temporary
// directory next to the output location, stale artifacts from previous
// builds are deleted, and the staged result is renamed into place. Partial
// output is never observable at the published path.
//
// Callers must serialize builds targeting the same output directory; the
// assembler provides no locking.
package assemble

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/manifest"
	"git.home.luguber.info/inful/pluginpack/internal/schema"
)

// installHooks are the optional installer hook files staged for format
// versions that carry them.
var installHooks = []string{"pre_install.sh", "post_install.sh", "uninstall.sh"}

// Assembler builds one artifact for one plugin tree.
type Assembler struct {
	tree      *descriptor.Tree
	schema    *schema.Schema
	outputDir string

	staging string // temp dir inside outputDir, empty until Stage
}

// New creates an assembler. outputDir is created if missing.
func New(tree *descriptor.Tree, s *schema.Schema, outputDir string) *Assembler {
	return &Assembler{tree: tree, schema: s, outputDir: outputDir}
}

// FullName is the plugin's name-version artifact stem.
func (a *Assembler) FullName() string {
	return fmt.Sprintf("%s-%s", a.tree.Meta.Name, a.tree.Meta.Version)
}

// ArtifactName is the final artifact's base name inside the output
// directory: a .fp bundle for the legacy layout, a directory otherwise.
func (a *Assembler) ArtifactName() string {
	if a.schema.Layout == schema.LayoutLegacyBundle {
		return a.FullName() + ".fp"
	}
	return a.FullName()
}

// SrcDir is the staged source tree. Valid after Stage.
func (a *Assembler) SrcDir() string {
	return filepath.Join(a.staging, "src")
}

// Stage copies the plugin tree into a fresh staging area and lays out the
// per-release repositories for the target format. The integrity manifest
// is generated over SrcDir between Stage and Finalize.
func (a *Assembler) Stage() error {
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	staging, err := os.MkdirTemp(a.outputDir, ".pluginpack-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	a.staging = staging

	if err := copyTree(a.tree.Root, a.SrcDir(), a.stageSkip()); err != nil {
		return fmt.Errorf("stage plugin tree: %w", err)
	}

	if a.schema.IncludeInstallHooks {
		if err := a.stageInstallHooks(); err != nil {
			return err
		}
	}

	if a.schema.Layout == schema.LayoutNativePackage {
		if err := a.buildRepositories(); err != nil {
			return err
		}
	}
	return nil
}

// Finalize produces the final artifact shape inside the staging area. For
// the legacy layout this bundles the staged tree; the native layout is
// already its own artifact.
func (a *Assembler) Finalize() error {
	if a.schema.Layout == schema.LayoutLegacyBundle {
		bundle := filepath.Join(a.staging, a.ArtifactName())
		if err := writeBundle(a.SrcDir(), bundle, a.FullName()); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}
	}
	return nil
}

// Publish removes stale artifacts from prior builds at the output location
// and renames the staged artifact into place. On success the staging area
// is gone and the returned path is the complete artifact.
func (a *Assembler) Publish() (string, error) {
	if err := a.cleanStale(); err != nil {
		return "", err
	}

	var staged string
	if a.schema.Layout == schema.LayoutLegacyBundle {
		staged = filepath.Join(a.staging, a.ArtifactName())
	} else {
		staged = a.SrcDir()
	}
	final := filepath.Join(a.outputDir, a.ArtifactName())
	if err := os.Rename(staged, final); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	a.Discard()
	return final, nil
}

// Discard removes the staging area. Safe to call after failure or success.
func (a *Assembler) Discard() {
	if a.staging != "" {
		os.RemoveAll(a.staging)
		a.staging = ""
	}
}

// cleanStale deletes artifacts of previous builds for this plugin name at
// the output location, including other versions. Only artifact-shaped
// entries are removed: a neighboring plugin whose name shares the prefix,
// or user files sitting next to the tree, are never touched.
func (a *Assembler) cleanStale() error {
	matches, err := filepath.Glob(filepath.Join(a.outputDir, a.tree.Meta.Name+"-*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if !a.staleArtifact(m, info.IsDir()) {
			continue
		}
		if err := os.RemoveAll(m); err != nil {
			return fmt.Errorf("remove stale artifact %s: %w", m, err)
		}
	}
	return nil
}

// staleArtifact reports whether path is something a previous build of this
// plugin produced: a legacy bundle, a build report, or a native artifact
// directory (recognized by its top-level checksums file). The segment
// after the plugin name must parse as a version, so "testplug-extra-1.0.0.fp"
// is not an artifact of plugin "testplug".
func (a *Assembler) staleArtifact(path string, isDir bool) bool {
	rest, ok := strings.CutPrefix(filepath.Base(path), a.tree.Meta.Name+"-")
	if !ok {
		return false
	}
	if isDir {
		if _, err := semver.NewVersion(rest); err != nil {
			return false
		}
		_, err := os.Stat(filepath.Join(path, manifest.Filename))
		return err == nil
	}
	for _, suffix := range []string{".fp", ".report.json"} {
		if v, found := strings.CutSuffix(rest, suffix); found {
			_, err := semver.NewVersion(v)
			return err == nil
		}
	}
	return false
}

// stageSkip builds the per-entry skip predicate for staging: the output
// directory (when it is a distinct subtree of the plugin root) and prior
// artifacts of this plugin at the tree root. With the default in-tree
// output location the previous build's bundle and report would otherwise
// be copied into the new artifact.
func (a *Assembler) stageSkip() func(path string, d fs.DirEntry) bool {
	absOut, _ := filepath.Abs(a.outputDir)
	absRoot, _ := filepath.Abs(a.tree.Root)
	return func(path string, d fs.DirEntry) bool {
		if absOut != absRoot {
			if abs, err := filepath.Abs(path); err == nil {
				if abs == absOut || strings.HasPrefix(abs, absOut+string(filepath.Separator)) {
					return true
				}
			}
		}
		if filepath.Dir(path) == a.tree.Root {
			return a.staleArtifact(path, d.IsDir())
		}
		return false
	}
}

// stageInstallHooks copies the optional installer hooks into a dedicated
// hooks directory of the staged tree.
func (a *Assembler) stageInstallHooks() error {
	for _, hook := range installHooks {
		src := filepath.Join(a.tree.Root, hook)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(a.SrcDir(), "hooks", hook)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("stage hook %s: %w", hook, err)
		}
	}
	return nil
}

// copyTree copies src into dst, skipping dot-prefixed entries (VCS
// metadata, the staging area itself) and entries the skip predicate
// rejects. The walk root itself is never subject to skipping.
func copyTree(src, dst string, skip func(path string, d fs.DirEntry) bool) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return os.MkdirAll(dst, 0o755)
		}
		if strings.HasPrefix(d.Name(), ".") || (skip != nil && skip(path, d)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

// copyFile copies one regular file preserving its mode bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
