package builder

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pluginpack/internal/errors"
	"git.home.luguber.info/inful/pluginpack/internal/testutil"
)

func fixture(t *testing.T, formatVersion string) string {
	t.Helper()
	root := t.TempDir()
	testutil.WritePluginTree(t, root, formatVersion)
	return root
}

// treeListing walks dir and returns every path under it, for asserting
// that an operation wrote nothing.
func treeListing(t *testing.T, dir string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	return paths
}

func TestBuildLegacy(t *testing.T) {
	root := fixture(t, "1.0.0")
	out := t.TempDir()

	outcome, err := Build(context.Background(), root, Options{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "testplug-1.2.3.fp"), outcome.ArtifactPath)
	assert.FileExists(t, outcome.ArtifactPath)
	assert.FileExists(t, filepath.Join(out, "testplug-1.2.3.report.json"))

	require.Len(t, outcome.Plan, 2)
	assert.Equal(t, "prepare", outcome.Plan[0].Task.ID, "pre_deployment runs first")
	assert.Equal(t, "deploy_things", outcome.Plan[1].Task.ID)

	require.NotNil(t, outcome.Manifest)
	_, ok := outcome.Manifest.Lookup("metadata.yaml")
	assert.True(t, ok)

	assert.Equal(t, "success", outcome.Report.Status)
	assert.Contains(t, outcome.Report.StageDurations, "validate")
	assert.Contains(t, outcome.Report.StageDurations, "publish")
}

func TestBuildDefaultOutputDir(t *testing.T) {
	root := fixture(t, "1.0.0")

	// No OutputDir: the artifact lands in the plugin tree itself.
	outcome, err := Build(context.Background(), root, Options{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "testplug-1.2.3.fp"), outcome.ArtifactPath)
	assert.FileExists(t, outcome.ArtifactPath)
	assert.FileExists(t, filepath.Join(root, "testplug-1.2.3.report.json"))
	assert.FileExists(t, filepath.Join(root, "metadata.yaml"), "source tree must survive an in-place build")
}

func TestRebuildInPlaceExcludesPriorArtifacts(t *testing.T) {
	root := fixture(t, "1.0.0")

	_, err := Build(context.Background(), root, Options{})
	require.NoError(t, err)
	outcome, err := Build(context.Background(), root, Options{})
	require.NoError(t, err)

	for _, name := range []string{"testplug-1.2.3.fp", "testplug-1.2.3.report.json"} {
		_, ok := outcome.Manifest.Lookup(name)
		assert.False(t, ok, "%s from the previous build leaked into the artifact", name)
	}
}

func TestBuildNative(t *testing.T) {
	root := fixture(t, "2.0.0")
	out := t.TempDir()

	outcome, err := Build(context.Background(), root, Options{OutputDir: out})
	require.NoError(t, err)

	artifact := filepath.Join(out, "testplug-1.2.3")
	assert.Equal(t, artifact, outcome.ArtifactPath)
	assert.FileExists(t, filepath.Join(artifact, "checksums.sha256"))
	assert.FileExists(t, filepath.Join(artifact, "repositories/ubuntu/Packages.gz"))
	assert.FileExists(t, filepath.Join(artifact, "repositories/ubuntu/Release"))
	assert.FileExists(t, filepath.Join(artifact, "repositories/centos/Packages/testpkg-1.0-1.noarch.rpm"))

	// Index metadata is generated before hashing, so the manifest covers it.
	_, ok := outcome.Manifest.Lookup("repositories/ubuntu/Packages.gz")
	assert.True(t, ok)
}

func TestBuildUnsupportedFormatVersion(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "metadata.yaml"),
		"name: testplug\nversion: 1.0.0\npackage_format_version: '9.9.9'\n")
	out := filepath.Join(t.TempDir(), "out")

	before := treeListing(t, root)
	_, err := Build(context.Background(), root, Options{OutputDir: out})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFormatVersion))
	assert.Contains(t, err.Error(), "9.9.9")

	assert.NoDirExists(t, out, "unknown format version must write nothing")
	assert.Equal(t, before, treeListing(t, root))
}

func TestBuildValidationFailure(t *testing.T) {
	root := fixture(t, "2.0.0")
	// Strip provenance so validation fails.
	testutil.WriteFile(t, filepath.Join(root, "metadata.yaml"), `name: testplug
version: 1.2.3
package_format_version: '2.0.0'
releases:
  - os: ubuntu
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts/
    repository_path: repositories/ubuntu
`)
	out := filepath.Join(t.TempDir(), "out")

	outcome, err := Build(context.Background(), root, Options{OutputDir: out})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	require.NotNil(t, outcome)
	require.NotNil(t, outcome.Violations)
	assert.Equal(t, 3, outcome.Violations.ErrorCount(), "authors, licenses, homepage")
	assert.Equal(t, "failed", outcome.Report.Status)
	assert.NoDirExists(t, out, "failed validation must not leave staged output")
}

func TestBuildCorruptRepositoryHaltsBeforeAssembly(t *testing.T) {
	root := fixture(t, "2.0.0")
	full := testutil.DebBytes(t, "badpkg", "1.0")
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "repositories/ubuntu/badpkg_1.0_all.deb"), full[:32], 0o644))
	out := filepath.Join(t.TempDir(), "out")

	outcome, err := Build(context.Background(), root, Options{OutputDir: out})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	found := false
	for _, v := range outcome.Violations.Violations {
		if v.Rule == "repository-corruption" && v.Document == "badpkg_1.0_all.deb" {
			found = true
		}
	}
	assert.True(t, found, "corrupt package must be named in the violations")
	assert.NoDirExists(t, out)
}

func TestBuildRepositoryStatFailureReported(t *testing.T) {
	root := fixture(t, "1.0.0")
	// Route the repository path through a regular file so os.Stat fails
	// with something other than "not exist".
	testutil.WriteFile(t, filepath.Join(root, "metadata.yaml"), `name: testplug
version: 1.2.3
package_format_version: '1.0.0'
releases:
  - os: ubuntu
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts/
    repository_path: blocked/repo
`)
	testutil.WriteFile(t, filepath.Join(root, "blocked"), "a file, not a directory")

	outcome, err := Build(context.Background(), root, Options{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	var rules []string
	for _, v := range outcome.Violations.Violations {
		rules = append(rules, v.Rule)
	}
	assert.Contains(t, rules, "release-path")
	assert.Contains(t, rules, "repository-unreadable")
}

func TestRebuildLeavesNoStaleFiles(t *testing.T) {
	root := fixture(t, "1.0.0")
	out := t.TempDir()

	_, err := Build(context.Background(), root, Options{OutputDir: out})
	require.NoError(t, err)
	_, err = Build(context.Background(), root, Options{OutputDir: out})
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.ElementsMatch(t, []string{"testplug-1.2.3.fp", "testplug-1.2.3.report.json"}, names)
}

func TestRebuildManifestIdentical(t *testing.T) {
	root := fixture(t, "2.0.0")

	first, err := Build(context.Background(), root, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	second, err := Build(context.Background(), root, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, first.Manifest.Entries, second.Manifest.Entries,
		"rebuilding an unchanged tree must produce the same manifest")
}

func TestPreBuildHook(t *testing.T) {
	root := fixture(t, "1.0.0")
	hook := "#!/bin/sh\necho generated > generated.txt\n"
	testutil.WriteFile(t, filepath.Join(root, "pre_build_hook"), hook)
	require.NoError(t, os.Chmod(filepath.Join(root, "pre_build_hook"), 0o755))
	out := t.TempDir()

	outcome, err := Build(context.Background(), root, Options{OutputDir: out})
	require.NoError(t, err)

	// The hook ran before staging, so its output is part of the artifact.
	assert.FileExists(t, filepath.Join(root, "generated.txt"))
	_, ok := outcome.Manifest.Lookup("generated.txt")
	assert.True(t, ok)
}

func TestPreBuildHookSkipped(t *testing.T) {
	root := fixture(t, "1.0.0")
	testutil.WriteFile(t, filepath.Join(root, "pre_build_hook"), "#!/bin/sh\nexit 1\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "pre_build_hook"), 0o755))

	_, err := Build(context.Background(), root, Options{OutputDir: t.TempDir(), SkipHook: true})
	require.NoError(t, err)
}

func TestPreBuildHookFailure(t *testing.T) {
	root := fixture(t, "1.0.0")
	testutil.WriteFile(t, filepath.Join(root, "pre_build_hook"), "#!/bin/sh\nexit 3\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "pre_build_hook"), 0o755))
	out := filepath.Join(t.TempDir(), "out")

	_, err := Build(context.Background(), root, Options{OutputDir: out})
	require.Error(t, err)
	assert.NoDirExists(t, out, "a failed hook must stop the build before staging")
}

func TestBuildCanceled(t *testing.T) {
	root := fixture(t, "1.0.0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, root, Options{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckWritesNothing(t *testing.T) {
	root := fixture(t, "2.0.0")
	before := treeListing(t, root)

	outcome, err := Check(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, outcome.Violations.Violations)
	assert.Equal(t, "valid", outcome.Report.Status)
	assert.Equal(t, before, treeListing(t, root))
}

func TestCheckReportsViolations(t *testing.T) {
	root := fixture(t, "2.0.0")
	testutil.WriteFile(t, filepath.Join(root, "tasks.yaml"), `- id: a
  type: shell
  stage: nowhere
  parameters:
    timeout: 5
`)
	outcome, err := Check(context.Background(), root)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	assert.Equal(t, 1, outcome.Violations.ErrorCount())
}
