package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pluginpack/internal/testutil"
)

// sha256 of the empty string
const emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestGenerateSortedByPath(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "zeta.txt"), "z")
	testutil.WriteFile(t, filepath.Join(root, "alpha/one.txt"), "1")
	testutil.WriteFile(t, filepath.Join(root, "alpha/two.txt"), "2")
	testutil.WriteFile(t, filepath.Join(root, "beta.txt"), "b")

	m, err := Generate(root)
	require.NoError(t, err)

	paths := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		paths[i] = e.Path
	}
	assert.Equal(t, []string{"alpha/one.txt", "alpha/two.txt", "beta.txt", "zeta.txt"}, paths)
}

func TestGenerateDigests(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "empty.txt"), "")

	m, err := Generate(root)
	require.NoError(t, err)
	digest, ok := m.Lookup("empty.txt")
	require.True(t, ok)
	assert.Equal(t, emptyDigest, digest)

	_, ok = m.Lookup("missing.txt")
	assert.False(t, ok)
}

func TestGenerateExcludesManifestFile(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "data.txt"), "data")
	testutil.WriteFile(t, filepath.Join(root, Filename), "stale manifest content")

	m, err := Generate(root)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "data.txt", m.Entries[0].Path)
}

func TestEncodeFormat(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "a.txt"), "")

	m, err := Generate(root)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, m.Encode(&b))
	assert.Equal(t, emptyDigest+"  a.txt\n", b.String())
}

func TestWriteFileRegenerable(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "a.txt"), "alpha")
	testutil.WriteFile(t, filepath.Join(root, "sub/b.txt"), "beta")

	m1, err := WriteFile(root)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(root, Filename))
	require.NoError(t, err)

	// Writing again with the manifest already on disk must produce the
	// same bytes: the previous manifest never hashes itself.
	m2, err := WriteFile(root)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(root, Filename))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, m1.Entries, m2.Entries)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	digest, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, emptyDigest, digest)

	_, err = HashFile(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
