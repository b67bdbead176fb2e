package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pluginpack/internal/errors"
)

func TestForKnownVersions(t *testing.T) {
	for _, v := range []string{"1.0.0", "2.0.0", "3.0.0"} {
		s, err := For(v)
		require.NoError(t, err, "version %s", v)
		assert.Equal(t, v, s.FormatVersion)
		assert.NotEmpty(t, s.StageOrder)
		assert.NotZero(t, len(s.TaskTypes))
	}
}

func TestForUnknownVersionFails(t *testing.T) {
	_, err := For("9.9.9")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFormatVersion))
}

func TestNoFallbackBetweenVersions(t *testing.T) {
	// A near-miss of a known version must not resolve to anything.
	for _, v := range []string{"1.0", "2", "2.0.1", ""} {
		_, err := For(v)
		assert.Error(t, err, "version %q", v)
	}
}

func TestSupportedSorted(t *testing.T) {
	assert.Equal(t, []string{"1.0.0", "2.0.0", "3.0.0"}, Supported())
}

func TestLayoutSelection(t *testing.T) {
	v1, _ := For("1.0.0")
	v2, _ := For("2.0.0")
	v3, _ := For("3.0.0")
	assert.Equal(t, LayoutLegacyBundle, v1.Layout)
	assert.Equal(t, LayoutNativePackage, v2.Layout)
	assert.Equal(t, LayoutNativePackage, v3.Layout)
	assert.False(t, v2.IncludeInstallHooks)
	assert.True(t, v3.IncludeInstallHooks)
}

func TestProvenanceGate(t *testing.T) {
	v1, _ := For("1.0.0")
	v2, _ := For("2.0.0")
	assert.False(t, v1.RequireProvenance)
	assert.True(t, v2.RequireProvenance)
	assert.True(t, v2.AtLeast("2.0.0"))
	assert.False(t, v1.AtLeast("2.0.0"))
}
