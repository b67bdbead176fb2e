package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeDoc(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestLoadTree(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, MetadataFile, `
name: demo
title: Demo Plugin
version: 1.0.0
package_format_version: 2.0.0
releases:
  - os: ubuntu
    os_version: "22.04"
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts
    repository_path: repositories/ubuntu
`)
	writeDoc(t, root, TasksFile, `
- id: setup
  type: shell
  stage: deployment
  role: "controller"
  parameters:
    cmd: ./setup.sh
    timeout: 60
`)
	writeDoc(t, root, EnvConfigFile, `
attributes:
  endpoint:
    type: text
    label: Endpoint
`)

	tree, err := LoadTree(root)
	require.NoError(t, err)

	assert.Equal(t, root, tree.Root)
	assert.Equal(t, "demo", tree.Meta.Name)
	assert.Equal(t, "2.0.0", tree.Meta.PackageFormatVersion)
	require.Len(t, tree.Meta.Releases, 1)
	assert.Equal(t, "ubuntu", tree.Meta.Releases[0].OS)
	assert.Equal(t, "22.04", tree.Meta.Releases[0].OSVersion)

	require.Len(t, tree.Tasks, 1)
	assert.Equal(t, StringOrList{"controller"}, tree.Tasks[0].Role)
	timeout, ok := tree.Tasks[0].Parameters.Get("timeout")
	require.True(t, ok)
	assert.Equal(t, 60, timeout)

	require.NotNil(t, tree.EnvConfig)
	assert.Equal(t, []string{"endpoint"}, tree.EnvConfig.AttributeOrder())
}

func TestLoadTreeOptionalDocuments(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, MetadataFile, "name: demo\nversion: 1.0.0\npackage_format_version: 1.0.0\n")

	tree, err := LoadTree(root)
	require.NoError(t, err)
	assert.Empty(t, tree.Tasks)
	assert.Nil(t, tree.EnvConfig)
}

func TestLoadTreeMissingMetadata(t *testing.T) {
	_, err := LoadTree(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestLoadTreeMalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, MetadataFile, "name: [unclosed\n")
	_, err := LoadTree(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MetadataFile)
}

func TestLoadTreeExpandsEnvironment(t *testing.T) {
	t.Setenv("PLUGIN_HOMEPAGE", "https://example.com/demo")
	root := t.TempDir()
	writeDoc(t, root, MetadataFile, `
name: demo
version: 1.0.0
package_format_version: 1.0.0
homepage: ${PLUGIN_HOMEPAGE}
`)
	tree, err := LoadTree(root)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/demo", tree.Meta.Homepage)
}

func TestParamsPreserveOrder(t *testing.T) {
	var p Params
	require.NoError(t, yaml.Unmarshal([]byte("zeta: 1\nalpha: 2\nmid: 3\n"), &p))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, p.Keys())
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Has("alpha"))
	assert.False(t, p.Has("omega"))

	out, err := yaml.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha: 2\nmid: 3\n", string(out))
}

func TestParamsRejectsNonMapping(t *testing.T) {
	var p Params
	err := yaml.Unmarshal([]byte("- a\n- b\n"), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a mapping")
}

func TestStringOrList(t *testing.T) {
	var task TaskDescriptor
	require.NoError(t, yaml.Unmarshal([]byte("id: a\nrole: controller\n"), &task))
	assert.Equal(t, StringOrList{"controller"}, task.Role)

	task = TaskDescriptor{}
	require.NoError(t, yaml.Unmarshal([]byte("id: a\nrole: [controller, compute]\n"), &task))
	assert.Equal(t, StringOrList{"controller", "compute"}, task.Role)

	task = TaskDescriptor{}
	err := yaml.Unmarshal([]byte("id: a\nrole: {bad: shape}\n"), &task)
	require.Error(t, err)
}

func TestAttributeDefaultPresence(t *testing.T) {
	env := &EnvironmentConfigSchema{}
	require.NoError(t, yaml.Unmarshal([]byte(`
attributes:
  with_default:
    type: text
    label: A
    default: ""
  null_default:
    type: text
    label: B
    default:
  without:
    type: text
    label: C
`), env))

	assert.True(t, env.Attributes["with_default"].HasDefault())
	assert.True(t, env.Attributes["null_default"].HasDefault())
	assert.False(t, env.Attributes["without"].HasDefault())
	assert.Equal(t, []string{"with_default", "null_default", "without"}, env.AttributeOrder())
}
