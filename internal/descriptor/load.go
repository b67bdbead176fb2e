package descriptor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Tree is the materialized set of plugin documents for one build
// invocation. All fields are read-only after LoadTree returns.
type Tree struct {
	Root      string
	Meta      *PluginDescriptor
	Tasks     []TaskDescriptor
	EnvConfig *EnvironmentConfigSchema
}

// LoadTree reads all plugin documents from root. metadata.yaml is
// mandatory; tasks.yaml and environment_config.yaml are optional documents
// (an absent tasks.yaml means the plugin ships no deployment tasks).
//
// A .env file next to the plugin tree is honored for tool settings
// (PLUGINPACK_* variables) before document expansion; document content may
// reference environment variables the same way the rest of the toolchain
// does.
func LoadTree(root string) (*Tree, error) {
	// Not an error if absent; authors rarely carry one.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	tree := &Tree{Root: root}

	meta := &PluginDescriptor{}
	if err := loadDocument(filepath.Join(root, MetadataFile), meta); err != nil {
		return nil, err
	}
	tree.Meta = meta

	tasksPath := filepath.Join(root, TasksFile)
	if _, err := os.Stat(tasksPath); err == nil {
		var tasks []TaskDescriptor
		if err := loadDocument(tasksPath, &tasks); err != nil {
			return nil, err
		}
		tree.Tasks = tasks
	}

	envPath := filepath.Join(root, EnvConfigFile)
	if _, err := os.Stat(envPath); err == nil {
		env := &EnvironmentConfigSchema{}
		if err := loadDocument(envPath, env); err != nil {
			return nil, err
		}
		tree.EnvConfig = env
	}

	return tree, nil
}

// loadDocument reads a single YAML document with environment variable
// expansion, decoding into out.
func loadDocument(path string, out any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("document not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
