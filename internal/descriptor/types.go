package descriptor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Plugin document filenames inside a plugin tree. These names are part of
// the on-disk contract with plugin authors and never change per format
// version.
const (
	MetadataFile  = "metadata.yaml"
	TasksFile     = "tasks.yaml"
	EnvConfigFile = "environment_config.yaml"
)

// PluginDescriptor is the parsed metadata.yaml document. It is a read-only
// input: the pipeline validates and consumes it, never mutates it.
type PluginDescriptor struct {
	Name                 string    `yaml:"name"`
	Title                string    `yaml:"title,omitempty"`
	Description          string    `yaml:"description,omitempty"`
	Version              string    `yaml:"version"`
	PackageFormatVersion string    `yaml:"package_format_version"`
	Groups               []string  `yaml:"groups,omitempty"`
	Licenses             []string  `yaml:"licenses,omitempty"`
	Authors              []string  `yaml:"authors,omitempty"`
	Homepage             string    `yaml:"homepage,omitempty"`
	Releases             []Release `yaml:"releases"`
}

// Release declares one supported target OS and where its deployment
// scripts and native package repository live inside the plugin tree.
type Release struct {
	OS                    string `yaml:"os"`
	OSVersion             string `yaml:"os_version,omitempty"`
	DeploymentMode        string `yaml:"deployment_mode"`
	DeploymentScriptsPath string `yaml:"deployment_scripts_path"`
	RepositoryPath        string `yaml:"repository_path"`
}

// TaskDescriptor is one entry of the tasks.yaml document.
type TaskDescriptor struct {
	ID         string       `yaml:"id"`
	Type       string       `yaml:"type"`
	Stage      string       `yaml:"stage"`
	Role       StringOrList `yaml:"role,omitempty"`
	Parameters Params       `yaml:"parameters,omitempty"`
}

// EnvironmentConfigSchema is the parsed environment_config.yaml document.
// The attributes block is optional; when present each attribute must carry
// its own required sub-fields (enforced by the validator, not the parser).
type EnvironmentConfigSchema struct {
	Attributes map[string]Attribute `yaml:"attributes,omitempty"`

	// attributeOrder preserves document order of the attributes mapping
	// so validation output is stable.
	attributeOrder []string
}

// Attribute is one declarative attribute definition.
type Attribute struct {
	Type        string `yaml:"type"`
	Label       string `yaml:"label,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Restriction string `yaml:"restriction,omitempty"`

	hasDefault bool
}

// HasDefault reports whether the document declared a default key at all,
// as opposed to declaring it with a null value.
func (a Attribute) HasDefault() bool { return a.hasDefault }

// AttributeOrder returns attribute names in document order.
func (e *EnvironmentConfigSchema) AttributeOrder() []string {
	return e.attributeOrder
}

// UnmarshalYAML decodes the schema while recording attribute declaration
// order and default-key presence, which plain map decoding would lose.
func (e *EnvironmentConfigSchema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("environment config: expected a mapping, got %s", nodeKind(node))
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		if key != "attributes" {
			continue
		}
		attrs := node.Content[i+1]
		if attrs.Kind != yaml.MappingNode {
			return fmt.Errorf("environment config: attributes must be a mapping, got %s", nodeKind(attrs))
		}
		e.Attributes = make(map[string]Attribute, len(attrs.Content)/2)
		for j := 0; j < len(attrs.Content)-1; j += 2 {
			name := attrs.Content[j].Value
			var attr Attribute
			if err := attrs.Content[j+1].Decode(&attr); err != nil {
				return fmt.Errorf("environment config: attribute %q: %w", name, err)
			}
			attr.hasDefault = mappingHasKey(attrs.Content[j+1], "default")
			e.Attributes[name] = attr
			e.attributeOrder = append(e.attributeOrder, name)
		}
	}
	return nil
}

// StringOrList accepts either a scalar string or a sequence of strings.
// Task role selectors historically allowed both spellings.
type StringOrList []string

// UnmarshalYAML implements flexible decoding for StringOrList.
func (s *StringOrList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = StringOrList{v}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = StringOrList(v)
		return nil
	default:
		return fmt.Errorf("role: expected string or list of strings, got %s", nodeKind(node))
	}
}

func mappingHasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
