package descriptor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Params is an ordered key-value payload with opaque values. Task
// parameters are dynamically shaped; the pipeline validates structural
// presence of a handful of keys (timeout and friends) and passes the rest
// through untouched.
type Params struct {
	keys   []string
	values map[string]any
}

// UnmarshalYAML decodes a mapping node preserving key order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parameters: expected a mapping, got %s", nodeKind(node))
	}
	p.values = make(map[string]any, len(node.Content)/2)
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("parameters: key %q: %w", key, err)
		}
		if _, dup := p.values[key]; !dup {
			p.keys = append(p.keys, key)
		}
		p.values[key] = v
	}
	return nil
}

// MarshalYAML re-emits the payload in declaration order.
func (p Params) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range p.keys {
		var key, val yaml.Node
		key.SetString(k)
		if err := val.Encode(p.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// Get returns the value for key and whether it was declared.
func (p Params) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key was declared.
func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Keys returns parameter names in declaration order.
func (p Params) Keys() []string { return p.keys }

// Len returns the number of declared parameters.
func (p Params) Len() int { return len(p.keys) }
