package validate

import (
	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/schema"
)

// Validator applies one format version's schema to a plugin tree.
type Validator struct {
	schema *schema.Schema
}

// New creates a validator for the given schema. Resolving the schema from
// the declared format version (and failing on unknown versions) is the
// caller's job; by the time a Validator exists a schema is guaranteed.
func New(s *schema.Schema) *Validator {
	return &Validator{schema: s}
}

// Validate runs every check against the tree and returns the aggregated
// violation set. It never stops at the first problem.
func (v *Validator) Validate(tree *descriptor.Tree) *Result {
	res := &Result{}
	v.checkDescriptor(tree, res)
	v.checkTasks(tree, res)
	v.checkEnvConfig(tree, res)
	return res
}
