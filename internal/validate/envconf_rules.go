package validate

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
)

// restrictionRef matches attribute references inside a UI restriction
// expression, e.g. "attributes.use_ssl.value == true".
var restrictionRef = regexp.MustCompile(`attributes\.([a-zA-Z0-9_]+)`)

// checkEnvConfig validates the environment configuration schema. An absent
// document, or one without an attributes block, is valid: attributes are
// optional. Present attribute entries must each be complete.
func (v *Validator) checkEnvConfig(tree *descriptor.Tree, res *Result) {
	if tree.EnvConfig == nil || tree.EnvConfig.Attributes == nil {
		return
	}
	doc := descriptor.EnvConfigFile
	declared := sets.New(tree.EnvConfig.AttributeOrder()...)

	for _, name := range tree.EnvConfig.AttributeOrder() {
		attr := tree.EnvConfig.Attributes[name]
		at := func(field string) string { return fmt.Sprintf("attributes.%s.%s", name, field) }

		if attr.Type == "" {
			res.Add(Violation{
				Document: doc, Path: at("type"), Rule: "attribute-type",
				Severity: SeverityError,
				Message:  "type is required",
			})
		} else if !v.schema.AttributeTypes.Has(attr.Type) {
			res.Add(Violation{
				Document: doc, Path: at("type"), Rule: "attribute-type",
				Severity: SeverityError,
				Message: fmt.Sprintf("unknown attribute type %q, allowed: %s",
					attr.Type, strings.Join(sets.Sorted(v.schema.AttributeTypes), ", ")),
			})
		}

		if attr.Label == "" {
			res.Add(Violation{
				Document: doc, Path: at("label"), Rule: "attribute-label",
				Severity: SeverityError,
				Message:  "label is required",
			})
		}

		// A default on a required attribute would silently mask its
		// absence in the UI.
		if attr.Required && attr.HasDefault() {
			res.Add(Violation{
				Document: doc, Path: at("default"), Rule: "attribute-default",
				Severity: SeverityError,
				Message: fmt.Sprintf(
					"attribute %q is required and must not declare a default", name),
			})
		}

		for _, match := range restrictionRef.FindAllStringSubmatch(attr.Restriction, -1) {
			ref := match[1]
			if !declared.Has(ref) {
				res.Add(Violation{
					Document: doc, Path: at("restriction"), Rule: "restriction-ref",
					Severity: SeverityError,
					Message: fmt.Sprintf(
						"restriction references undeclared attribute %q", ref),
				})
			}
		}
	}
}
