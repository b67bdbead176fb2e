package builder

import (
	"context"

	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/errors"
	"git.home.luguber.info/inful/pluginpack/internal/manifest"
	"git.home.luguber.info/inful/pluginpack/internal/schema"
)

// Check runs document loading, schema resolution, validation, and
// repository inspection without staging anything. It is the 'validate'
// command's entry point and performs no filesystem writes.
func Check(ctx context.Context, pluginRoot string) (*Outcome, error) {
	tree, err := descriptor.LoadTree(pluginRoot)
	if err != nil {
		return nil, errors.DocumentUnreadable(pluginRoot, err)
	}
	sch, err := schema.For(tree.Meta.PackageFormatVersion)
	if err != nil {
		return nil, err
	}

	report := manifest.NewBuildReport(tree.Meta.Name, tree.Meta.Version, sch.FormatVersion)
	report.Layout = sch.Layout.String()

	st := &state{
		tree:    tree,
		schema:  sch,
		outcome: &Outcome{Report: report},
	}
	if err := runValidate(ctx, st); err != nil {
		report.Status = "failed"
		return st.outcome, err
	}
	report.Status = "valid"
	return st.outcome, nil
}
