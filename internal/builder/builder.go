// Package builder wires the packaging pipeline together: document loading,
// schema resolution, validation with repository inspection, stage
// planning, assembly, and integrity manifest generation. One call to
// Build is one batch invocation; there are no background tasks, and
// callers targeting the same output directory must serialize themselves.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pluginpack/internal/assemble"
	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/errors"
	"git.home.luguber.info/inful/pluginpack/internal/manifest"
	"git.home.luguber.info/inful/pluginpack/internal/repo"
	"git.home.luguber.info/inful/pluginpack/internal/schema"
	"git.home.luguber.info/inful/pluginpack/internal/stageplan"
	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
	"git.home.luguber.info/inful/pluginpack/internal/validate"
)

// Options controls one build invocation.
type Options struct {
	// OutputDir receives the artifact. Defaults to the plugin root.
	OutputDir string

	// StrictTies makes equal stage+postfix positions a fatal planning
	// error instead of deterministic declaration-order tie-break.
	StrictTies bool

	// SkipHook disables the pre_build_hook execution.
	SkipHook bool
}

// Outcome is the result of one invocation. Violations is populated even
// when Build returns an error so callers can present the full list.
type Outcome struct {
	ArtifactPath string
	Plan         []stageplan.Step
	Violations   *validate.Result
	Manifest     *manifest.Manifest
	Report       *manifest.BuildReport
}

// state is threaded through the pipeline stages.
type state struct {
	opts    Options
	tree    *descriptor.Tree
	schema  *schema.Schema
	asm     *assemble.Assembler
	outcome *Outcome
}

type stageFn func(ctx context.Context, st *state) error

type stageDef struct {
	name string
	fn   stageFn
}

// Build runs the full pipeline for the plugin tree at pluginRoot. On
// success the returned outcome carries the artifact path; on failure the
// error is either a single fatal structural error or an aggregated
// validation failure, never a truncated first-error view.
func Build(ctx context.Context, pluginRoot string, opts Options) (*Outcome, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = pluginRoot
	}

	tree, err := descriptor.LoadTree(pluginRoot)
	if err != nil {
		return nil, errors.DocumentUnreadable(pluginRoot, err)
	}

	// Resolving the schema is the one fatal pre-validation step: nothing
	// is written before it, so an unknown format version leaves the
	// filesystem untouched.
	sch, err := schema.For(tree.Meta.PackageFormatVersion)
	if err != nil {
		return nil, err
	}

	report := manifest.NewBuildReport(tree.Meta.Name, tree.Meta.Version, sch.FormatVersion)
	report.Layout = sch.Layout.String()

	st := &state{
		opts:    opts,
		tree:    tree,
		schema:  sch,
		asm:     assemble.New(tree, sch, opts.OutputDir),
		outcome: &Outcome{Report: report},
	}
	defer st.asm.Discard()

	stages := []stageDef{
		{"pre-build-hook", runPreBuildHook},
		{"validate", runValidate},
		{"plan", runPlan},
		{"assemble", runAssemble},
		{"manifest", runManifest},
		{"finalize", runFinalize},
		{"publish", runPublish},
	}

	if err := runStages(ctx, st, stages); err != nil {
		report.Status = "failed"
		return st.outcome, err
	}

	report.Status = "success"
	report.ArtifactPath = st.outcome.ArtifactPath
	writeReport(st)
	return st.outcome, nil
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error.
func runStages(ctx context.Context, st *state, stages []stageDef) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.CategoryAssembly, errors.SeverityFatal,
				"build canceled before stage "+stage.name)
		default:
		}

		t0 := time.Now()
		err := stage.fn(ctx, st)
		dur := time.Since(t0)
		st.outcome.Report.RecordStage(stage.name, dur)

		if err != nil {
			slog.Debug("Pipeline stage failed", "stage", stage.name, "duration", dur, "error", err)
			return err
		}
		slog.Debug("Pipeline stage complete", "stage", stage.name, "duration", dur)
	}
	return nil
}

func runValidate(_ context.Context, st *state) error {
	res := validate.New(st.schema).Validate(st.tree)

	// Repository inspection joins the same aggregate so authors see
	// document and repository problems in one run.
	inspected := sets.New[string]()
	for _, rel := range st.tree.Meta.Releases {
		if rel.RepositoryPath == "" {
			continue
		}
		dir := filepath.Join(st.tree.Root, rel.RepositoryPath)
		if inspected.Has(dir) {
			continue
		}
		inspected.Add(dir)
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				continue // missing path already reported as a release-path violation
			}
			res.Add(validate.Violation{
				Document: rel.RepositoryPath, Rule: "repository-unreadable",
				Severity: validate.SeverityError,
				Message:  fmt.Sprintf("cannot access repository directory: %v", err),
			})
			continue
		}
		res.Merge(repo.Inspect(dir, rel.OS))
	}

	st.outcome.Violations = res
	st.outcome.Report.Errors = res.ErrorCount()
	st.outcome.Report.Warnings = res.WarningCount()

	if res.HasErrors() {
		return errors.ValidationFailed(res.ErrorCount(), res.WarningCount())
	}
	if res.WarningCount() > 0 {
		slog.Warn("Validation produced warnings", "count", res.WarningCount())
	}
	return nil
}

func runPlan(_ context.Context, st *state) error {
	cfg := stageplan.Config{
		Order:      st.schema.StageOrder,
		StrictTies: st.opts.StrictTies,
		RebootType: schema.TaskTypeReboot,
	}
	plan, err := stageplan.Plan(st.tree.Tasks, cfg)
	if err != nil {
		return errors.StagePlanFailed(err)
	}
	st.outcome.Plan = plan
	return nil
}

func runAssemble(_ context.Context, st *state) error {
	if err := st.asm.Stage(); err != nil {
		return errors.AssemblyFailed("stage", err)
	}
	return nil
}

func runManifest(_ context.Context, st *state) error {
	m, err := manifest.WriteFile(st.asm.SrcDir())
	if err != nil {
		return errors.AssemblyFailed("manifest", err)
	}
	st.outcome.Manifest = m
	return nil
}

func runFinalize(_ context.Context, st *state) error {
	if err := st.asm.Finalize(); err != nil {
		return errors.AssemblyFailed("finalize", err)
	}
	return nil
}

func runPublish(_ context.Context, st *state) error {
	path, err := st.asm.Publish()
	if err != nil {
		return errors.AssemblyFailed("publish", err)
	}
	st.outcome.ArtifactPath = path
	return nil
}

// writeReport stores the build report next to the artifact. Report
// problems are logged, not fatal: the artifact itself is already complete.
func writeReport(st *state) {
	data, err := st.outcome.Report.ToJSON()
	if err != nil {
		slog.Warn("Cannot serialize build report", "error", err)
		return
	}
	path := filepath.Join(st.opts.OutputDir, fmt.Sprintf("%s.report.json", st.asm.FullName()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("Cannot write build report", "path", path, "error", err)
	}
}
