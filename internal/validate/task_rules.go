package validate

import (
	"fmt"
	"slices"
	"strings"

	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
	"git.home.luguber.info/inful/pluginpack/internal/stageplan"
	"git.home.luguber.info/inful/pluginpack/internal/util/sets"
)

func (v *Validator) checkTasks(tree *descriptor.Tree, res *Result) {
	doc := descriptor.TasksFile
	seen := sets.New[string]()

	for i, task := range tree.Tasks {
		at := func(field string) string { return fmt.Sprintf("[%d].%s", i, field) }

		if task.ID == "" {
			res.Add(Violation{
				Document: doc, Path: at("id"), Rule: "task-id-required",
				Severity: SeverityError,
				Message:  "id is required",
			})
		} else if seen.Has(task.ID) {
			res.Add(Violation{
				Document: doc, Path: at("id"), Rule: "task-id-unique",
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate task id %q", task.ID),
			})
		} else {
			seen.Add(task.ID)
		}

		if task.Type == "" {
			res.Add(Violation{
				Document: doc, Path: at("type"), Rule: "task-type",
				Severity: SeverityError,
				Message:  "type is required",
			})
		} else if !v.schema.TaskTypes.Has(task.Type) {
			res.Add(Violation{
				Document: doc, Path: at("type"), Rule: "task-type",
				Severity: SeverityError,
				Message: fmt.Sprintf("unknown task type %q, allowed: %s",
					task.Type, strings.Join(sets.Sorted(v.schema.TaskTypes), ", ")),
			})
		}

		v.checkTaskStage(doc, at("stage"), task, res)
		v.checkTaskTimeout(doc, i, task, res)
	}
}

func (v *Validator) checkTaskStage(doc, at string, task descriptor.TaskDescriptor, res *Result) {
	if task.Stage == "" {
		res.Add(Violation{
			Document: doc, Path: at, Rule: "task-stage",
			Severity: SeverityError,
			Message:  "stage is required",
		})
		return
	}
	name, _, err := stageplan.ParseStage(task.Stage)
	if err != nil {
		res.Add(Violation{
			Document: doc, Path: at, Rule: "task-stage",
			Severity: SeverityError,
			Message:  err.Error(),
		})
		return
	}
	if !slices.Contains(v.schema.StageOrder, name) {
		res.Add(Violation{
			Document: doc, Path: at, Rule: "task-stage",
			Severity: SeverityError,
			Message: fmt.Sprintf("unknown stage %q, allowed: %s",
				name, strings.Join(v.schema.StageOrder, ", ")),
		})
	}
}

// checkTaskTimeout enforces an explicit timeout for task types that need
// one. The message spells out the consequence instead of a generic "field
// missing": the vague form was a recurring support headache.
func (v *Validator) checkTaskTimeout(doc string, i int, task descriptor.TaskDescriptor, res *Result) {
	if !v.schema.TimeoutRequired.Has(task.Type) {
		return
	}
	at := fmt.Sprintf("[%d].parameters.timeout", i)
	raw, ok := task.Parameters.Get("timeout")
	if !ok {
		res.Add(Violation{
			Document: doc, Path: at, Rule: "task-timeout",
			Severity: SeverityError,
			Message: fmt.Sprintf(
				"task %q (type %s) must declare parameters.timeout: without an explicit timeout the deployment agent would wait on a hung command forever",
				task.ID, task.Type),
		})
		return
	}
	switch raw.(type) {
	case int, int64, float64:
	default:
		res.Add(Violation{
			Document: doc, Path: at, Rule: "task-timeout",
			Severity: SeverityError,
			Message: fmt.Sprintf(
				"task %q: parameters.timeout must be a number of seconds, got %T", task.ID, raw),
		})
	}
}
