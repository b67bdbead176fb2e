// Package stageplan turns a validated task list into a deterministic,
// strictly ordered execution sequence. Each stage name maps to a fixed
// position in a global ordering; a numeric postfix on the stage string
// ("deployment/20") is the secondary sort key; ties fall back to
// declaration order, which makes planning stable across runs.
package stageplan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/pluginpack/internal/descriptor"
)

// Config is the stage vocabulary and tie policy for one plan. It is
// passed in explicitly so format versions with different vocabularies can
// coexist without shared package state.
type Config struct {
	// Order lists the legal stage names, first-to-last.
	Order []string

	// StrictTies makes equal stage+postfix pairs a planning failure
	// instead of falling back to declaration order.
	StrictTies bool

	// RebootType is the task type recorded as a sequence marker rather
	// than ordinary work. Empty disables marker handling.
	RebootType string
}

// Step is one entry of the planned sequence.
type Step struct {
	Task descriptor.TaskDescriptor

	// Stage is the resolved stage name without postfix.
	Stage string

	// Priority is the numeric postfix, 0 when none was declared.
	Priority int

	// Reboot marks a "pause deployment, restart node, resume" entry.
	// Downstream executors special-case these instead of running them.
	Reboot bool
}

// ParseStage splits a declared stage string into its name and optional
// numeric postfix.
func ParseStage(stage string) (name string, priority int, err error) {
	name, post, found := strings.Cut(stage, "/")
	if !found {
		return name, 0, nil
	}
	n, err := strconv.Atoi(post)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("stage %q: postfix %q must be a non-negative integer", stage, post)
	}
	return name, n, nil
}

// Plan orders tasks by (stage position, postfix, declaration order) and
// returns the sequence. Unknown stage names are rejected here as well even
// though validation catches them first; a planner must not silently place
// a task it cannot rank.
func Plan(tasks []descriptor.TaskDescriptor, cfg Config) ([]Step, error) {
	rank := make(map[string]int, len(cfg.Order))
	for i, name := range cfg.Order {
		rank[name] = i
	}

	steps := make([]Step, 0, len(tasks))
	for _, task := range tasks {
		name, priority, err := ParseStage(task.Stage)
		if err != nil {
			return nil, err
		}
		if _, ok := rank[name]; !ok {
			return nil, fmt.Errorf("task %q: unknown stage %q", task.ID, name)
		}
		steps = append(steps, Step{
			Task:     task,
			Stage:    name,
			Priority: priority,
			Reboot:   cfg.RebootType != "" && task.Type == cfg.RebootType,
		})
	}

	if cfg.StrictTies {
		if err := checkTies(steps, rank); err != nil {
			return nil, err
		}
	}

	// SliceStable preserves declaration order for equal keys.
	sort.SliceStable(steps, func(i, j int) bool {
		ri, rj := rank[steps[i].Stage], rank[steps[j].Stage]
		if ri != rj {
			return ri < rj
		}
		return steps[i].Priority < steps[j].Priority
	})
	return steps, nil
}

// checkTies reports the first stage+postfix collision. Under StrictTies a
// tie is an authoring mistake: two tasks claiming the same slot with no
// declared relative order.
func checkTies(steps []Step, rank map[string]int) error {
	type slot struct{ rank, priority int }
	owner := make(map[slot]string, len(steps))
	for _, s := range steps {
		key := slot{rank[s.Stage], s.Priority}
		if prev, taken := owner[key]; taken {
			return fmt.Errorf(
				"tasks %q and %q both declare stage %s/%d; strict tie checking requires unique positions",
				prev, s.Task.ID, s.Stage, s.Priority)
		}
		owner[key] = s.Task.ID
	}
	return nil
}
