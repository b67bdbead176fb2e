package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BuildReport records one pipeline invocation: what went in, what came
// out, and how long each stage took. It is written next to the artifact
// for operators; it is deliberately not part of the artifact itself, so
// timestamps here never break manifest determinism.
type BuildReport struct {
	ID             string                   `json:"id"`
	PluginName     string                   `json:"plugin_name"`
	PluginVersion  string                   `json:"plugin_version"`
	FormatVersion  string                   `json:"format_version"`
	Layout         string                   `json:"layout"`
	Timestamp      time.Time                `json:"timestamp"`
	Status         string                   `json:"status"`
	ArtifactPath   string                   `json:"artifact_path,omitempty"`
	StageDurations map[string]time.Duration `json:"stage_durations_ns,omitempty"`
	Errors         int                      `json:"errors"`
	Warnings       int                      `json:"warnings"`
}

// NewBuildReport starts a report for one invocation.
func NewBuildReport(pluginName, pluginVersion, formatVersion string) *BuildReport {
	return &BuildReport{
		ID:             uuid.NewString(),
		PluginName:     pluginName,
		PluginVersion:  pluginVersion,
		FormatVersion:  formatVersion,
		Timestamp:      time.Now().UTC(),
		Status:         "running",
		StageDurations: map[string]time.Duration{},
	}
}

// RecordStage stores the wall-clock duration of one pipeline stage.
func (r *BuildReport) RecordStage(name string, d time.Duration) {
	r.StageDurations[name] = d
}

// ToJSON serializes the report.
func (r *BuildReport) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal build report: %w", err)
	}
	return data, nil
}
