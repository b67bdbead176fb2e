// Package validate checks a plugin tree against the schema for its
// declared package format version. Checks are exhaustive: every failed
// check appends one violation and the rest continue, so plugin authors get
// the full list of problems in one run.
package validate

// Severity indicates whether a violation blocks the build.
type Severity int

const (
	// SeverityWarning is reported but does not block the build.
	SeverityWarning Severity = iota
	// SeverityError blocks the build before stage planning.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Violation represents a single problem found in a plugin document or
// repository. Document and Path together locate the offending value.
type Violation struct {
	Document string   // Document or file the problem was found in
	Path     string   // Path within the document ("releases[0].os"), empty for file-level problems
	Rule     string   // Rule identifier ("release-os", "task-timeout")
	Severity Severity // Whether this blocks the build
	Message  string   // Human-readable description naming the offending value
}

// Result contains all violations found while validating one plugin tree.
type Result struct {
	Violations []Violation
}

// Add appends a violation.
func (r *Result) Add(v Violation) {
	r.Violations = append(r.Violations, v)
}

// Merge appends all violations from other.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasErrors returns true if any blocking violation exists.
func (r *Result) HasErrors() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of blocking violations.
func (r *Result) ErrorCount() int {
	count := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of non-blocking violations.
func (r *Result) WarningCount() int {
	count := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityWarning {
			count++
		}
	}
	return count
}
