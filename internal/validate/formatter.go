package validate

import (
	"fmt"
	"io"
)

// Write renders the violation set for plugin authors, one line per
// violation, naming document and path. Intended for stderr so it stays
// separate from progress output.
func (r *Result) Write(w io.Writer) {
	for _, v := range r.Violations {
		loc := v.Document
		if v.Path != "" {
			loc = v.Document + ": " + v.Path
		}
		fmt.Fprintf(w, "%s %s [%s] %s\n", v.Severity, loc, v.Rule, v.Message)
	}
	if len(r.Violations) > 0 {
		fmt.Fprintf(w, "%d error(s), %d warning(s)\n", r.ErrorCount(), r.WarningCount())
	}
}
