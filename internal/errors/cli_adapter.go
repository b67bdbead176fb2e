package errors

import (
	"fmt"
	"io"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination
// for the pluginpack CLI. All error text goes to the adapter's writer
// (stderr in production) so it never interleaves with progress output.
type CLIErrorAdapter struct {
	verbose bool
	out     io.Writer
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter writing to out.
func NewCLIErrorAdapter(verbose bool, out io.Writer, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, out: out, logger: logger}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	pe, ok := err.(*PackError)
	if !ok {
		return 1
	}
	switch pe.Category {
	case CategoryFormatVersion:
		return 2 // Unsupported format version
	case CategoryValidation, CategoryRepository:
		return 3 // Plugin tree rejected
	case CategoryStagePlan:
		return 4 // Ordering problem
	case CategoryAssembly, CategoryFileSystem:
		return 11 // Build error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	pe, ok := err.(*PackError)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return pe.Error()
	}
	switch pe.Category {
	case CategoryValidation, CategoryRepository, CategoryFormatVersion:
		return pe.Message
	default:
		return fmt.Sprintf("%s: %s", pe.Category, pe.Message)
	}
}

// Report writes the formatted error to the adapter's writer and returns
// the exit code the process should terminate with. The caller owns the
// os.Exit so tests can exercise this path.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	if pe, ok := err.(*PackError); ok && pe.Category == CategoryInternal {
		a.logger.Error("internal error", "error", pe)
	}
	fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	return a.ExitCodeFor(err)
}
