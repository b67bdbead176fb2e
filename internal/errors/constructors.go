package errors

import "strings"

// Convenience functions for common error patterns

// UnsupportedFormatVersion reports a package_format_version the schema
// registry does not recognize. This is the one pre-validation fatal error:
// without a schema no further checks are meaningful.
func UnsupportedFormatVersion(got string, known []string) *PackError {
	return New(CategoryFormatVersion, SeverityFatal,
		"unsupported package format version").
		WithContext("declared", got).
		WithContext("supported", strings.Join(known, ", "))
}

// ValidationFailed wraps an aggregated violation set once validation of the
// whole tree has completed. Individual checks never produce errors on
// their own.
func ValidationFailed(errorCount, warningCount int) *PackError {
	return New(CategoryValidation, SeverityFatal, "plugin tree validation failed").
		WithContext("errors", errorCount).
		WithContext("warnings", warningCount)
}

// StagePlanFailed reports an unresolvable ordering problem in the task
// stage plan.
func StagePlanFailed(cause error) *PackError {
	return Wrap(cause, CategoryStagePlan, SeverityFatal, "stage planning failed")
}

// AssemblyFailed reports an I/O or layout failure while staging the artifact.
func AssemblyFailed(step string, cause error) *PackError {
	return Wrap(cause, CategoryAssembly, SeverityFatal, "package assembly failed").
		WithContext("step", step)
}

// HookFailed reports a non-zero pre_build_hook exit.
func HookFailed(path string, cause error) *PackError {
	return Wrap(cause, CategoryAssembly, SeverityFatal, "pre-build hook failed").
		WithContext("hook", path)
}

// DocumentUnreadable reports a plugin document that could not be read or
// parsed at all.
func DocumentUnreadable(document string, cause error) *PackError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "cannot read plugin document").
		WithContext("document", document)
}

// InternalError flags a defect in pluginpack itself.
func InternalError(message string, cause error) *PackError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
