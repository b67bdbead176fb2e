package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackErrorFormatting(t *testing.T) {
	err := New(CategoryValidation, SeverityFatal, "plugin tree validation failed")
	assert.Equal(t, "validation (fatal): plugin tree validation failed", err.Error())

	cause := stderrors.New("disk full")
	wrapped := Wrap(cause, CategoryAssembly, SeverityFatal, "package assembly failed")
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, cause))
}

func TestWithContext(t *testing.T) {
	err := New(CategoryFormatVersion, SeverityFatal, "unsupported").
		WithContext("declared", "9.9.9")
	assert.Equal(t, "9.9.9", err.Context["declared"])
}

func TestIsCategory(t *testing.T) {
	err := UnsupportedFormatVersion("9.9.9", []string{"1.0.0", "2.0.0"})
	assert.True(t, IsCategory(err, CategoryFormatVersion))
	assert.False(t, IsCategory(err, CategoryValidation))
	assert.False(t, IsCategory(stderrors.New("plain"), CategoryValidation))
	assert.False(t, IsCategory(nil, CategoryValidation))
}

func TestExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, io.Discard, nil)

	cases := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{stderrors.New("plain"), 1},
		{New(CategoryFormatVersion, SeverityFatal, "m"), 2},
		{New(CategoryValidation, SeverityFatal, "m"), 3},
		{New(CategoryRepository, SeverityFatal, "m"), 3},
		{New(CategoryStagePlan, SeverityFatal, "m"), 4},
		{New(CategoryAssembly, SeverityFatal, "m"), 11},
		{New(CategoryFileSystem, SeverityFatal, "m"), 11},
		{New(CategoryInternal, SeverityFatal, "m"), 10},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, adapter.ExitCodeFor(c.err), "error: %v", c.err)
	}
}

func TestFormatErrorCompactByDefault(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, io.Discard, nil)
	err := ValidationFailed(2, 1)
	msg := adapter.FormatError(err)
	assert.Equal(t, "plugin tree validation failed", msg)
}

func TestFormatErrorVerbose(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, io.Discard, nil)
	err := ValidationFailed(2, 1)
	msg := adapter.FormatError(err)
	assert.Contains(t, msg, "validation (fatal)")
}

func TestFormatErrorPlain(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, io.Discard, nil)
	assert.Equal(t, "Error: boom", adapter.FormatError(stderrors.New("boom")))
	assert.Equal(t, "", adapter.FormatError(nil))
}

func TestReportWritesAndReturnsCode(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, &buf, nil)

	code := adapter.Report(ValidationFailed(1, 0))
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "plugin tree validation failed")

	require.Equal(t, 0, adapter.Report(nil))
}
