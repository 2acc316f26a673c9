package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

// errorWriter is a writer that always returns an error.
type errorWriter struct{}

func (e *errorWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func sampleReport() Report {
	return Report{
		FilesScanned: 2,
		Findings: []scanner.Finding{
			{RuleID: "io-error", Severity: scanner.SeverityInfo, Position: scanner.Position{File: "a.go"}, Message: "file skipped: permission denied"},
			{RuleID: "error-strings", Severity: scanner.SeverityWarning, Position: scanner.Position{File: "b.go", Line: 12, Column: 3}, Message: "error string passed to errors.New should not end with a period"},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", sampleReport(), Options{}))
	want := "a.go:0: [io-error] file skipped: permission denied\n" +
		"b.go:12: [error-strings] error string passed to errors.New should not end with a period\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTextColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport(), Options{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "[error-strings]")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", sampleReport(), Options{}))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, map[string]any{
		"rule":     "error-strings",
		"severity": "warning",
		"file":     "b.go",
		"line":     float64(12),
		"message":  "error string passed to errors.New should not end with a period",
	}, records[1])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Report{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "ndjson", sampleReport(), Options{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, Record{Rule: "io-error", Severity: "info", File: "a.go", Message: "file skipped: permission denied"}, rec)
}

func TestWriteErrors(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", sampleReport(), Options{}))
	assert.Error(t, Write(&errorWriter{}, "text", sampleReport(), Options{}))
	assert.Error(t, NewEmitter(&errorWriter{}).Emit(sampleReport().Findings[0]))
}

func TestExitCode(t *testing.T) {
	infoOnly := Report{Findings: []scanner.Finding{{Severity: scanner.SeverityInfo}}}
	assert.Equal(t, ExitOK, infoOnly.ExitCode(scanner.SeverityWarning))
	assert.Equal(t, ExitFindings, infoOnly.ExitCode(scanner.SeverityInfo))

	assert.Equal(t, ExitOK, Report{}.ExitCode(scanner.SeverityInfo))

	internal := Report{Findings: []scanner.Finding{{Severity: scanner.SeverityInternalError}}}
	assert.Equal(t, ExitFindings, internal.ExitCode(scanner.SeverityError))

	assert.Equal(t, ExitFindings, sampleReport().ExitCode(scanner.SeverityWarning))
	assert.Equal(t, ExitOK, sampleReport().ExitCode(scanner.SeverityError))
}
