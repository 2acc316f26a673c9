package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

// Process exit statuses.
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitFailure  = 2
)

// Report is the outcome of one check run.
type Report struct {
	// Findings are sorted and deduplicated.
	Findings     []scanner.Finding
	FilesScanned int
	Interrupted  bool
}

// ExitCode returns ExitFindings when any finding is at least failOn severe.
func (r Report) ExitCode(failOn scanner.Severity) int {
	for _, f := range r.Findings {
		if f.Severity.AtLeast(failOn) {
			return ExitFindings
		}
	}
	return ExitOK
}

// Record is the machine-readable form of a finding.
type Record struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

func toRecord(f scanner.Finding) Record {
	return Record{
		Rule:     f.RuleID,
		Severity: string(f.Severity),
		File:     f.Position.File,
		Line:     f.Position.Line,
		Message:  f.Message,
	}
}

// Options tune rendering.
type Options struct {
	Color bool
}

// Write renders r in the named format: text, json or ndjson.
func Write(w io.Writer, format string, r Report, opts Options) error {
	switch format {
	case "text", "":
		return WriteText(w, r, opts)
	case "json":
		return WriteJSON(w, r)
	case "ndjson":
		e := NewEmitter(w)
		for _, f := range r.Findings {
			if err := e.Emit(f); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

var severityColors = map[scanner.Severity]color.Attribute{
	scanner.SeverityInfo:          color.FgCyan,
	scanner.SeverityWarning:       color.FgYellow,
	scanner.SeverityError:         color.FgRed,
	scanner.SeverityInternalError: color.FgMagenta,
}

// WriteText renders one "file:line: [rule-id] message" line per finding.
func WriteText(w io.Writer, r Report, opts Options) error {
	for _, f := range r.Findings {
		tag := color.New(severityColors[f.Severity], color.Bold)
		if opts.Color {
			tag.EnableColor()
		} else {
			tag.DisableColor()
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s\n", f.Position, tag.Sprintf("[%s]", f.RuleID), f.Message); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the findings as one JSON array; an empty report is [].
func WriteJSON(w io.Writer, r Report) error {
	records := make([]Record, 0, len(r.Findings))
	for _, f := range r.Findings {
		records = append(records, toRecord(f))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Emitter writes NDJSON records to an io.Writer safely across goroutines.
type Emitter struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w}
}

// Emit serializes the finding and appends a newline.
func (e *Emitter) Emit(f scanner.Finding) error {
	payload, err := json.Marshal(toRecord(f))
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, err = e.writer.Write(append(payload, '\n'))
	return err
}
