package scanner

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when a scan root contains no file the loader can handle.
var ErrNoFiles = errors.New("no files matched")

// IOError reports a file that could not be read.
type IOError struct {
	File string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("read %s: %v", e.File, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Finding converts the error into the finding recorded for the skipped file.
func (e *IOError) Finding() Finding {
	return Finding{
		RuleID:   RuleIOErrorID,
		Severity: SeverityInfo,
		Position: Position{File: e.File},
		Message:  fmt.Sprintf("file skipped: %v", e.Err),
	}
}

// ParseError reports a file that could not be turned into syntax units.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.File, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Finding() Finding {
	return Finding{
		RuleID:   RuleParseErrorID,
		Severity: SeverityInfo,
		Position: Position{File: e.File, Line: e.Line},
		Message:  fmt.Sprintf("file unparsable: %v", e.Err),
	}
}

// RuleExecutionError wraps a failure or panic raised while a rule evaluated a unit.
type RuleExecutionError struct {
	RuleID   string
	Position Position
	Err      error
}

func (e *RuleExecutionError) Error() string {
	return fmt.Sprintf("rule %s at %s: %v", e.RuleID, e.Position, e.Err)
}
func (e *RuleExecutionError) Unwrap() error { return e.Err }

func (e *RuleExecutionError) Finding() Finding {
	return Finding{
		RuleID:   RuleInternalErrorID,
		Severity: SeverityInternalError,
		Position: e.Position,
		Message:  fmt.Sprintf("rule %s failed: %v", e.RuleID, e.Err),
	}
}
