package analyzers

import (
	"errors"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

type stubRule struct{}

func (stubRule) ID() string                { return "stub-rule" }
func (stubRule) Description() string       { return "Always fails" }
func (stubRule) Kinds() []scanner.UnitKind { return []scanner.UnitKind{scanner.KindFunction} }
func (stubRule) Check(scanner.Unit) ([]scanner.Finding, error) {
	return nil, errors.New("stub failure")
}
