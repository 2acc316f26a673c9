package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tnqn/code-review-comments/internal/config"
	"github.com/tnqn/code-review-comments/internal/report"
	"github.com/tnqn/code-review-comments/internal/scanner"
	"github.com/tnqn/code-review-comments/internal/source"
)

// UsageError marks a failure caused by how the tool was invoked (bad flags,
// bad configuration, unknown rule IDs) rather than by the scanned code.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// IsUsage reports whether err is or wraps a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// Check loads the tree under root, applies the configured rules and returns
// the aggregated report. Per-file and per-rule failures are findings in the
// report; the returned error is reserved for run-level failures.
func Check(ctx context.Context, root string, cfg config.Config) (report.Report, error) {
	log := zerolog.Ctx(ctx)

	if err := cfg.Validate(); err != nil {
		return report.Report{}, &UsageError{Err: err}
	}

	mod, _, err := source.ModulePath(root)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Could not determine module path; local imports need imports.local")
	}
	rules, err := BuildRules(cfg, mod)
	if err != nil {
		return report.Report{}, &UsageError{Err: err}
	}

	loader := &source.Loader{
		Extensions:        cfg.Extensions,
		Exclude:           cfg.Exclude,
		Workers:           cfg.Workers,
		ParseTimeout:      cfg.ParseTimeout,
		ErrorConstructors: cfg.ErrorConstructors(),
	}
	src, err := loader.Load(ctx, root)
	if err != nil {
		return report.Report{}, fmt.Errorf("load %s: %w", root, err)
	}

	log.Info().Int("files", len(src.Files)).Int("rules", rules.Len()).Msg("🔎 Checking source tree")
	findings := scanner.NewEngine(rules).WithWorkers(cfg.Workers).Run(ctx, src.Units())
	findings = append(findings, src.Failures...)

	rep := report.Report{
		Findings:     scanner.Aggregate(findings),
		FilesScanned: len(src.Files),
		Interrupted:  src.Interrupted || ctx.Err() != nil,
	}

	ruleCounts := map[string]int{}
	for _, f := range rep.Findings {
		ruleCounts[f.RuleID]++
	}
	log.Info().
		Int("files_scanned", rep.FilesScanned).
		Int("files_skipped", len(src.Failures)).
		Int("total_findings", len(rep.Findings)).
		Interface("findings_by_rule", ruleCounts).
		Bool("interrupted", rep.Interrupted).
		Msg("📊 Check summary")
	return rep, nil
}
