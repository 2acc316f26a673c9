package scanner

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Rule is a stateless check over syntax units of the kinds it declares.
// Implementations also satisfy UnitRule or CorpusRule.
type Rule interface {
	ID() string
	Description() string
	Kinds() []UnitKind
}

// UnitRule inspects one unit at a time.
type UnitRule interface {
	Rule
	Check(u Unit) ([]Finding, error)
}

// CorpusRule inspects every unit of its kinds at once. Used for properties
// that only exist across a codebase, such as naming consistency.
type CorpusRule interface {
	Rule
	CheckAll(units []Unit) ([]Finding, error)
}

// Engine applies a rule set to units.
type Engine struct {
	rules   RuleSet
	workers int
}

func NewEngine(rules RuleSet) *Engine {
	return &Engine{rules: rules, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers returns a copy of the engine using n goroutines for unit rules.
func (e *Engine) WithWorkers(n int) *Engine {
	cp := *e
	if n > 0 {
		cp.workers = n
	}
	return &cp
}

// collector is an append-only, goroutine-safe findings sink.
type collector struct {
	mu       sync.Mutex
	findings []Finding
}

func (c *collector) add(fs ...Finding) {
	if len(fs) == 0 {
		return
	}
	c.mu.Lock()
	c.findings = append(c.findings, fs...)
	c.mu.Unlock()
}

// Run applies every rule to every unit of a kind the rule declares interest
// in. Rule failures are contained and reported as internal-error findings.
// Once ctx is done no further work is started; the findings collected so far
// are returned. The returned findings are unsorted; see Aggregate.
func (e *Engine) Run(ctx context.Context, units iter.Seq[Unit]) []Finding {
	log := zerolog.Ctx(ctx)

	byKind := map[UnitKind][]Unit{}
	total := 0
	for u := range units {
		byKind[u.Kind] = append(byKind[u.Kind], u)
		total++
	}

	var unitRules []UnitRule
	var corpusRules []CorpusRule
	for _, r := range e.rules.Rules() {
		switch rr := r.(type) {
		case UnitRule:
			unitRules = append(unitRules, rr)
		case CorpusRule:
			corpusRules = append(corpusRules, rr)
		default:
			log.Warn().Str("rule", r.ID()).Msg("⚠️  Rule implements neither UnitRule nor CorpusRule; skipping")
		}
	}
	log.Debug().Int("units", total).Int("rules", e.rules.Len()).Msg("🧩 Running rules")

	out := &collector{}
	var g errgroup.Group
	g.SetLimit(e.workers)

	for _, r := range corpusRules {
		var subset []Unit
		for _, k := range r.Kinds() {
			subset = append(subset, byKind[k]...)
		}
		if len(subset) == 0 {
			continue
		}
		g.Go(func() error {
			log.Debug().Str("id", r.ID()).Int("units", len(subset)).Msg("▶️  Applying corpus rule")
			fs, err := checkCorpus(r, subset)
			if err != nil {
				out.add(failure(r.ID(), subset[0].Position, err))
				return nil
			}
			out.add(fs...)
			return nil
		})
	}

	for kind, us := range byKind {
		var interested []UnitRule
		for _, r := range unitRules {
			if slices.Contains(r.Kinds(), kind) {
				interested = append(interested, r)
			}
		}
		if len(interested) == 0 {
			continue
		}
		for _, u := range us {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				for _, r := range interested {
					fs, err := checkUnit(r, u)
					if err != nil {
						log.Debug().Str("id", r.ID()).Stringer("pos", u.Position).Err(err).Msg("❌ Rule failed")
						out.add(failure(r.ID(), u.Position, err))
						continue
					}
					out.add(fs...)
				}
				return nil
			})
		}
	}

	_ = g.Wait()
	return out.findings
}

func failure(ruleID string, pos Position, err error) Finding {
	e := &RuleExecutionError{RuleID: ruleID, Position: pos, Err: err}
	return e.Finding()
}

func checkUnit(r UnitRule, u Unit) (fs []Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			fs, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Check(u)
}

func checkCorpus(r CorpusRule, units []Unit) (fs []Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			fs, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return r.CheckAll(units)
}
