package analyzers

import (
	"context"
	"go/ast"
	"go/token"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/tnqn/code-review-comments/internal/app"
	"github.com/tnqn/code-review-comments/internal/scanner"
	"github.com/tnqn/code-review-comments/internal/source"
)

// Each rule as an analyzer, for go vet style drivers. Corpus rules such as
// naming consistency see one package at a time.
var (
	AnalyzerNamingConsistency = New(scanner.NewRuleNamingConsistency(scanner.DefaultNamingOptions()))
	AnalyzerErrorStrings      = New(scanner.NewRuleErrorStrings(scanner.DefaultErrorStringOptions()))
	AnalyzerImportGrouping    = newImportGrouping()
	AnalyzerPointerValue      = New(scanner.NewRulePointerValue(scanner.DefaultPointerValueOptions()))
	AnalyzerLogKeys           = New(scanner.NewRuleLogKeys(scanner.DefaultLogKeyOptions()))
)

// All returns every analyzer, sorted by rule ID.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		AnalyzerErrorStrings,
		AnalyzerImportGrouping,
		AnalyzerLogKeys,
		AnalyzerNamingConsistency,
		AnalyzerPointerValue,
	}
}

// New wraps a rule as an analyzer named after its ID.
func New(rule scanner.Rule) *analysis.Analyzer {
	return newAnalyzer(rule, func(*analysis.Pass) scanner.Rule { return rule })
}

func newAnalyzer(rule scanner.Rule, build func(*analysis.Pass) scanner.Rule) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name: analyzerName(rule.ID()),
		Doc:  strings.ToLower(rule.Description()[:1]) + rule.Description()[1:],
		Run: func(pass *analysis.Pass) (any, error) {
			return nil, runRule(pass, build(pass))
		},
	}
}

// analyzerName turns a rule ID into a Go identifier: error-strings -> error_strings.
func analyzerName(id string) string { return strings.ReplaceAll(id, "-", "_") }

// newImportGrouping reads local prefixes from its -local flag, falling back
// to the module path of the package under analysis.
func newImportGrouping() *analysis.Analyzer {
	var local string
	an := newAnalyzer(scanner.NewRuleImportGrouping(scanner.ImportGroupingOptions{}), func(pass *analysis.Pass) scanner.Rule {
		prefixes := app.SplitAndTrim(local)
		if len(prefixes) == 0 && pass.Module != nil && pass.Module.Path != "" {
			prefixes = []string{pass.Module.Path}
		}
		return scanner.NewRuleImportGrouping(scanner.ImportGroupingOptions{Local: prefixes})
	})
	an.Flags.StringVar(&local, "local", "", "comma-separated import path prefixes grouped last (default: module path)")
	return an
}

func runRule(pass *analysis.Pass, rule scanner.Rule) error {
	files := map[string]*token.File{}
	ix := source.NewTypeIndex("")
	if pass.TypesInfo != nil {
		ix.UseTypes(pass.TypesInfo)
	}
	names := make([]string, len(pass.Files))
	for i, f := range pass.Files {
		tf := pass.Fset.File(f.Pos())
		if tf == nil {
			continue
		}
		names[i] = filepath.ToSlash(tf.Name())
		files[names[i]] = tf
		ix.Add(path.Dir(names[i]), f)
	}
	ix.Resolve()

	constructors := source.DefaultErrorConstructors()
	units := func(yield func(scanner.Unit) bool) {
		for i, f := range pass.Files {
			if names[i] == "" {
				continue
			}
			for _, u := range source.ExtractFile(pass.Fset, f, names[i], ix, constructors) {
				if !yield(u) {
					return
				}
			}
		}
	}

	findings := scanner.NewEngine(scanner.NewRuleSet(rule)).Run(context.Background(), units)
	for _, f := range scanner.Aggregate(findings) {
		pass.Report(analysis.Diagnostic{
			Pos:      toPos(files[f.Position.File], f.Position, pass.Files),
			Category: f.RuleID,
			Message:  f.Message,
		})
	}
	return nil
}

// toPos maps a finding position back into the pass's file set.
func toPos(tf *token.File, p scanner.Position, files []*ast.File) token.Pos {
	if tf == nil {
		if len(files) > 0 {
			return files[0].Pos()
		}
		return token.NoPos
	}
	if p.Line < 1 || p.Line > tf.LineCount() {
		return token.Pos(tf.Base())
	}
	pos := tf.LineStart(p.Line)
	if p.Column > 1 {
		pos += token.Pos(p.Column - 1)
	}
	return pos
}
