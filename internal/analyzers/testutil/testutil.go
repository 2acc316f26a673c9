package testutil

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"maps"
	"slices"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// RunAnalyzerOnSrc parses each named source, builds a minimal analysis.Pass
// over them as one package, runs the analyzer, and returns the collected
// diagnostics together with the file set they refer to.
func RunAnalyzerOnSrc(an *analysis.Analyzer, srcs map[string]string) ([]analysis.Diagnostic, *token.FileSet, error) {
	fset := token.NewFileSet()
	var files []*ast.File
	for _, name := range slices.Sorted(maps.Keys(srcs)) {
		f, err := parser.ParseFile(fset, name, srcs[name], parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, f)
	}
	info := &types.Info{
		Types: map[ast.Expr]types.TypeAndValue{},
		Defs:  map[*ast.Ident]types.Object{},
		Uses:  map[*ast.Ident]types.Object{},
	}
	// type errors (unresolved imports) are expected in fixtures
	conf := types.Config{Importer: stdImporter{importer.Default()}, Error: func(error) {}}
	pkg, _ := conf.Check("p", fset, files, info)

	var diags []analysis.Diagnostic
	pass := &analysis.Pass{
		Analyzer:   an,
		Fset:       fset,
		Files:      files,
		Pkg:        pkg,
		TypesInfo:  info,
		TypesSizes: types.SizesFor("gc", "amd64"),
		Report:     func(d analysis.Diagnostic) { diags = append(diags, d) },
		ResultOf:   map[*analysis.Analyzer]any{},
	}
	_, err := an.Run(pass)
	return diags, fset, err
}

// stdImporter resolves standard library imports only; fixtures import
// third-party packages that are not available to the type checker.
type stdImporter struct {
	types.Importer
}

func (i stdImporter) Import(path string) (*types.Package, error) {
	if first, _, _ := strings.Cut(path, "/"); strings.Contains(first, ".") {
		return nil, fmt.Errorf("package %s is not in the standard library", path)
	}
	return i.Importer.Import(path)
}
