package source

import (
	"go/ast"
	"go/token"
	"path"
	"strconv"
	"strings"
	"unicode"
)

// calleeIdent returns the identifier for a call expression's callee, handling
// both simple identifiers and selector expressions. Returns nil if unresolved.
func calleeIdent(expr ast.Expr) *ast.Ident {
	switch x := expr.(type) {
	case *ast.Ident:
		return x
	case *ast.SelectorExpr:
		if x.Sel != nil {
			return x.Sel
		}
	}
	return nil
}

// chainNames collects identifier and selector names along a call/selector
// chain, e.g. s.logger.With(x).Info -> [s logger With].
func chainNames(expr ast.Expr) []string {
	var names []string
	for expr != nil {
		switch e := expr.(type) {
		case *ast.Ident:
			return append(names, e.Name)
		case *ast.SelectorExpr:
			names = append(names, e.Sel.Name)
			expr = e.X
		case *ast.CallExpr:
			expr = e.Fun
		case *ast.IndexExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.StarExpr:
			expr = e.X
		default:
			return names
		}
	}
	return names
}

// stringLit returns the unquoted value of a string literal.
func stringLit(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

// isConcat reports whether expr is a string concatenation with at least one non-constant operand.
func isConcat(expr ast.Expr) bool {
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok || bin.Op != token.ADD {
		return false
	}
	return !constantString(bin)
}

func constantString(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return e.Kind == token.STRING
	case *ast.ParenExpr:
		return constantString(e.X)
	case *ast.BinaryExpr:
		return e.Op == token.ADD && constantString(e.X) && constantString(e.Y)
	}
	return false
}

// hasFormatVerb reports whether a format string contains a verb other than %%.
func hasFormatVerb(format string) bool {
	for i := 0; i < len(format)-1; i++ {
		if format[i] != '%' {
			continue
		}
		if format[i+1] == '%' {
			i++
			continue
		}
		return true
	}
	return false
}

// importNames maps the local name of each import in f to its path.
func importNames(f *ast.File) map[string]string {
	out := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := defaultImportName(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		out[name] = p
	}
	return out
}

// defaultImportName guesses the package name of an import path: the last
// element, skipping a major version suffix and stripping a go- prefix.
func defaultImportName(p string) string {
	base := path.Base(p)
	if len(base) > 1 && base[0] == 'v' && strings.TrimLeftFunc(base[1:], unicode.IsDigit) == "" {
		base = path.Base(path.Dir(p))
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexAny(base, ".-"); i > 0 {
		base = base[:i]
	}
	return base
}
