package source

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"strings"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

// knownReferenceTypes are standard library named types whose values already
// behave like references (interfaces in practice).
var knownReferenceTypes = map[string]bool{
	"context.Context":         true,
	"fmt.Stringer":            true,
	"io.Closer":               true,
	"io.ReadCloser":           true,
	"io.ReadWriter":           true,
	"io.Reader":               true,
	"io.WriteCloser":          true,
	"io.Writer":               true,
	"net.Conn":                true,
	"net/http.Handler":        true,
	"net/http.HandlerFunc":    true,
	"net/http.ResponseWriter": true,
	"sort.Interface":          true,
}

var basicTypes = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true, "uintptr": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

type typeDecl struct {
	expr    ast.Expr
	dir     string
	imports map[string]string
}

type typeInfo struct {
	category scanner.TypeCategory
	fields   int
}

// TypeIndex resolves the category of named types declared in the scanned
// tree. It is the syntax-only stand-in for full type checking: types from
// packages outside the tree resolve to CategoryUnknown unless well known.
type TypeIndex struct {
	// importPrefix is the import path of the scan root, empty outside a module.
	importPrefix string
	decls        map[string]typeDecl
	resolved     map[string]typeInfo
	// types, when set, classifies what the syntax walk leaves unknown.
	typesInfo *types.Info
}

// NewTypeIndex returns an empty index for a tree whose root has the given import path.
func NewTypeIndex(importPrefix string) *TypeIndex {
	return &TypeIndex{importPrefix: importPrefix, decls: map[string]typeDecl{}, resolved: map[string]typeInfo{}}
}

// UseTypes lets the index fall back to type-checker results, so types from
// packages outside the tree are classified too.
func (ix *TypeIndex) UseTypes(info *types.Info) { ix.typesInfo = info }

// Add records the type declarations of f, a file in dir (slash separated, relative to the root).
func (ix *TypeIndex) Add(dir string, f *ast.File) {
	imports := importNames(f)
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			ix.decls[dir+"."+ts.Name.Name] = typeDecl{expr: ts.Type, dir: dir, imports: imports}
		}
	}
}

// Resolve fills the category cache. Call it once every file is added; the
// index is read-only and safe for concurrent use afterwards.
func (ix *TypeIndex) Resolve() {
	for key := range ix.decls {
		ix.lookup(key, map[string]bool{})
	}
}

func (ix *TypeIndex) lookup(key string, visiting map[string]bool) typeInfo {
	if info, ok := ix.resolved[key]; ok {
		return info
	}
	decl, ok := ix.decls[key]
	if !ok || visiting[key] {
		return typeInfo{}
	}
	visiting[key] = true
	info := ix.categorize(decl.expr, decl.dir, decl.imports, visiting)
	// a pointer-typed declaration (type P *T) is not a reference in the slice/map sense
	if _, isPtr := decl.expr.(*ast.StarExpr); isPtr {
		info = typeInfo{category: scanner.CategoryBasic}
	}
	ix.resolved[key] = info
	return info
}

// Categorize returns the category of a (non-pointer) type expression found in dir.
func (ix *TypeIndex) Categorize(expr ast.Expr, dir string, imports map[string]string) (scanner.TypeCategory, int) {
	info := ix.categorize(expr, dir, imports, nil)
	if info.category == scanner.CategoryUnknown && ix.typesInfo != nil {
		if t := ix.typesInfo.TypeOf(expr); t != nil {
			info = categorizeType(t)
		}
	}
	return info.category, info.fields
}

func categorizeType(t types.Type) typeInfo {
	if _, ok := t.(*types.TypeParam); ok {
		return typeInfo{}
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		if u.Kind() == types.Invalid {
			return typeInfo{}
		}
		return typeInfo{category: scanner.CategoryBasic}
	case *types.Pointer:
		return typeInfo{category: scanner.CategoryBasic}
	case *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return typeInfo{category: scanner.CategoryReference}
	case *types.Array:
		return typeInfo{category: scanner.CategoryArray}
	case *types.Struct:
		return typeInfo{category: scanner.CategoryStruct, fields: u.NumFields()}
	}
	return typeInfo{}
}

func (ix *TypeIndex) categorize(expr ast.Expr, dir string, imports map[string]string, visiting map[string]bool) typeInfo {
	switch t := expr.(type) {
	case *ast.ParenExpr:
		return ix.categorize(t.X, dir, imports, visiting)
	case *ast.ArrayType:
		if t.Len == nil {
			return typeInfo{category: scanner.CategoryReference}
		}
		return typeInfo{category: scanner.CategoryArray}
	case *ast.Ellipsis, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		return typeInfo{category: scanner.CategoryReference}
	case *ast.StructType:
		return typeInfo{category: scanner.CategoryStruct, fields: countFields(t.Fields)}
	case *ast.StarExpr:
		return typeInfo{category: scanner.CategoryBasic}
	case *ast.IndexExpr:
		return ix.categorize(t.X, dir, imports, visiting)
	case *ast.IndexListExpr:
		return ix.categorize(t.X, dir, imports, visiting)
	case *ast.Ident:
		switch {
		case basicTypes[t.Name]:
			return typeInfo{category: scanner.CategoryBasic}
		case t.Name == "error" || t.Name == "any":
			return typeInfo{category: scanner.CategoryReference}
		}
		return ix.named(dir+"."+t.Name, visiting)
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return typeInfo{}
		}
		importPath, ok := imports[pkg.Name]
		if !ok {
			return typeInfo{}
		}
		if knownReferenceTypes[importPath+"."+t.Sel.Name] {
			return typeInfo{category: scanner.CategoryReference}
		}
		if d, ok := ix.dirOf(importPath); ok {
			return ix.named(d+"."+t.Sel.Name, visiting)
		}
	}
	return typeInfo{}
}

func (ix *TypeIndex) named(key string, visiting map[string]bool) typeInfo {
	if visiting == nil {
		if info, ok := ix.resolved[key]; ok {
			return info
		}
		visiting = map[string]bool{}
	}
	return ix.lookup(key, visiting)
}

// dirOf maps an import path inside the scanned tree to its directory.
func (ix *TypeIndex) dirOf(importPath string) (string, bool) {
	if ix.importPrefix == "" {
		return "", false
	}
	if importPath == ix.importPrefix {
		return ".", true
	}
	rest, ok := strings.CutPrefix(importPath, ix.importPrefix+"/")
	if !ok {
		return "", false
	}
	return path.Clean(rest), true
}

func countFields(fl *ast.FieldList) int {
	if fl == nil {
		return 0
	}
	n := 0
	for _, f := range fl.List {
		if len(f.Names) == 0 {
			n++
			continue
		}
		n += len(f.Names)
	}
	return n
}
