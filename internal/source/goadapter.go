package source

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"strings"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

// DefaultErrorConstructors maps "<import path>.<func>" to the index of the message argument.
func DefaultErrorConstructors() map[string]int {
	return map[string]int{
		"errors.New":                   0,
		"fmt.Errorf":                   0,
		"github.com/pkg/errors.New":    0,
		"github.com/pkg/errors.Errorf": 0,
		"github.com/pkg/errors.Wrap":   1,
		"github.com/pkg/errors.Wrapf":  1,
		"golang.org/x/xerrors.New":     0,
		"golang.org/x/xerrors.Errorf":  0,
	}
}

// Log method families. The message position depends on the family.
var (
	printfMethods = map[string]bool{
		"Printf": true, "Fatalf": true, "Panicf": true, "Infof": true, "Warnf": true, "Warningf": true,
		"Errorf": true, "Debugf": true, "Tracef": true, "Msgf": true,
	}
	printMethods = map[string]bool{
		"Print": true, "Println": true, "Fatal": true, "Fatalln": true, "Panic": true, "Panicln": true,
		"Infoln": true, "Warnln": true, "Errorln": true,
	}
	kvMethods = map[string]bool{
		"Info": true, "Warn": true, "Warning": true, "Error": true, "Debug": true,
		"Infow": true, "Warnw": true, "Errorw": true, "Debugw": true, "Fatalw": true,
		"InfoS": true, "ErrorS": true,
		"InfoContext": true, "WarnContext": true, "ErrorContext": true, "DebugContext": true,
		"Msg": true,
	}
	// fieldFuncs build a single structured field whose first argument is the key
	// (slog.String, zap.Int, zerolog's Str on an event chain, ...).
	fieldFuncs = map[string]bool{
		"String": true, "Str": true, "Strs": true, "Int": true, "Int64": true, "Ints": true, "Uint": true, "Uint64": true,
		"Float64": true, "Bool": true, "Bools": true, "Duration": true, "Dur": true, "Time": true, "Any": true,
		"Interface": true, "Stringer": true, "Group": true, "AnErr": true, "NamedError": true, "Hex": true, "Bytes": true,
		"IPAddr": true, "Object": true, "Dict": true, "Reflect": true,
	}
	loggerWords = map[string]bool{
		"log": true, "logger": true, "klog": true, "slog": true, "glog": true, "logr": true,
		"logrus": true, "zap": true, "zerolog": true, "zlog": true, "sugar": true,
	}
)

// ExtractFile turns one parsed Go file into syntax units. name is the file
// name recorded in unit positions; dir locates the file for type lookups.
func ExtractFile(fset *token.FileSet, f *ast.File, name string, ix *TypeIndex, constructors map[string]int) []scanner.Unit {
	x := &extractor{
		fset:         fset,
		name:         name,
		dir:          path.Dir(name),
		imports:      importNames(f),
		index:        ix,
		constructors: constructors,
	}
	x.imports2units(f)

	insp := inspector.New([]*ast.File{f})
	nodes := []ast.Node{(*ast.FuncDecl)(nil), (*ast.TypeSpec)(nil), (*ast.CallExpr)(nil)}
	insp.Preorder(nodes, func(n ast.Node) {
		switch node := n.(type) {
		case *ast.FuncDecl:
			x.funcUnit(node)
		case *ast.TypeSpec:
			x.fieldUnits(node)
		case *ast.CallExpr:
			if !x.errorStringUnit(node) {
				x.logCallUnit(node)
			}
		}
	})
	return x.units
}

type extractor struct {
	fset         *token.FileSet
	name         string
	dir          string
	imports      map[string]string
	index        *TypeIndex
	constructors map[string]int
	units        []scanner.Unit
}

func (x *extractor) pos(p token.Pos) scanner.Position {
	pp := x.fset.Position(p)
	return scanner.Position{File: x.name, Line: pp.Line, Column: pp.Column}
}

func (x *extractor) imports2units(f *ast.File) {
	var specs []scanner.ImportSpec
	block := -1
	prevEnd := 0
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			continue
		}
		block++
		first := true
		for _, s := range gd.Specs {
			is := s.(*ast.ImportSpec)
			p, ok := stringLit(is.Path)
			if !ok {
				continue
			}
			start := is.Pos()
			if is.Doc != nil {
				start = is.Doc.Pos()
			}
			line := x.fset.Position(start).Line
			if !first && line > prevEnd+1 {
				block++
			}
			first = false
			prevEnd = x.fset.Position(is.End()).Line
			if is.Comment != nil {
				prevEnd = x.fset.Position(is.Comment.End()).Line
			}
			specs = append(specs, scanner.ImportSpec{Path: p, Block: block, Position: x.pos(is.Path.Pos())})
		}
	}
	if len(specs) == 0 {
		return
	}
	x.units = append(x.units, scanner.Unit{
		Kind:        scanner.KindImportGroup,
		Position:    specs[0].Position,
		ImportGroup: &scanner.ImportGroupUnit{Imports: specs},
	})
}

func (x *extractor) param(name string, namePos token.Pos, typ ast.Expr) scanner.Param {
	p := scanner.Param{Name: name, Type: types.ExprString(typ), Position: x.pos(namePos)}
	inner := typ
	if star, ok := typ.(*ast.StarExpr); ok {
		p.Pointer = true
		inner = star.X
	}
	p.Category, p.Fields = x.index.Categorize(inner, x.dir, x.imports)
	return p
}

func (x *extractor) params(fl *ast.FieldList) []scanner.Param {
	if fl == nil {
		return nil
	}
	var out []scanner.Param
	for _, field := range fl.List {
		if len(field.Names) == 0 {
			out = append(out, x.param("", field.Type.Pos(), field.Type))
			continue
		}
		for _, n := range field.Names {
			out = append(out, x.param(n.Name, n.Pos(), field.Type))
		}
	}
	return out
}

func (x *extractor) funcUnit(fd *ast.FuncDecl) {
	fn := &scanner.FunctionUnit{
		Name:    fd.Name.Name,
		Params:  x.params(fd.Type.Params),
		Results: x.params(fd.Type.Results),
	}
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		if recv := x.params(fd.Recv); len(recv) > 0 {
			fn.Receiver = &recv[0]
		}
	}
	x.units = append(x.units, scanner.Unit{Kind: scanner.KindFunction, Position: x.pos(fd.Name.Pos()), Function: fn})
}

func (x *extractor) fieldUnits(ts *ast.TypeSpec) {
	st, ok := ts.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		for _, n := range field.Names {
			x.units = append(x.units, scanner.Unit{
				Kind:     scanner.KindStructField,
				Position: x.pos(n.Pos()),
				Field:    &scanner.FieldUnit{Struct: ts.Name.Name, Field: x.param(n.Name, n.Pos(), field.Type)},
			})
		}
	}
}

// qualifiedCallee resolves pkg.Func calls to "<import path>.Func" and a display name.
func (x *extractor) qualifiedCallee(call *ast.CallExpr) (string, string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", "", false
	}
	importPath, ok := x.imports[pkg.Name]
	if !ok {
		return "", "", false
	}
	return importPath + "." + sel.Sel.Name, pkg.Name + "." + sel.Sel.Name, true
}

func (x *extractor) errorStringUnit(call *ast.CallExpr) bool {
	key, display, ok := x.qualifiedCallee(call)
	if !ok {
		return false
	}
	idx, ok := x.constructors[key]
	if !ok {
		return false
	}
	if idx >= len(call.Args) {
		return true
	}
	text, ok := stringLit(call.Args[idx])
	if !ok {
		return true
	}
	x.units = append(x.units, scanner.Unit{
		Kind:        scanner.KindErrorString,
		Position:    x.pos(call.Args[idx].Pos()),
		ErrorString: &scanner.ErrorStringUnit{Constructor: display, Text: text},
	})
	return true
}

func isLoggerChain(expr ast.Expr) bool {
	for _, name := range chainNames(expr) {
		for _, w := range scanner.SplitWords(name) {
			if loggerWords[strings.ToLower(w)] {
				return true
			}
		}
	}
	return false
}

func (x *extractor) logCallUnit(call *ast.CallExpr) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	method := sel.Sel.Name
	if !printfMethods[method] && !printMethods[method] && !kvMethods[method] {
		return
	}
	if !isLoggerChain(sel.X) {
		return
	}
	lc := &scanner.LogCallUnit{Callee: types.ExprString(sel), Method: method}
	args := call.Args

	switch {
	case printfMethods[method]:
		if len(args) > 0 {
			if format, ok := stringLit(args[0]); ok {
				lc.Interpolated = hasFormatVerb(format)
			} else {
				lc.Interpolated = true
			}
		}
	case printMethods[method]:
		lc.Interpolated = len(args) > 1 || len(args) == 1 && isInterpolated(args[0])
	default:
		msg := messageIndex(method, args)
		if msg >= 0 && msg < len(args) {
			lc.Interpolated = isInterpolated(args[msg])
			lc.Keys = x.keys(args[msg+1:])
		}
	}
	// keys attached earlier in a zerolog-style event chain
	lc.Keys = append(x.chainKeys(sel.X), lc.Keys...)

	x.units = append(x.units, scanner.Unit{Kind: scanner.KindLogCall, Position: x.pos(sel.Sel.Pos()), LogCall: lc})
}

// messageIndex finds the message argument of a key-value style log call.
func messageIndex(method string, args []ast.Expr) int {
	switch {
	case method == "Msg":
		return 0
	case strings.HasSuffix(method, "Context"), method == "ErrorS":
		return 1
	}
	if len(args) == 0 {
		return -1
	}
	if looksLikeMessage(args[0]) {
		return 0
	}
	// logr-style Error(err, msg, kv...)
	if len(args) > 1 && looksLikeMessage(args[1]) {
		return 1
	}
	return -1
}

func looksLikeMessage(expr ast.Expr) bool {
	if _, ok := stringLit(expr); ok {
		return true
	}
	return isInterpolated(expr)
}

// isInterpolated reports whether a message is concatenated or built with fmt.Sprint*.
func isInterpolated(expr ast.Expr) bool {
	if isConcat(expr) {
		return true
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "fmt" && strings.HasPrefix(sel.Sel.Name, "Sprint")
}

// keys extracts literal keys from alternating key/value arguments and from field constructors.
func (x *extractor) keys(args []ast.Expr) []scanner.LogKey {
	var out []scanner.LogKey
	for i := 0; i < len(args); {
		if k, ok := x.fieldKey(args[i]); ok {
			out = append(out, k)
			i++
			continue
		}
		if s, ok := stringLit(args[i]); ok {
			out = append(out, scanner.LogKey{Name: s, Position: x.pos(args[i].Pos())})
		}
		i += 2
	}
	return out
}

func (x *extractor) fieldKey(expr ast.Expr) (scanner.LogKey, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) == 0 {
		return scanner.LogKey{}, false
	}
	id := calleeIdent(call.Fun)
	if id == nil || !fieldFuncs[id.Name] {
		return scanner.LogKey{}, false
	}
	s, ok := stringLit(call.Args[0])
	if !ok {
		return scanner.LogKey{}, false
	}
	return scanner.LogKey{Name: s, Position: x.pos(call.Args[0].Pos())}, true
}

// chainKeys walks a method chain such as log.Info().Str("k", v).Int("n", 1)
// and returns the keys in source order.
func (x *extractor) chainKeys(expr ast.Expr) []scanner.LogKey {
	var out []scanner.LogKey
	for {
		call, ok := expr.(*ast.CallExpr)
		if !ok {
			break
		}
		if k, ok := x.fieldKey(call); ok {
			out = append([]scanner.LogKey{k}, out...)
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			break
		}
		expr = sel.X
	}
	return out
}
