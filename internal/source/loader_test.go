package source

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func fileNames(src *Source) []string {
	var names []string
	for _, f := range src.Files {
		names = append(names, f.Name)
	}
	return names
}

func TestLoaderWalksAndSkips(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":                 "module example.com/mod\n\ngo 1.24\n",
		"main.go":                "package main\n",
		"pkg/a.go":               "package pkg\n",
		"pkg/a_gen.go":           "package pkg\n",
		"pkg/notes.txt":          "not go",
		"vendor/x/x.go":          "package x\n",
		"testdata/bad.go":        "package bad\n",
		".hidden/h.go":           "package h\n",
		"_scratch/s.go":          "package s\n",
		"internal/mocks/mock.go": "package mocks\n",
	})
	l := &Loader{Exclude: []string{"*_gen.go", "internal/mocks"}}
	src, err := l.Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go", "pkg/a.go"}, fileNames(src))
	assert.Equal(t, "example.com/mod", src.ModulePath)
	assert.Empty(t, src.Failures)
	assert.False(t, src.Interrupted)
}

func TestLoaderRecordsParseErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"ok.go":     "package a\n",
		"broken.go": "package a\n\nfunc {\n",
	})
	src, err := (&Loader{}).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok.go"}, fileNames(src))
	require.Len(t, src.Failures, 1)
	f := src.Failures[0]
	assert.Equal(t, scanner.RuleParseErrorID, f.RuleID)
	assert.Equal(t, scanner.SeverityInfo, f.Severity)
	assert.Equal(t, "broken.go", f.Position.File)
	assert.Equal(t, 3, f.Position.Line)
}

func TestLoaderRecordsUnreadableFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{"ok.go": "package a\n"})
	// a dangling link is unreadable regardless of the user running the test
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.go"), filepath.Join(dir, "gone.go")))

	src, err := (&Loader{}).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok.go"}, fileNames(src))
	require.Len(t, src.Failures, 1)
	assert.Equal(t, scanner.RuleIOErrorID, src.Failures[0].RuleID)
	assert.Equal(t, scanner.Position{File: "gone.go"}, src.Failures[0].Position)
}

func TestLoaderRootErrors(t *testing.T) {
	_, err := (&Loader{}).Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	dir := writeTree(t, map[string]string{"README.md": "# nothing to see"})
	_, err = (&Loader{}).Load(context.Background(), dir)
	require.ErrorIs(t, err, scanner.ErrNoFiles)

	_, err = (&Loader{}).Load(context.Background(), filepath.Join(dir, "README.md"))
	require.Error(t, err)
}

func TestLoaderCancelled(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.go": "package a\n", "b.go": "package a\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, err := (&Loader{}).Load(ctx, dir)
	require.NoError(t, err)
	assert.True(t, src.Interrupted)
	assert.Empty(t, src.Files)
}

type parseFunc func(fset *token.FileSet, filename string, src any, mode parser.Mode) (*ast.File, error)

func stubParse(t *testing.T, fn parseFunc) {
	t.Helper()
	orig := parseFile
	parseFile = fn
	t.Cleanup(func() { parseFile = orig })
}

func TestLoaderParseTimeout(t *testing.T) {
	dir := writeTree(t, map[string]string{"slow.go": "package a\n", "fast.go": "package a\n"})
	release := make(chan struct{})
	defer close(release)
	stubParse(t, func(fset *token.FileSet, name string, src any, mode parser.Mode) (*ast.File, error) {
		if name == "slow.go" {
			<-release
		}
		return parser.ParseFile(fset, name, src, mode)
	})

	src, err := (&Loader{ParseTimeout: 20 * time.Millisecond}).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, src.Interrupted)
	assert.Equal(t, []string{"fast.go"}, fileNames(src))
	require.Len(t, src.Failures, 1)
	f := src.Failures[0]
	assert.Equal(t, scanner.RuleParseErrorID, f.RuleID)
	assert.Equal(t, scanner.SeverityInfo, f.Severity)
	assert.Equal(t, "slow.go", f.Position.File)
	assert.Equal(t, 0, f.Position.Line)
	assert.Contains(t, f.Message, "parse exceeded 20ms")
}

func TestLoaderCancelledMidRun(t *testing.T) {
	files := map[string]string{"a.go": "package a\n\nfunc {\n"}
	for _, n := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		files[n+".go"] = "package a\n\nfunc " + n + "() {}\n"
	}
	dir := writeTree(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	stubParse(t, func(fset *token.FileSet, name string, src any, mode parser.Mode) (*ast.File, error) {
		if calls.Add(1) == 3 {
			cancel()
		}
		return parser.ParseFile(fset, name, src, mode)
	})

	// one worker parses in name order: a.go fails, b.go loads, c.go cancels
	src, err := (&Loader{Workers: 1}).Load(ctx, dir)
	require.NoError(t, err)

	assert.True(t, src.Interrupted)
	assert.LessOrEqual(t, calls.Load(), int32(3), "no parse starts after cancellation")
	names := fileNames(src)
	assert.Contains(t, names, "b.go")
	assert.LessOrEqual(t, len(names), 2)
	require.Len(t, src.Failures, 1)
	assert.Equal(t, "a.go", src.Failures[0].Position.File)
	assert.Equal(t, scanner.RuleParseErrorID, src.Failures[0].RuleID)
	assert.NotEmpty(t, slices.Collect(src.Units()), "units of the files loaded before cancellation are kept")
}

func TestLoaderDeterministicUnits(t *testing.T) {
	files := map[string]string{
		"go.mod": "module example.com/mod\n",
	}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["pkg/"+name+".go"] = "package pkg\n\nimport \"errors\"\n\nfunc Get" + name + "() error { return errors.New(\"Failed.\") }\n"
	}
	dir := writeTree(t, files)

	collect := func(workers int) []scanner.Unit {
		src, err := (&Loader{Workers: workers}).Load(context.Background(), dir)
		require.NoError(t, err)
		return slices.Collect(src.Units())
	}
	first := collect(1)
	require.Len(t, first, 8*3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, collect(8))
	}
}

func TestModulePath(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":       "module example.com/mod\n",
		"sub/pkg/x.go": "package pkg\n",
	})
	mod, prefix, err := ModulePath(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/mod", mod)
	assert.Equal(t, "example.com/mod/sub", prefix)

	mod, prefix, err = ModulePath(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/mod", mod)
	assert.Equal(t, "example.com/mod", prefix)
}
