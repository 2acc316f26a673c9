package source

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	goscanner "go/scanner"
	"go/token"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tnqn/code-review-comments/internal/scanner"
)

// adapters lists the extensions a language adapter exists for.
var adapters = map[string]bool{".go": true}

var skipDirs = map[string]bool{"vendor": true, "testdata": true, "node_modules": true}

// parseFile is replaced in tests to stall or observe parsing.
var parseFile = parser.ParseFile

// Loader walks a tree and parses every supported file into a Source.
type Loader struct {
	// Extensions filters candidate files, e.g. ".go". Empty means every extension with an adapter.
	Extensions []string
	// Exclude holds slash-separated globs matched against the path relative to the root and the base name.
	Exclude []string
	// Workers bounds concurrent reads and parses. Zero means GOMAXPROCS.
	Workers int
	// ParseTimeout bounds parsing of a single file. Zero disables the limit.
	ParseTimeout time.Duration
	// ErrorConstructors overrides DefaultErrorConstructors when non-nil.
	ErrorConstructors map[string]int
}

// File is one successfully parsed source file.
type File struct {
	// Name is the slash-separated path relative to the scan root.
	Name string
	AST  *ast.File
}

// Source is the parsed tree plus the per-file failures met on the way.
type Source struct {
	Root string
	// ModulePath is the path declared by the governing go.mod, if any.
	ModulePath string
	Files      []File
	// Failures holds io-error and parse-error findings, sorted by file.
	Failures []scanner.Finding
	// Interrupted is set when cancellation stopped the load early.
	Interrupted bool

	fset         *token.FileSet
	index        *TypeIndex
	constructors map[string]int
}

// FileSet returns the file set positions of Files are recorded in.
func (s *Source) FileSet() *token.FileSet { return s.fset }

// Units yields the syntax units of every file in name order. The sequence
// can be ranged over more than once.
func (s *Source) Units() iter.Seq[scanner.Unit] {
	return func(yield func(scanner.Unit) bool) {
		for _, f := range s.Files {
			for _, u := range ExtractFile(s.fset, f.AST, f.Name, s.index, s.constructors) {
				if !yield(u) {
					return
				}
			}
		}
	}
}

type loaded struct {
	file        *File
	failure     *scanner.Finding
	interrupted bool
}

// Load walks root and parses the matching files on a bounded pool. Per-file
// failures end up in Source.Failures; only a bad root or an empty match set
// is returned as an error.
func (l *Loader) Load(ctx context.Context, root string) (*Source, error) {
	log := zerolog.Ctx(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	mod, prefix, err := ModulePath(root)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Could not read go.mod; local packages will not be resolved")
	}

	names, walkFailures, err := l.walk(root)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 && len(walkFailures) == 0 {
		return nil, fmt.Errorf("%s: %w", root, scanner.ErrNoFiles)
	}
	log.Info().Str("root", root).Int("files", len(names)).Msg("🧩 Loading source files")

	src := &Source{
		Root:         root,
		ModulePath:   mod,
		Failures:     walkFailures,
		fset:         token.NewFileSet(),
		constructors: orDefault(l.ErrorConstructors, DefaultErrorConstructors()),
	}

	results := make([]loaded, len(names))
	var interrupted atomic.Bool
	var g errgroup.Group
	g.SetLimit(l.workers())
	for i, name := range names {
		if ctx.Err() != nil {
			interrupted.Store(true)
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				interrupted.Store(true)
				return nil
			}
			results[i] = l.loadFile(ctx, src.fset, root, name)
			if results[i].interrupted {
				interrupted.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()
	src.Interrupted = interrupted.Load()
	if src.Interrupted {
		log.Warn().Msg("🛑 Load interrupted; reporting on the files parsed so far")
	}

	src.index = NewTypeIndex(prefix)
	for _, r := range results {
		switch {
		case r.file != nil:
			src.Files = append(src.Files, *r.file)
			src.index.Add(path.Dir(r.file.Name), r.file.AST)
		case r.failure != nil:
			src.Failures = append(src.Failures, *r.failure)
		}
	}
	src.index.Resolve()
	slices.SortFunc(src.Failures, func(a, b scanner.Finding) int { return strings.Compare(a.Position.File, b.Position.File) })

	log.Debug().Int("parsed", len(src.Files)).Int("failed", len(src.Failures)).Msg("✅ Load complete")
	return src, nil
}

func orDefault(m, def map[string]int) map[string]int {
	if m != nil {
		return m
	}
	return def
}

func (l *Loader) workers() int {
	if l.Workers > 0 {
		return l.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (l *Loader) wantExt(ext string) bool {
	if !adapters[ext] {
		return false
	}
	return len(l.Extensions) == 0 || slices.Contains(l.Extensions, ext)
}

func (l *Loader) excluded(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range l.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// walk lists candidate files as sorted slash paths relative to root.
// Unreadable directories are recorded as io-error findings.
func (l *Loader) walk(root string) ([]string, []scanner.Finding, error) {
	var names []string
	var failures []scanner.Finding
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if err != nil {
			if rel == "." {
				return err
			}
			failures = append(failures, (&scanner.IOError{File: rel, Err: err}).Finding())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			name := d.Name()
			if skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || l.excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !(d.Type().IsRegular() || d.Type()&fs.ModeSymlink != 0) || !l.wantExt(filepath.Ext(p)) || l.excluded(rel) {
			return nil
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(names)
	return names, failures, nil
}

type parseResult struct {
	file *ast.File
	err  error
}

func (l *Loader) loadFile(ctx context.Context, fset *token.FileSet, root, name string) loaded {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("file", name).Err(err).Msg("❌ Read failed")
		f := (&scanner.IOError{File: name, Err: err}).Finding()
		return loaded{failure: &f}
	}

	done := make(chan parseResult, 1)
	go func() {
		f, err := parseFile(fset, name, data, parser.ParseComments|parser.SkipObjectResolution)
		done <- parseResult{file: f, err: err}
	}()

	var timeout <-chan time.Time
	if l.ParseTimeout > 0 {
		timer := time.NewTimer(l.ParseTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var res parseResult
	select {
	case res = <-done:
	case <-timeout:
		res.err = fmt.Errorf("parse exceeded %s", l.ParseTimeout)
	case <-ctx.Done():
		return loaded{interrupted: true}
	}
	if res.err != nil {
		zerolog.Ctx(ctx).Debug().Str("file", name).Err(res.err).Msg("❌ Parse failed")
		f := (&scanner.ParseError{File: name, Line: errorLine(res.err), Err: res.err}).Finding()
		return loaded{failure: &f}
	}
	return loaded{file: &File{Name: name, AST: res.file}}
}

func errorLine(err error) int {
	var list goscanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Pos.Line
	}
	return 0
}
