package source

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePath finds the go.mod governing dir and returns the module path plus
// the import path of dir itself. Both are empty when dir is not in a module.
func ModulePath(dir string) (module, importPrefix string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for cur := abs; ; {
		data, err := os.ReadFile(filepath.Join(cur, "go.mod"))
		switch {
		case err == nil:
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", "", nil
			}
			rel, err := filepath.Rel(cur, abs)
			if err != nil {
				return "", "", err
			}
			return mod, path.Clean(path.Join(mod, filepath.ToSlash(rel))), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", "", nil
		}
		cur = parent
	}
}
