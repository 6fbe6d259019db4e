package orchestrator

import (
	"io/fs"
	"os"
	"path/filepath"
)

// collectFiles walks root (a file or directory) and returns every regular
// file path within it, in the order filepath.WalkDir visits them (lexical
// per directory). recurse controls whether subdirectories of a directory
// root are descended into; a file root is always returned as itself.
//
// Symbolic links are resolved once; if two distinct walked paths resolve
// to the same real file, the second occurrence is silently skipped (spec
// §4.1: "if two resolutions alias, the second is silently skipped").
func collectFiles(root string, recurse bool) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string

	add := func(path string) {
		real, resolveErr := filepath.EvalSymlinks(path)
		if resolveErr != nil {
			real = path
		}
		if seen[real] {
			return
		}
		seen[real] = true
		out = append(out, path)
	}

	if !info.IsDir() {
		add(root)
		return out, nil
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable directory entry surfaces as a per-file resource
			// diagnostic only if it is ever reached directly; here it is
			// simply excluded from the walk rather than aborting the run.
			return nil
		}
		if d.IsDir() {
			if path != root && !recurse {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, statErr := os.Stat(path)
			if statErr != nil || target.IsDir() {
				return nil
			}
		}
		add(path)
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}
	return out, nil
}
