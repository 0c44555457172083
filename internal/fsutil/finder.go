// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ExpandGlobs resolves the given glob patterns relative to dir and returns the
// matching regular files as a sorted, deduplicated slice of absolute paths.
// Directories matched by a pattern are skipped.
func ExpandGlobs(dir string, globs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, g := range globs {
		pattern := filepath.FromSlash(g)
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ListFiles recursively collects every regular file under rootPath, returned
// as paths relative to rootPath in slash form. A missing root yields an empty
// result rather than an error, so callers can declare roots that only exist in
// some checkouts.
func ListFiles(rootPath string) ([]string, error) {
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
