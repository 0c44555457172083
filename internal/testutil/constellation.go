// Package testutil materializes scratch constellations on disk for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Repo describes one scratch repository to write to disk.
type Repo struct {
	// Name is the directory name; for dependencies it is also the name the
	// default resolver looks up under deps/.
	Name string
	// HCL is the descriptor file content. Empty means no descriptor file is
	// written, for missing-descriptor cases.
	HCL string
	// Files maps repository-relative paths to file contents.
	Files map[string]string
}

// WriteRepo materializes one repository under dir and returns its path.
func WriteRepo(t *testing.T, dir string, repo Repo) string {
	t.Helper()

	repoDir := filepath.Join(dir, repo.Name)
	require.NoError(t, os.MkdirAll(repoDir, 0o755))

	// Canonicalize so test expectations match loader-reported paths even
	// when the temp root sits behind a symlink.
	repoDir, err := filepath.EvalSymlinks(repoDir)
	require.NoError(t, err)

	if repo.HCL != "" {
		require.NoError(t, os.WriteFile(filepath.Join(repoDir, "constel.hcl"), []byte(repo.HCL), 0o644))
	}
	for rel, content := range repo.Files {
		path := filepath.Join(repoDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return repoDir
}

// WriteConstellation materializes a root repository and its dependency clones
// in the conventional layout (dependencies under <root>/deps/<name>) inside a
// fresh temp dir, returning the root repository path.
func WriteConstellation(t *testing.T, root Repo, deps ...Repo) string {
	t.Helper()

	base := t.TempDir()
	rootDir := WriteRepo(t, base, root)
	for _, dep := range deps {
		WriteRepo(t, filepath.Join(rootDir, "deps"), dep)
	}
	return rootDir
}
