package constellation

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolver maps a declared dependency name to the directory holding its
// already-materialized clone. Cloning itself is an external, preceding step;
// generation only locates the result.
type Resolver func(name string) (string, error)

// DirResolver returns the conventional-layout resolver: every dependency
// lives under <root>/deps/<name>.
func DirResolver(rootDir string) Resolver {
	return func(name string) (string, error) {
		dir := filepath.Join(rootDir, "deps", name)
		info, err := os.Stat(dir)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", dir)
		}
		return dir, nil
	}
}
