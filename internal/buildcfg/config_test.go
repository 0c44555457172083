package buildcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("debug", func(t *testing.T) {
		cfg, err := Lookup("debug")
		require.NoError(t, err)
		assert.Equal(t, OptimizeNone, cfg.Optimization)
		assert.True(t, cfg.DebugSymbols)
	})

	t.Run("release", func(t *testing.T) {
		cfg, err := Lookup("release")
		require.NoError(t, err)
		assert.Equal(t, OptimizeSpeed, cfg.Optimization)
		assert.False(t, cfg.DebugSymbols)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Lookup("profiling")
		var unknown *UnknownConfigurationError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "profiling", unknown.Name)
	})
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"debug", "release"}, Names())
}

func TestCompilerFlags(t *testing.T) {
	t.Run("debug flags", func(t *testing.T) {
		cfg, err := Lookup("debug")
		require.NoError(t, err)

		flags := cfg.CompilerFlags()
		assert.Contains(t, flags, "-std=c++17")
		assert.Contains(t, flags, "-Werror")
		assert.Contains(t, flags, "-O0")
		assert.Contains(t, flags, "-g")
		assert.Contains(t, flags, "-DDEBUG=1")
		assert.NotContains(t, flags, "-flto")
	})

	t.Run("release flags", func(t *testing.T) {
		cfg, err := Lookup("release")
		require.NoError(t, err)

		flags := cfg.CompilerFlags()
		assert.Contains(t, flags, "-O3")
		assert.Contains(t, flags, "-flto")
		assert.Contains(t, flags, "-DNDEBUG=1")
		assert.NotContains(t, flags, "-g")
	})

	t.Run("defines render sorted", func(t *testing.T) {
		cfg := &Configuration{
			Name:         "custom",
			Optimization: OptimizeSize,
			Defines:      map[string]string{"ZETA": "2", "ALPHA": "1"},
		}

		flags := cfg.CompilerFlags()
		var defines []string
		for _, f := range flags {
			if len(f) > 2 && f[:2] == "-D" {
				defines = append(defines, f)
			}
		}
		assert.Equal(t, []string{"-DALPHA=1", "-DZETA=2"}, defines)
	})
}

func TestLoadEnvironment(t *testing.T) {
	t.Run("valid override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"compiler: clang++\nlinker: lld\narchiver: llvm-ar\ncopier: cp\n",
		), 0o644))

		env, err := LoadEnvironment(path)
		require.NoError(t, err)
		assert.Equal(t, "clang++", env.Compiler)
		assert.Equal(t, "lld", env.Linker)
		assert.Equal(t, "llvm-ar", env.Archiver)
		assert.Equal(t, "cp", env.Copier)
	})

	t.Run("incomplete override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.yaml")
		require.NoError(t, os.WriteFile(path, []byte("compiler: g++\n"), 0o644))

		_, err := LoadEnvironment(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadEnvironment(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unparseable yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.yaml")
		require.NoError(t, os.WriteFile(path, []byte("compiler: [unclosed\n"), 0o644))

		_, err := LoadEnvironment(path)
		assert.Error(t, err)
	})
}

func TestDefaultEnvironment(t *testing.T) {
	// The table covers the platforms CI runs on; other platforms must ask
	// for an override file instead of guessing.
	env, err := DefaultEnvironment()
	if err != nil {
		t.Skipf("no default environment for this platform: %v", err)
	}
	assert.NotEmpty(t, env.Compiler)
	assert.NotEmpty(t, env.Archiver)
}
