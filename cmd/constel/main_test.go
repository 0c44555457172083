package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constel-build/constel/internal/cli"
	"github.com/constel-build/constel/internal/testutil"
)

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, run(&out, []string{"-h"}))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_UsageError(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-no-such-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_GeneratesBuildFile(t *testing.T) {
	rootDir := testutil.WriteConstellation(t, testutil.Repo{
		Name: "mono",
		HCL: `repository "mono" {
			source_globs = ["*.cpp"]
		}
		target "static_library" "mono" {}`,
		Files: map[string]string{"m.cpp": "\n"},
	})

	var out bytes.Buffer
	require.NoError(t, run(&out, []string{"-log-level", "error", rootDir}))

	data, err := os.ReadFile(filepath.Join(rootDir, "build.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "build build/lib/libmono.a: link_static")
}
