package buildcfg

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Environment names the build tools the emitted rules invoke on the host
// platform.
type Environment struct {
	Compiler string `yaml:"compiler"`
	Linker   string `yaml:"linker"`
	Archiver string `yaml:"archiver"`
	Copier   string `yaml:"copier"`
}

var defaultEnvironments = map[string]Environment{
	"linux":   {Compiler: "g++", Linker: "ld", Archiver: "ar", Copier: "cp"},
	"freebsd": {Compiler: "g++", Linker: "ld", Archiver: "ar", Copier: "cp"},
	"darwin":  {Compiler: "clang++", Linker: "ld", Archiver: "ar", Copier: "cp"},
}

// DefaultEnvironment returns the toolchain table entry for the host platform.
func DefaultEnvironment() (*Environment, error) {
	env, ok := defaultEnvironments[runtime.GOOS]
	if !ok {
		return nil, fmt.Errorf("platform %q has no default build environment; provide an override file", runtime.GOOS)
	}
	return &env, nil
}

// LoadEnvironment reads a YAML environment override file, for platforms the
// default table does not cover or for non-standard toolchains.
func LoadEnvironment(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	var env Environment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing environment file %s: %w", path, err)
	}
	if env.Compiler == "" || env.Linker == "" || env.Archiver == "" || env.Copier == "" {
		return nil, fmt.Errorf("environment file %s must set compiler, linker, archiver and copier", path)
	}
	return &env, nil
}
