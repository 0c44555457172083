package app

import (
	"errors"
	"fmt"

	"github.com/constel-build/constel/internal/ninja"
)

// Config holds everything one generation run needs.
type Config struct {
	RootPath   string // root repository directory
	ConfigName string // build configuration name
	Method     string // incremental or monolithic
	EnvPath    string // optional toolchain environment YAML override
	OutputPath string // destination build file; empty means <root>/build.ninja

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RootPath == "" {
		return nil, errors.New("RootPath is a required configuration field and cannot be empty")
	}
	if cfg.Method != ninja.MethodIncremental && cfg.Method != ninja.MethodMonolithic {
		return nil, fmt.Errorf("invalid method %q: must be %q or %q",
			cfg.Method, ninja.MethodIncremental, ninja.MethodMonolithic)
	}
	return &cfg, nil
}
