package buildcfg

import (
	"fmt"
	"sort"
)

// OptimizationLevel selects the compiler optimization profile.
type OptimizationLevel string

const (
	OptimizeNone  OptimizationLevel = "none"
	OptimizeSpeed OptimizationLevel = "speed"
	OptimizeSize  OptimizationLevel = "size"
)

// Configuration is one named set of recognized build options, applied
// uniformly across the whole constellation in one generation pass.
type Configuration struct {
	Name         string
	Optimization OptimizationLevel
	DebugSymbols bool
	Defines      map[string]string
}

// UnknownConfigurationError reports a configuration name outside the
// recognized set.
type UnknownConfigurationError struct {
	Name string
}

func (e *UnknownConfigurationError) Error() string {
	return fmt.Sprintf("unknown configuration %q (known: %v)", e.Name, Names())
}

var configurations = map[string]*Configuration{
	"debug": {
		Name:         "debug",
		Optimization: OptimizeNone,
		DebugSymbols: true,
		Defines:      map[string]string{"DEBUG": "1"},
	},
	"release": {
		Name:         "release",
		Optimization: OptimizeSpeed,
		DebugSymbols: false,
		Defines:      map[string]string{"NDEBUG": "1"},
	},
}

// Names returns the recognized configuration names, sorted.
func Names() []string {
	names := make([]string, 0, len(configurations))
	for n := range configurations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named configuration.
func Lookup(name string) (*Configuration, error) {
	cfg, ok := configurations[name]
	if !ok {
		return nil, &UnknownConfigurationError{Name: name}
	}
	return cfg, nil
}

// CompilerFlags renders the configuration into compiler flags: the base
// warning set, the optimization profile, debug symbols, and preprocessor
// defines in sorted order.
func (c *Configuration) CompilerFlags() []string {
	flags := []string{
		"-std=c++17", "-Wall", "-Wextra", "-Wno-unused-parameter", "-Werror", "-pedantic",
	}
	switch c.Optimization {
	case OptimizeSpeed:
		flags = append(flags, "-O3", "-flto")
	case OptimizeSize:
		flags = append(flags, "-Os")
	default:
		flags = append(flags, "-O0")
	}
	if c.DebugSymbols {
		flags = append(flags, "-g")
	}

	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flags = append(flags, fmt.Sprintf("-D%s=%s", k, c.Defines[k]))
	}
	return flags
}
