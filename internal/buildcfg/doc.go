// Package buildcfg supplies the named build configurations (debug, release)
// applied uniformly to every resolved build unit of a generation run, and the
// per-platform toolchain environment the emitted rules invoke.
package buildcfg
