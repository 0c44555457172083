// Package app wires the generation pipeline together: it owns the logger,
// validates the run configuration, and drives load, graph construction,
// validation, target resolution and emission for one generation run.
package app
