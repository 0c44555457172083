// Package constellation assembles the full dependency graph of repositories
// reachable from a root repository, and validates it: dependency cycles and
// header namespace collisions are structural defects that abort generation.
//
// The graph is constructed fresh per generation run and passed by reference to
// the later stages; no ambient global state survives a run.
package constellation
