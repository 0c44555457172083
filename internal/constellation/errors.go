package constellation

import (
	"fmt"
	"strings"
)

// UnresolvedDependencyError reports a declared dependency name that could not
// be mapped to an on-disk repository directory.
type UnresolvedDependencyError struct {
	Dependent string
	Name      string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("unresolved dependency: %q (required by %q) does not map to an on-disk repository", e.Name, e.Dependent)
}

// DependencyCycleError reports the first dependency cycle found, as the
// ordered sequence of repository names forming it.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s -> %s", strings.Join(e.Cycle, " -> "), e.Cycle[0])
}

// HeaderNameCollisionError reports two repositories in one target's dependency
// closure claiming the same logical include path for different files.
type HeaderNameCollisionError struct {
	Include string
	RepoA   string
	RepoB   string
	Target  string
}

func (e *HeaderNameCollisionError) Error() string {
	return fmt.Sprintf("header name collision: %q is declared by both %q and %q within the dependency closure of target %q",
		e.Include, e.RepoA, e.RepoB, e.Target)
}
