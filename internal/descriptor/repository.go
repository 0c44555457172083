package descriptor

import (
	"fmt"
	"strings"

	"github.com/constel-build/constel/internal/schema"
)

// TargetKind enumerates the build products a target can declare.
type TargetKind string

const (
	KindExecutable    TargetKind = "executable"
	KindStaticLibrary TargetKind = "static_library"
	KindSharedLibrary TargetKind = "shared_library"
)

func parseTargetKind(s string) (TargetKind, bool) {
	switch TargetKind(s) {
	case KindExecutable, KindStaticLibrary, KindSharedLibrary:
		return TargetKind(s), true
	}
	return "", false
}

// TargetRef is a fully-qualified reference to a target in some repository.
type TargetRef struct {
	Repo string
	Name string
}

func (r TargetRef) String() string {
	return r.Repo + ":" + r.Name
}

// parseTargetRef parses a `repo:target` reference. A bare `target` or
// `:target` refers to a target in ownRepo.
func parseTargetRef(s, ownRepo string) (TargetRef, error) {
	repo, name := ownRepo, s
	if i := strings.Index(s, ":"); i >= 0 {
		name = s[i+1:]
		if i > 0 {
			repo = s[:i]
		}
		if strings.Contains(name, ":") {
			return TargetRef{}, fmt.Errorf("target reference %q has more than one ':'", s)
		}
	}
	if name == "" {
		return TargetRef{}, fmt.Errorf("target reference %q names no target", s)
	}
	return TargetRef{Repo: repo, Name: name}, nil
}

// Target is one declared build product of a repository.
type Target struct {
	Kind       TargetKind
	Name       string
	OutputName string
	// Sources is the glob-expanded, sorted set of absolute source paths
	// this target compiles.
	Sources []string
	Deps    []TargetRef
}

// Dependency is one declared dependency on another repository, by name.
type Dependency struct {
	Name     string
	URL      string
	Checkout string
	// Inline carries the declaration to use when the dependency directory
	// has no descriptor file of its own.
	Inline *schema.InlineDescriptor
}

// Repository is the loaded, immutable form of one repository's declaration.
// Identity is the canonical filesystem path in Dir.
type Repository struct {
	Name string
	Dir  string

	Dependencies []Dependency
	Targets      []*Target

	// Header search roots as absolute paths.
	PublicHeaderRoots  []string
	PrivateHeaderRoots []string

	// Sources is the repository-level glob-expanded source set. Library
	// targets without explicit sources compile this set, minus any sources
	// claimed by executable targets.
	Sources []string
}

// HeaderRoots returns the public and private header search roots together.
func (r *Repository) HeaderRoots() []string {
	roots := make([]string, 0, len(r.PublicHeaderRoots)+len(r.PrivateHeaderRoots))
	roots = append(roots, r.PublicHeaderRoots...)
	roots = append(roots, r.PrivateHeaderRoots...)
	return roots
}

// Target returns the named target, or nil.
func (r *Repository) Target(name string) *Target {
	for _, t := range r.Targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}
