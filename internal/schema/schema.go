package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Descriptor Structures ---

// Repository represents the `repository` block of a descriptor file. The
// label is the repository's declared name, used as its identifier in
// cross-repository target references.
type Repository struct {
	Name               string   `hcl:"name,label"`
	PublicHeaderRoots  []string `hcl:"public_header_roots,optional"`
	PrivateHeaderRoots []string `hcl:"private_header_roots,optional"`
	SourceGlobs        []string `hcl:"source_globs,optional"`
}

// Target represents a `target` block. The first label is the target kind
// (executable, static_library, shared_library), the second its name.
type Target struct {
	Kind    string   `hcl:"kind,label"`
	Name    string   `hcl:"name,label"`
	Sources []string `hcl:"sources,optional"`
	Deps    []string `hcl:"deps,optional"`
	Output  string   `hcl:"output,optional"`
}

// Dependency represents a `dependency` block naming another repository of
// the constellation. URL and Checkout are metadata for the external clone
// step; generation only maps the name to an already-materialized directory.
type Dependency struct {
	Name       string            `hcl:"name,label"`
	URL        string            `hcl:"url,optional"`
	Checkout   string            `hcl:"checkout,optional"`
	Descriptor *InlineDescriptor `hcl:"descriptor,block"`
}

// InlineDescriptor carries a declaration for a dependency repository that is
// not constellation-native (it has no descriptor file of its own). It mirrors
// the repository-level attributes plus nested targets and dependencies.
type InlineDescriptor struct {
	PublicHeaderRoots  []string      `hcl:"public_header_roots,optional"`
	PrivateHeaderRoots []string      `hcl:"private_header_roots,optional"`
	SourceGlobs        []string      `hcl:"source_globs,optional"`
	Targets            []*Target     `hcl:"target,block"`
	Dependencies       []*Dependency `hcl:"dependency,block"`
}

// Descriptor represents the top-level structure of a descriptor file.
type Descriptor struct {
	Repository   *Repository   `hcl:"repository,block"`
	Targets      []*Target     `hcl:"target,block"`
	Dependencies []*Dependency `hcl:"dependency,block"`
	Body         hcl.Body      `hcl:",remain"`
}
