package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/constel-build/constel/internal/ctxlog"
	"github.com/constel-build/constel/internal/fsutil"
	"github.com/constel-build/constel/internal/schema"
)

// FileName is the descriptor file every constellation-native repository
// carries at its root.
const FileName = "constel.hcl"

// Load reads and decodes the descriptor file of the repository at dir.
func Load(ctx context.Context, dir string) (*Repository, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(dir, FileName)
	logger.Debug("Loading repository descriptor.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingDescriptorError{Path: path}
		}
		return nil, fmt.Errorf("reading descriptor %s: %w", path, err)
	}

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, &MalformedDescriptorError{Path: path, Reason: diags.Error()}
	}

	var d schema.Descriptor
	if diags := gohcl.DecodeBody(file.Body, newEvalContext(dir), &d); diags.HasErrors() {
		return nil, &MalformedDescriptorError{Path: path, Reason: diags.Error()}
	}
	if d.Repository == nil {
		return nil, &MalformedDescriptorError{Path: path, Reason: "missing repository block"}
	}

	return build(ctx, path, d.Repository.Name, dir, &schema.InlineDescriptor{
		PublicHeaderRoots:  d.Repository.PublicHeaderRoots,
		PrivateHeaderRoots: d.Repository.PrivateHeaderRoots,
		SourceGlobs:        d.Repository.SourceGlobs,
		Targets:            d.Targets,
		Dependencies:       d.Dependencies,
	})
}

// FromInline builds a Repository for a dependency directory that has no
// descriptor file, from the inline declaration carried by the dependent's
// descriptor.
func FromInline(ctx context.Context, name, dir string, in *schema.InlineDescriptor) (*Repository, error) {
	origin := fmt.Sprintf("inline descriptor for %q", name)
	return build(ctx, origin, name, dir, in)
}

// newEvalContext exposes path.root so descriptor expressions can reference
// the repository directory.
func newEvalContext(dir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"path": cty.ObjectVal(map[string]cty.Value{
				"root": cty.StringVal(dir),
			}),
		},
	}
}

func build(ctx context.Context, origin, name, dir string, in *schema.InlineDescriptor) (*Repository, error) {
	logger := ctxlog.FromContext(ctx)

	if name == "" {
		return nil, &MalformedDescriptorError{Path: origin, Reason: "repository has no name"}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", abs, err)
	}

	repo := &Repository{
		Name:               name,
		Dir:                canonical,
		PublicHeaderRoots:  absRoots(canonical, in.PublicHeaderRoots),
		PrivateHeaderRoots: absRoots(canonical, in.PrivateHeaderRoots),
	}

	repo.Sources, err = fsutil.ExpandGlobs(canonical, in.SourceGlobs)
	if err != nil {
		return nil, &MalformedDescriptorError{Path: origin, Reason: err.Error()}
	}

	for _, dep := range in.Dependencies {
		if dep.Name == "" {
			return nil, &MalformedDescriptorError{Path: origin, Reason: "dependency block has no name"}
		}
		repo.Dependencies = append(repo.Dependencies, Dependency{
			Name:     dep.Name,
			URL:      dep.URL,
			Checkout: dep.Checkout,
			Inline:   dep.Descriptor,
		})
	}

	if err := buildTargets(repo, origin, in.Targets); err != nil {
		return nil, err
	}

	logger.Debug("Repository descriptor loaded.",
		"repository", repo.Name,
		"targets", len(repo.Targets),
		"dependencies", len(repo.Dependencies),
		"sources", len(repo.Sources),
	)
	return repo, nil
}

func buildTargets(repo *Repository, origin string, targets []*schema.Target) error {
	seen := make(map[string]struct{})
	var claimed []string

	for _, t := range targets {
		kind, ok := parseTargetKind(t.Kind)
		if !ok {
			return &MalformedDescriptorError{
				Path:   origin,
				Reason: fmt.Sprintf("target %q has unknown kind %q", t.Name, t.Kind),
			}
		}
		if _, dup := seen[t.Name]; dup {
			return &MalformedDescriptorError{
				Path:   origin,
				Reason: fmt.Sprintf("duplicate target name %q", t.Name),
			}
		}
		seen[t.Name] = struct{}{}

		target := &Target{
			Kind:       kind,
			Name:       t.Name,
			OutputName: t.Output,
		}
		if target.OutputName == "" {
			target.OutputName = t.Name
		}

		if len(t.Sources) > 0 {
			sources, err := fsutil.ExpandGlobs(repo.Dir, t.Sources)
			if err != nil {
				return &MalformedDescriptorError{Path: origin, Reason: err.Error()}
			}
			if len(sources) == 0 {
				return &MalformedDescriptorError{
					Path:   origin,
					Reason: fmt.Sprintf("target %q sources match no files", t.Name),
				}
			}
			target.Sources = sources
		} else if kind == KindExecutable {
			return &MalformedDescriptorError{
				Path:   origin,
				Reason: fmt.Sprintf("executable target %q declares no sources", t.Name),
			}
		}

		for _, ref := range t.Deps {
			parsed, err := parseTargetRef(ref, repo.Name)
			if err != nil {
				return &MalformedDescriptorError{Path: origin, Reason: err.Error()}
			}
			target.Deps = append(target.Deps, parsed)
		}

		if kind == KindExecutable {
			claimed = append(claimed, target.Sources...)
		}
		repo.Targets = append(repo.Targets, target)
	}

	// Library targets without explicit sources compile the repository-level
	// source set, minus anything an executable target claims for itself.
	for _, target := range repo.Targets {
		if target.Kind == KindExecutable || len(target.Sources) > 0 {
			continue
		}
		target.Sources = subtract(repo.Sources, claimed)
	}

	return nil
}

func absRoots(dir string, roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = filepath.FromSlash(r)
		if !filepath.IsAbs(r) {
			r = filepath.Join(dir, r)
		}
		out = append(out, filepath.Clean(r))
	}
	return out
}

func subtract(set, remove []string) []string {
	removed := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		removed[r] = struct{}{}
	}
	var out []string
	for _, s := range set {
		if _, ok := removed[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
