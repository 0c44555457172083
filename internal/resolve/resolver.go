package resolve

import (
	"context"
	"path"
	"path/filepath"
	"sort"

	"github.com/constel-build/constel/internal/constellation"
	"github.com/constel-build/constel/internal/ctxlog"
	"github.com/constel-build/constel/internal/descriptor"
)

// CompileUnit is one source file and the object it compiles to. Object paths
// are relative to the root repository, in slash form.
type CompileUnit struct {
	Source string
	Object string
}

// BuildUnit is the fully resolved form of one target.
type BuildUnit struct {
	Repo      string
	Target    *descriptor.Target
	Qualified string

	// LinkDeps holds the qualified names of the transitive library
	// dependencies in topological order, dependencies before dependents,
	// each exactly once regardless of how many paths reach it.
	LinkDeps []string

	CompileUnits []CompileUnit

	// ClosureSources is the union of this unit's sources and those of its
	// link dependencies, sorted. Whole-program builds compile it in one
	// command instead of linking per-unit artifacts.
	ClosureSources []string

	// OutputPath is the artifact path relative to the root repository.
	OutputPath string
}

type entry struct {
	node   *constellation.Node
	target *descriptor.Target
}

// Resolve computes one BuildUnit per target in the graph, sorted by qualified
// name so repeated runs over unchanged input produce identical output.
func Resolve(ctx context.Context, g *constellation.Graph) ([]*BuildUnit, error) {
	logger := ctxlog.FromContext(ctx)

	index := make(map[string]entry)
	var qualifieds []string
	for _, n := range g.Nodes() {
		for _, t := range n.Repo.Targets {
			q := n.Repo.Name + ":" + t.Name
			index[q] = entry{node: n, target: t}
			qualifieds = append(qualifieds, q)
		}
	}
	sort.Strings(qualifieds)

	units := make([]*BuildUnit, 0, len(qualifieds))
	for _, q := range qualifieds {
		unit, err := resolveUnit(index, q)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	logger.Debug("Targets resolved.", "units", len(units))
	return units, nil
}

func resolveUnit(index map[string]entry, q string) (*BuildUnit, error) {
	e := index[q]

	order, err := linkOrder(index, q)
	if err != nil {
		return nil, err
	}

	unit := &BuildUnit{
		Repo:      e.node.Repo.Name,
		Target:    e.target,
		Qualified: q,
		// The unit itself is last in its own topological order.
		LinkDeps:   order[:len(order)-1],
		OutputPath: outputPath(e.target),
	}

	for _, src := range e.target.Sources {
		unit.CompileUnits = append(unit.CompileUnits, CompileUnit{
			Source: src,
			Object: objectPath(e.node.Repo, src, e.target.Kind),
		})
	}

	seen := make(map[string]struct{})
	for _, dq := range order {
		for _, src := range index[dq].target.Sources {
			if _, ok := seen[src]; ok {
				continue
			}
			seen[src] = struct{}{}
			unit.ClosureSources = append(unit.ClosureSources, src)
		}
	}
	sort.Strings(unit.ClosureSources)

	return unit, nil
}

// linkOrder flattens the transitive dependency-target closure of rootQ into a
// topological order, dependencies first, ending with rootQ itself. Ties among
// independent dependencies break lexicographically by qualified name.
func linkOrder(index map[string]entry, rootQ string) ([]string, error) {
	const (
		white = iota
		grey
		black
	)
	state := make(map[string]int)
	var order []string
	var stack []string

	var visit func(q string) error
	visit = func(q string) error {
		e := index[q]
		state[q] = grey
		stack = append(stack, q)

		refs := make([]string, 0, len(e.target.Deps))
		for _, ref := range e.target.Deps {
			refs = append(refs, ref.String())
		}
		sort.Strings(refs)

		for _, ref := range refs {
			de, ok := index[ref]
			if !ok {
				return &UnresolvedTargetReferenceError{From: q, Ref: ref}
			}
			if de.target.Kind == descriptor.KindExecutable {
				return &UnresolvedTargetReferenceError{
					From:   q,
					Ref:    ref,
					Reason: "executables cannot be link dependencies",
				}
			}
			switch state[ref] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == ref {
						start = i
						break
					}
				}
				return &constellation.DependencyCycleError{Cycle: append([]string(nil), stack[start:]...)}
			case black:
				continue
			default:
				if err := visit(ref); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[q] = black
		order = append(order, q)
		return nil
	}

	if err := visit(rootQ); err != nil {
		return nil, err
	}
	return order, nil
}

// objectPath places the object for src under build/obj/<repo>/, mirroring the
// source's path within its repository. Shared-library objects get a distinct
// suffix since they are compiled position-independent.
func objectPath(repo *descriptor.Repository, src string, kind descriptor.TargetKind) string {
	rel, err := filepath.Rel(repo.Dir, src)
	if err != nil || rel == "" {
		rel = filepath.Base(src)
	}
	suffix := ".o"
	if kind == descriptor.KindSharedLibrary {
		suffix = ".pic.o"
	}
	return path.Join("build", "obj", repo.Name, filepath.ToSlash(rel)+suffix)
}

func outputPath(t *descriptor.Target) string {
	switch t.Kind {
	case descriptor.KindExecutable:
		return path.Join("build", "bin", t.OutputName)
	case descriptor.KindStaticLibrary:
		return path.Join("build", "lib", "lib"+t.OutputName+".a")
	default:
		return path.Join("build", "lib", "lib"+t.OutputName+".so")
	}
}
