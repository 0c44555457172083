package constellation

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/constel-build/constel/internal/fsutil"
)

// ValidateAcyclic checks the dependency edges for cycles using a three-color
// depth-first search. The first cycle found is returned as a
// DependencyCycleError carrying the ordered repository sequence; no attempt
// is made to enumerate further cycles.
func (g *Graph) ValidateAcyclic() error {
	const (
		white = iota // unvisited
		grey         // in the current recursion stack
		black        // fully visited, known cycle-free
	)
	color := make(map[*Node]int)
	var stack []string
	var cycle *DependencyCycleError

	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		color[n] = grey
		stack = append(stack, n.Repo.Name)
		for _, d := range n.Dependencies() {
			switch color[d] {
			case grey:
				// Back edge: the cycle is the stack suffix starting at d.
				start := 0
				for i, name := range stack {
					if name == d.Repo.Name {
						start = i
						break
					}
				}
				cycle = &DependencyCycleError{Cycle: append([]string(nil), stack[start:]...)}
				return true
			case white:
				if visit(d) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	// Start from the root so a cycle reachable from it is reported in
	// traversal order, then sweep any remaining nodes.
	if g.root != nil && visit(g.root) {
		return cycle
	}
	for _, n := range g.Nodes() {
		if color[n] == white && visit(n) {
			return cycle
		}
	}
	return nil
}

// headerClaim records which repository first claimed a logical include path
// within one closure, and the underlying file it maps to.
type headerClaim struct {
	repo string
	file string
}

// ValidateHeaders checks, per target, that no two repositories in the
// target's transitive dependency closure claim the same logical include path
// for different underlying files. Identical paths resolving to the same file
// (a shared or aliased checkout) are allowed. Collisions between repositories
// that share no target closure do not fail generation.
func (g *Graph) ValidateHeaders() error {
	namespaces := make(map[*Node]map[string]string)

	nsOf := func(n *Node) (map[string]string, error) {
		if ns, ok := namespaces[n]; ok {
			return ns, nil
		}
		ns := make(map[string]string)
		for _, root := range n.Repo.HeaderRoots() {
			files, err := fsutil.ListFiles(root)
			if err != nil {
				return nil, err
			}
			for _, rel := range files {
				if _, exists := ns[rel]; !exists {
					ns[rel] = filepath.Join(root, filepath.FromSlash(rel))
				}
			}
		}
		namespaces[n] = ns
		return ns, nil
	}

	for _, n := range g.Nodes() {
		if len(n.Repo.Targets) == 0 {
			continue
		}
		closure := g.Closure(n)

		claimed := make(map[string]headerClaim)
		for _, m := range closure {
			ns, err := nsOf(m)
			if err != nil {
				return err
			}
			includes := make([]string, 0, len(ns))
			for inc := range ns {
				includes = append(includes, inc)
			}
			sort.Strings(includes)

			for _, inc := range includes {
				file := ns[inc]
				prev, ok := claimed[inc]
				if !ok {
					claimed[inc] = headerClaim{repo: m.Repo.Name, file: file}
					continue
				}
				if prev.repo == m.Repo.Name || sameFile(prev.file, file) {
					continue
				}
				a, b := prev.repo, m.Repo.Name
				if b < a {
					a, b = b, a
				}
				return &HeaderNameCollisionError{
					Include: inc,
					RepoA:   a,
					RepoB:   b,
					Target:  n.Repo.Name + ":" + n.Repo.Targets[0].Name,
				}
			}
		}
	}
	return nil
}

// sameFile reports whether two paths resolve to the same underlying file.
func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
