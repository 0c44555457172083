package constellation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/constel-build/constel/internal/ctxlog"
	"github.com/constel-build/constel/internal/descriptor"
)

// pendingDep is a declared dependency discovered during traversal but not yet
// merged into the graph.
type pendingDep struct {
	from *Node
	dep  descriptor.Dependency
}

// loadResult is the outcome of resolving and loading one dependency name.
type loadResult struct {
	dir  string
	repo *descriptor.Repository
	node *Node // non-nil when the canonical path was already in the graph
}

// Build loads the root repository's descriptor and traverses every dependency
// reachable from it, breadth-first, assembling the constellation graph. A
// repository reached via multiple paths contributes a single node; extra
// discoveries only add edges. The result is complete but not yet validated
// for cycles.
func Build(ctx context.Context, rootDir string, resolve Resolver) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building constellation graph.", "root", rootDir)

	rootRepo, err := descriptor.Load(ctx, rootDir)
	if err != nil {
		return nil, err
	}

	g := newGraph()
	g.mutex.Lock()
	g.root = g.addLocked(rootRepo)
	g.mutex.Unlock()
	logger.Debug("Root repository loaded.", "repository", rootRepo.Name)

	frontier := pendingsOf(g.root)
	for len(frontier) > 0 {
		next, err := g.expand(ctx, frontier, resolve)
		if err != nil {
			return nil, err
		}
		frontier = next
	}

	logger.Debug("Constellation graph complete.", "repositories", len(g.byName))
	return g, nil
}

func pendingsOf(n *Node) []pendingDep {
	pendings := make([]pendingDep, 0, len(n.Repo.Dependencies))
	for _, d := range n.Repo.Dependencies {
		pendings = append(pendings, pendingDep{from: n, dep: d})
	}
	return pendings
}

// expand processes one traversal wave: every dependency name in the frontier
// is resolved and its descriptor loaded concurrently, then the results are
// merged into the graph single-threaded so node and edge insertion stays
// deterministic.
func (g *Graph) expand(ctx context.Context, frontier []pendingDep, resolve Resolver) ([]pendingDep, error) {
	logger := ctxlog.FromContext(ctx)

	// Collapse the frontier by dependency name so each repository is
	// resolved and loaded at most once per wave.
	parents := make(map[string][]pendingDep)
	var order []string
	for _, p := range frontier {
		if _, ok := parents[p.dep.Name]; !ok {
			order = append(order, p.dep.Name)
		}
		parents[p.dep.Name] = append(parents[p.dep.Name], p)
	}

	results := make([]*loadResult, len(order))
	eg, egctx := errgroup.WithContext(ctx)
	for i, name := range order {
		i := i
		first := parents[name][0]
		eg.Go(func() error {
			res, err := g.load(egctx, first, resolve)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var next []pendingDep
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for i, name := range order {
		res := results[i]
		node := res.node
		if node == nil {
			// Two names in one wave can resolve to the same directory;
			// the first merge wins and later ones reuse its node.
			node = g.nodeByDirLocked(res.dir)
		}
		if node == nil {
			if clash, ok := g.byName[res.repo.Name]; ok {
				return nil, fmt.Errorf("repository name %q declared by both %s and %s",
					res.repo.Name, clash.Repo.Dir, res.repo.Dir)
			}
			node = g.addLocked(res.repo)
			next = append(next, pendingsOf(node)...)
			logger.Debug("Repository discovered.", "repository", node.Repo.Name, "dir", node.Repo.Dir)
		} else {
			logger.Debug("Repository already in graph, adding edge only.", "repository", node.Repo.Name)
		}
		for _, p := range parents[name] {
			g.addEdgeLocked(p.from, node)
		}
	}
	return next, nil
}

// load resolves one dependency name to a directory and loads its descriptor,
// falling back to the dependent's inline declaration when the directory has
// none of its own.
func (g *Graph) load(ctx context.Context, p pendingDep, resolve Resolver) (*loadResult, error) {
	dir, err := resolve(p.dep.Name)
	if err != nil {
		return nil, &UnresolvedDependencyError{Dependent: p.from.Repo.Name, Name: p.dep.Name}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &UnresolvedDependencyError{Dependent: p.from.Repo.Name, Name: p.dep.Name}
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, &UnresolvedDependencyError{Dependent: p.from.Repo.Name, Name: p.dep.Name}
	}

	g.mutex.RLock()
	existing := g.nodeByDirLocked(canonical)
	g.mutex.RUnlock()
	if existing != nil {
		return &loadResult{dir: canonical, node: existing}, nil
	}

	repo, err := descriptor.Load(ctx, canonical)
	var missing *descriptor.MissingDescriptorError
	if errors.As(err, &missing) && p.dep.Inline != nil {
		repo, err = descriptor.FromInline(ctx, p.dep.Name, canonical, p.dep.Inline)
	}
	if err != nil {
		return nil, err
	}
	return &loadResult{dir: canonical, repo: repo}, nil
}
