package constellation

import (
	"sort"
	"sync"

	"github.com/constel-build/constel/internal/descriptor"
)

// Graph is the set of repositories participating in one build, with their
// dependency edges. All operations on the graph are concurrency-safe; the
// builder mutates it from concurrent descriptor loads.
type Graph struct {
	// mutex protects the node maps during concurrent access.
	mutex sync.RWMutex
	// byDir indexes nodes by canonical repository path, the identity used
	// to deduplicate repositories reached via multiple dependency paths.
	byDir map[string]*Node
	// byName indexes nodes by declared repository name, the identity used
	// by cross-repository target references.
	byName map[string]*Node
	root   *Node
}

// Node is one repository in the graph.
type Node struct {
	Repo *descriptor.Repository
	// deps holds the repositories this one depends on, keyed by name.
	deps map[string]*Node
	// dependents holds the repositories depending on this one, keyed by name.
	dependents map[string]*Node
}

func newGraph() *Graph {
	return &Graph{
		byDir:  make(map[string]*Node),
		byName: make(map[string]*Node),
	}
}

// Root returns the repository the traversal started from.
func (g *Graph) Root() *Node {
	return g.root
}

// Node returns the repository with the given declared name, or nil.
func (g *Graph) Node(name string) *Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.byName[name]
}

// Nodes returns every repository in the graph, sorted by name.
func (g *Graph) Nodes() []*Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	nodes := make([]*Node, 0, len(g.byName))
	for _, n := range g.byName {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Repo.Name < nodes[j].Repo.Name })
	return nodes
}

// Dependencies returns the node's direct dependencies, sorted by name.
func (n *Node) Dependencies() []*Node {
	deps := make([]*Node, 0, len(n.deps))
	for _, d := range n.deps {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Repo.Name < deps[j].Repo.Name })
	return deps
}

// Closure returns the transitive dependency closure of n, inclusive of n
// itself, sorted by name.
func (g *Graph) Closure(n *Node) []*Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[*Node]struct{})
	var visit func(*Node)
	visit = func(cur *Node) {
		if _, ok := seen[cur]; ok {
			return
		}
		seen[cur] = struct{}{}
		for _, d := range cur.deps {
			visit(d)
		}
	}
	visit(n)

	closure := make([]*Node, 0, len(seen))
	for m := range seen {
		closure = append(closure, m)
	}
	sort.Slice(closure, func(i, j int) bool { return closure[i].Repo.Name < closure[j].Repo.Name })
	return closure
}

// nodeByDir returns the node for the canonical path, or nil. Caller must hold
// the mutex.
func (g *Graph) nodeByDirLocked(dir string) *Node {
	return g.byDir[dir]
}

// addLocked inserts a repository node. Caller must hold the mutex.
func (g *Graph) addLocked(repo *descriptor.Repository) *Node {
	n := &Node{
		Repo:       repo,
		deps:       make(map[string]*Node),
		dependents: make(map[string]*Node),
	}
	g.byDir[repo.Dir] = n
	g.byName[repo.Name] = n
	return n
}

// addEdgeLocked records that `from` depends on `to`. Adding the same edge
// twice is a no-op, which is how diamond dependencies collapse. Caller must
// hold the mutex.
func (g *Graph) addEdgeLocked(from, to *Node) {
	from.deps[to.Repo.Name] = to
	to.dependents[from.Repo.Name] = from
}
