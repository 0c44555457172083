package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/constel-build/constel/internal/buildcfg"
	"github.com/constel-build/constel/internal/constellation"
	"github.com/constel-build/constel/internal/ctxlog"
	"github.com/constel-build/constel/internal/descriptor"
	"github.com/constel-build/constel/internal/ninja"
	"github.com/constel-build/constel/internal/resolve"
)

// Run executes one generation pass: load the constellation, validate it,
// resolve every target, and emit the build file. Any failure aborts the run
// without writing output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	cfg, err := buildcfg.Lookup(a.config.ConfigName)
	if err != nil {
		return err
	}

	var env *buildcfg.Environment
	if a.config.EnvPath != "" {
		env, err = buildcfg.LoadEnvironment(a.config.EnvPath)
	} else {
		env, err = buildcfg.DefaultEnvironment()
	}
	if err != nil {
		return err
	}

	a.logger.Info("🔭 Resolving constellation...", "root", a.config.RootPath, "configuration", cfg.Name)
	graph, err := constellation.Build(ctx, a.config.RootPath, a.resolve)
	if err != nil {
		return err
	}
	a.logger.Info("Constellation resolved.", "repositories", len(graph.Nodes()))

	if err := graph.ValidateAcyclic(); err != nil {
		return err
	}
	if err := graph.ValidateHeaders(); err != nil {
		return err
	}
	a.logger.Debug("Graph validation passed.")

	units, err := resolve.Resolve(ctx, graph)
	if err != nil {
		return err
	}

	root := graph.Root().Repo
	out := a.config.OutputPath
	if out == "" {
		out = filepath.Join(root.Dir, "build.ninja")
	}

	err = ninja.Emit(ctx, units, cfg, env, ninja.Options{
		RootDir:           root.Dir,
		OutputPath:        out,
		Method:            a.config.Method,
		IncludeRoots:      includeRoots(graph),
		PublicHeaderRoots: root.PublicHeaderRoots,
		DefaultHeaders:    hasLibraryTarget(root),
	})
	if err != nil {
		return fmt.Errorf("emitting build file: %w", err)
	}

	a.logger.Info("🏁 Build file written.", "path", out, "targets", len(units))
	return nil
}

// includeRoots merges every header search root in the constellation into one
// deterministic -I list: the root repository's roots first, then every other
// repository's in name order.
func includeRoots(g *constellation.Graph) []string {
	seen := make(map[string]struct{})
	var roots []string
	add := func(rs []string) {
		for _, r := range rs {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			roots = append(roots, r)
		}
	}

	root := g.Root()
	add(root.Repo.HeaderRoots())
	for _, n := range g.Nodes() {
		if n == root {
			continue
		}
		add(n.Repo.HeaderRoots())
	}
	return roots
}

func hasLibraryTarget(repo *descriptor.Repository) bool {
	for _, t := range repo.Targets {
		if t.Kind != descriptor.KindExecutable {
			return true
		}
	}
	return false
}
