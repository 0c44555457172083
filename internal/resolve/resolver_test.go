package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constel-build/constel/internal/constellation"
	"github.com/constel-build/constel/internal/descriptor"
	"github.com/constel-build/constel/internal/testutil"
)

func resolveConstellation(t *testing.T, root testutil.Repo, deps ...testutil.Repo) []*BuildUnit {
	t.Helper()
	rootDir := testutil.WriteConstellation(t, root, deps...)
	g, err := constellation.Build(context.Background(), rootDir, constellation.DirResolver(rootDir))
	require.NoError(t, err)
	units, err := Resolve(context.Background(), g)
	require.NoError(t, err)
	return units
}

func unitByName(units []*BuildUnit, qualified string) *BuildUnit {
	for _, u := range units {
		if u.Qualified == qualified {
			return u
		}
	}
	return nil
}

func TestResolve_TopologicalLinkOrder(t *testing.T) {
	// T depends on L1 and L2; L2 depends on L1. The link order must place
	// L1 before L2, and T comes after both.
	units := resolveConstellation(t,
		testutil.Repo{
			Name: "top",
			HCL: `repository "top" {}
			dependency "l1" {}
			dependency "l2" {}
			target "executable" "t" {
				sources = ["main.cpp"]
				deps    = ["l1:l1", "l2:l2"]
			}`,
			Files: map[string]string{"main.cpp": "int main() {}\n"},
		},
		testutil.Repo{
			Name: "l1",
			HCL: `repository "l1" {
				source_globs = ["*.cpp"]
			}
			target "static_library" "l1" {}`,
			Files: map[string]string{"one.cpp": "\n"},
		},
		testutil.Repo{
			Name: "l2",
			HCL: `repository "l2" {
				source_globs = ["*.cpp"]
			}
			target "static_library" "l2" {
				deps = ["l1:l1"]
			}`,
			Files: map[string]string{"two.cpp": "\n"},
		},
	)

	top := unitByName(units, "top:t")
	require.NotNil(t, top)
	assert.Equal(t, []string{"l1:l1", "l2:l2"}, top.LinkDeps)
}

func TestResolve_DiamondTargetDeduplication(t *testing.T) {
	// A's executable reaches D's library via both B and C; D must appear
	// exactly once in the link order.
	units := resolveConstellation(t,
		testutil.Repo{
			Name: "A",
			HCL: `repository "A" {}
			dependency "B" {}
			dependency "C" {}
			target "executable" "app" {
				sources = ["main.cpp"]
				deps    = ["B:b", "C:c"]
			}`,
			Files: map[string]string{"main.cpp": "int main() {}\n"},
		},
		testutil.Repo{
			Name: "B",
			HCL: `repository "B" {
				source_globs = ["*.cpp"]
			}
			dependency "D" {}
			target "static_library" "b" {
				deps = ["D:d"]
			}`,
			Files: map[string]string{"b.cpp": "\n"},
		},
		testutil.Repo{
			Name: "C",
			HCL: `repository "C" {
				source_globs = ["*.cpp"]
			}
			dependency "D" {}
			target "static_library" "c" {
				deps = ["D:d"]
			}`,
			Files: map[string]string{"c.cpp": "\n"},
		},
		testutil.Repo{
			Name: "D",
			HCL: `repository "D" {
				source_globs = ["*.cpp"]
			}
			target "static_library" "d" {}`,
			Files: map[string]string{"d.cpp": "\n"},
		},
	)

	app := unitByName(units, "A:app")
	require.NotNil(t, app)
	assert.Equal(t, []string{"D:d", "B:b", "C:c"}, app.LinkDeps)

	occurrences := 0
	for _, dep := range app.LinkDeps {
		if dep == "D:d" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
}

func TestResolve_UnresolvedTargetReference(t *testing.T) {
	rootDir := testutil.WriteConstellation(t, testutil.Repo{
		Name: "solo",
		HCL: `repository "solo" {
			source_globs = ["*.cpp"]
		}
		target "static_library" "lib" {
			deps = ["ghost:spook"]
		}`,
		Files: map[string]string{"a.cpp": "\n"},
	})

	g, err := constellation.Build(context.Background(), rootDir, constellation.DirResolver(rootDir))
	require.NoError(t, err)

	_, err = Resolve(context.Background(), g)

	var unresolved *UnresolvedTargetReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "solo:lib", unresolved.From)
	assert.Equal(t, "ghost:spook", unresolved.Ref)
}

func TestResolve_ExecutableCannotBeLinkDependency(t *testing.T) {
	rootDir := testutil.WriteConstellation(t, testutil.Repo{
		Name: "solo",
		HCL: `repository "solo" {
			source_globs = ["lib/*.cpp"]
		}
		target "executable" "tool" {
			sources = ["main.cpp"]
		}
		target "static_library" "lib" {
			deps = [":tool"]
		}`,
		Files: map[string]string{
			"main.cpp":   "int main() {}\n",
			"lib/l.cpp":  "\n",
			"lib/l2.cpp": "\n",
		},
	})

	g, err := constellation.Build(context.Background(), rootDir, constellation.DirResolver(rootDir))
	require.NoError(t, err)

	_, err = Resolve(context.Background(), g)

	var unresolved *UnresolvedTargetReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Contains(t, unresolved.Reason, "cannot be link dependencies")
}

func TestResolve_TargetCycle(t *testing.T) {
	rootDir := testutil.WriteConstellation(t, testutil.Repo{
		Name: "solo",
		HCL: `repository "solo" {
			source_globs = ["*.cpp"]
		}
		target "static_library" "one" {
			deps = [":two"]
		}
		target "static_library" "two" {
			deps = [":one"]
		}`,
		Files: map[string]string{"a.cpp": "\n"},
	})

	g, err := constellation.Build(context.Background(), rootDir, constellation.DirResolver(rootDir))
	require.NoError(t, err)

	_, err = Resolve(context.Background(), g)

	var cycle *constellation.DependencyCycleError
	require.ErrorAs(t, err, &cycle)
}

func TestResolve_UnitShape(t *testing.T) {
	units := resolveConstellation(t, testutil.Repo{
		Name: "shapes",
		HCL: `repository "shapes" {
			source_globs = ["src/*.cpp"]
		}
		target "executable" "tool" {
			sources = ["apps/tool.cpp"]
			deps    = [":core", ":core_shared"]
		}
		target "static_library" "core" {}
		target "shared_library" "core_shared" {
			output = "shapescore"
		}`,
		Files: map[string]string{
			"src/a.cpp":     "\n",
			"src/b.cpp":     "\n",
			"apps/tool.cpp": "int main() {}\n",
		},
	})

	require.Len(t, units, 3)

	core := unitByName(units, "shapes:core")
	require.NotNil(t, core)
	assert.Equal(t, "build/lib/libcore.a", core.OutputPath)
	require.Len(t, core.CompileUnits, 2)
	assert.Equal(t, "build/obj/shapes/src/a.cpp.o", core.CompileUnits[0].Object)

	shared := unitByName(units, "shapes:core_shared")
	require.NotNil(t, shared)
	assert.Equal(t, "build/lib/libshapescore.so", shared.OutputPath)
	// Shared-library objects are compiled position-independent under a
	// distinct object suffix.
	assert.Equal(t, "build/obj/shapes/src/a.cpp.pic.o", shared.CompileUnits[0].Object)

	tool := unitByName(units, "shapes:tool")
	require.NotNil(t, tool)
	assert.Equal(t, descriptor.KindExecutable, tool.Target.Kind)
	assert.Equal(t, "build/bin/tool", tool.OutputPath)
	assert.Equal(t, []string{"shapes:core", "shapes:core_shared"}, tool.LinkDeps)
	// Whole-program source closure covers the tool and both libraries,
	// with shared sources deduplicated.
	assert.Len(t, tool.ClosureSources, 3)
}
