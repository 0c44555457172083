package ninja

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/constel-build/constel/internal/buildcfg"
	"github.com/constel-build/constel/internal/ctxlog"
	"github.com/constel-build/constel/internal/descriptor"
	"github.com/constel-build/constel/internal/fsutil"
	"github.com/constel-build/constel/internal/resolve"
)

// Build methods. Incremental emits one compile edge per source; monolithic
// compiles each executable from its closure's full source list in a single
// command, enabling cross-module optimization.
const (
	MethodIncremental = "incremental"
	MethodMonolithic  = "monolithic"
)

// Options carries the generation-run context the emitter serializes but does
// not compute itself.
type Options struct {
	// RootDir is the root repository directory; emitted paths are made
	// relative to it where possible.
	RootDir string
	// OutputPath is the destination build file.
	OutputPath string
	// Method is MethodIncremental or MethodMonolithic.
	Method string
	// IncludeRoots holds every header search root in the constellation,
	// rendered as -I flags.
	IncludeRoots []string
	// PublicHeaderRoots holds the root repository's public header roots;
	// their files are copied into build/include.
	PublicHeaderRoots []string
	// DefaultHeaders marks the header copies as default targets, set when
	// the root repository declares a library target.
	DefaultHeaders bool
}

// OutputWriteFailureError reports an I/O fault writing the destination file.
type OutputWriteFailureError struct {
	Path string
	Err  error
}

func (e *OutputWriteFailureError) Error() string {
	return fmt.Sprintf("writing build file %s: %v", e.Path, e.Err)
}

func (e *OutputWriteFailureError) Unwrap() error {
	return e.Err
}

// Emit serializes the resolved build units under the active configuration
// into one self-contained build file. The file is rendered in memory and
// atomically replaces the destination only on full success, so a failed or
// interrupted run never leaves a corrupt build file in place.
func Emit(ctx context.Context, units []*resolve.BuildUnit, cfg *buildcfg.Configuration, env *buildcfg.Environment, opts Options) error {
	logger := ctxlog.FromContext(ctx)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	render(w, units, cfg, env, opts)
	if err := w.Err(); err != nil {
		return &OutputWriteFailureError{Path: opts.OutputPath, Err: err}
	}

	if err := writeAtomic(opts.OutputPath, buf.Bytes()); err != nil {
		return &OutputWriteFailureError{Path: opts.OutputPath, Err: err}
	}

	logger.Debug("Build file written.", "path", opts.OutputPath, "bytes", buf.Len())
	return nil
}

func render(w *Writer, units []*resolve.BuildUnit, cfg *buildcfg.Configuration, env *buildcfg.Environment, opts Options) {
	byQualified := make(map[string]*resolve.BuildUnit, len(units))
	for _, u := range units {
		byQualified[u.Qualified] = u
	}

	w.Comment("Generated file - do not edit!")
	w.Newline()

	w.Comment("Required tool locations on the build platform")
	w.Variable("cxx", env.Compiler)
	w.Variable("ld", env.Linker)
	w.Variable("ar", env.Archiver)
	w.Variable("cp", env.Copier)
	w.Newline()

	w.Comment("Tool flags variables")
	flags := cfg.CompilerFlags()
	for _, root := range opts.IncludeRoots {
		flags = append(flags, "-I"+relTo(opts.RootDir, root))
	}
	w.Variable("cxxflags", strings.Join(flags, " "))
	w.Variable("arflags", "-rcs")
	w.Newline()

	w.Comment("Build rule definitions")
	w.Rule("compile_exe", "$cxx -MD -MF $out.d $cxxflags $in -o $out", "$out.d")
	w.Rule("compile_static", "$cxx -MD -MF $out.d $cxxflags -c $in -o $out", "$out.d")
	w.Rule("compile_fpic", "$cxx -MD -MF $out.d $cxxflags -c -fPIC $in -o $out", "$out.d")
	w.Rule("link_static", "$ar $arflags $out $in", "")
	w.Rule("link_shared", "$cxx -MD -MF $out.d $cxxflags -shared -o $out $in", "$out.d")
	w.Rule("copy_file", "$cp $in $out", "")
	w.Newline()

	w.Comment("Compile objects from sources")
	emitted := make(map[string]struct{})
	for _, u := range units {
		if u.Target.Kind == descriptor.KindExecutable && opts.Method == MethodMonolithic {
			continue
		}
		rule := "compile_static"
		if u.Target.Kind == descriptor.KindSharedLibrary {
			rule = "compile_fpic"
		}
		for _, cu := range u.CompileUnits {
			if _, done := emitted[cu.Object]; done {
				continue
			}
			emitted[cu.Object] = struct{}{}
			w.Build([]string{cu.Object}, rule, []string{relTo(opts.RootDir, cu.Source)})
		}
	}
	w.Newline()

	w.Comment("Link targets, dependencies before dependents")
	var defaults []string
	for _, u := range units {
		inputs := linkInputs(u, byQualified, opts)
		switch u.Target.Kind {
		case descriptor.KindExecutable:
			w.Build([]string{u.OutputPath}, "compile_exe", inputs)
		case descriptor.KindStaticLibrary:
			w.Build([]string{u.OutputPath}, "link_static", inputs)
		case descriptor.KindSharedLibrary:
			w.Build([]string{u.OutputPath}, "link_shared", inputs)
		}
		defaults = append(defaults, u.OutputPath)
	}
	w.Newline()

	w.Comment("Convenience aliases")
	for _, u := range units {
		w.Build([]string{u.Repo + "/" + u.Target.Name}, "phony", []string{u.OutputPath})
	}
	w.Newline()

	if len(opts.PublicHeaderRoots) > 0 {
		w.Comment("Copy the public header files into the build products")
		for _, root := range opts.PublicHeaderRoots {
			files, err := fsutil.ListFiles(root)
			if err != nil {
				continue
			}
			for _, rel := range files {
				src := filepath.Join(root, filepath.FromSlash(rel))
				dst := headerDestination(root, rel, opts)
				w.Build([]string{dst}, "copy_file", []string{relTo(opts.RootDir, src)})
				if opts.DefaultHeaders {
					defaults = append(defaults, dst)
				}
			}
		}
		w.Newline()
	}

	if len(defaults) > 0 {
		w.Default(defaults...)
	}
}

// linkInputs orders a unit's link command line: transitive dependency
// artifacts in topological order first, the unit's own objects last.
func linkInputs(u *resolve.BuildUnit, byQualified map[string]*resolve.BuildUnit, opts Options) []string {
	if u.Target.Kind == descriptor.KindExecutable && opts.Method == MethodMonolithic {
		// Whole-program build: feed every source of the closure to one
		// compile command instead of linking per-unit artifacts.
		var inputs []string
		for _, src := range u.ClosureSources {
			inputs = append(inputs, relTo(opts.RootDir, src))
		}
		return inputs
	}
	var inputs []string
	if u.Target.Kind != descriptor.KindStaticLibrary {
		for _, dq := range u.LinkDeps {
			inputs = append(inputs, byQualified[dq].OutputPath)
		}
	}
	for _, cu := range u.CompileUnits {
		inputs = append(inputs, cu.Object)
	}
	return inputs
}

// headerDestination mirrors a public header into build/include: relative to
// its root when there is a single public root, relative to the repository
// otherwise so sibling roots cannot overwrite each other.
func headerDestination(root, rel string, opts Options) string {
	if len(opts.PublicHeaderRoots) == 1 {
		return path.Join("build", "include", rel)
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	return path.Join("build", "include", relTo(opts.RootDir, full))
}

// relTo makes p relative to dir when it lies underneath it; paths outside the
// root repository stay absolute.
func relTo(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// writeAtomic writes data to a temporary file in the destination directory,
// syncs it, and renames it over path.
func writeAtomic(outPath string, data []byte) error {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".constel-*.ninja")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
