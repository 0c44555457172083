package ninja

import (
	"fmt"
	"io"
	"strings"
)

// defaultWidth is the column at which long lines wrap with a `$` continuation.
const defaultWidth = 78

// Writer emits ninja syntax to an underlying io.Writer. Write errors are
// sticky: the first one is recorded and every later call becomes a no-op, so
// callers check Err once at the end.
type Writer struct {
	w     io.Writer
	width int
	err   error
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, width: defaultWidth}
}

// Err returns the first write error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Comment writes a `# text` line.
func (w *Writer) Comment(text string) {
	w.raw("# " + text + "\n")
}

// Newline writes a blank separator line.
func (w *Writer) Newline() {
	w.raw("\n")
}

// Variable writes a top-level `key = value` binding.
func (w *Writer) Variable(key, value string) {
	w.writeLine(fmt.Sprintf("%s = %s", key, value), 0)
}

// Rule writes a rule declaration. An empty depfile omits the depfile binding.
func (w *Writer) Rule(name, command, depfile string) {
	w.writeLine("rule "+name, 0)
	w.writeLine("command = "+command, 1)
	if depfile != "" {
		w.writeLine("depfile = "+depfile, 1)
	}
}

// Build writes a build edge mapping inputs to outputs through a rule.
func (w *Writer) Build(outputs []string, rule string, inputs []string) {
	line := "build " + strings.Join(escapePaths(outputs), " ") + ": " + rule
	if len(inputs) > 0 {
		line += " " + strings.Join(escapePaths(inputs), " ")
	}
	w.writeLine(line, 0)
}

// Default marks targets as defaults for invocations without arguments.
func (w *Writer) Default(targets ...string) {
	w.writeLine("default "+strings.Join(escapePaths(targets), " "), 0)
}

// escapePath escapes the characters ninja treats specially in paths.
func escapePath(p string) string {
	p = strings.ReplaceAll(p, "$", "$$")
	p = strings.ReplaceAll(p, " ", "$ ")
	p = strings.ReplaceAll(p, ":", "$:")
	return p
}

func escapePaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = escapePath(p)
	}
	return out
}

// writeLine writes one logical line, wrapping at the configured width with
// `$` continuations. Spaces preceded by `$` are escapes, never break points.
func (w *Writer) writeLine(line string, indent int) {
	leading := strings.Repeat("  ", indent)
	line = leading + line
	contLeading := leading + "    "

	// Break points are never sought inside the leading indent, so a line
	// whose content has no breakable space is emitted long rather than
	// degenerating into empty continuations.
	minIdx := len(leading)
	for len(line) > w.width {
		// Room for the trailing " $".
		available := w.width - 2
		space := lastBreakableSpace(line, minIdx, available)
		if space < 0 {
			space = firstBreakableSpace(line, max(minIdx, available))
		}
		if space < 0 {
			break
		}
		w.raw(line[:space] + " $\n")
		line = contLeading + line[space+1:]
		minIdx = len(contLeading)
	}
	w.raw(line + "\n")
}

func lastBreakableSpace(line string, min, before int) int {
	if before >= len(line) {
		before = len(line) - 1
	}
	for i := before; i > min; i-- {
		if line[i] == ' ' && line[i-1] != '$' {
			return i
		}
	}
	return -1
}

func firstBreakableSpace(line string, after int) int {
	for i := after + 1; i < len(line); i++ {
		if line[i] == ' ' && line[i-1] != '$' {
			return i
		}
	}
	return -1
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}
