package resolve

import "fmt"

// UnresolvedTargetReferenceError reports a declared dependency on a
// (repository, target) pair that is absent from the graph, or that cannot
// serve as a link dependency.
type UnresolvedTargetReferenceError struct {
	From   string
	Ref    string
	Reason string
}

func (e *UnresolvedTargetReferenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unresolved target reference: %q (declared by %q): %s", e.Ref, e.From, e.Reason)
	}
	return fmt.Sprintf("unresolved target reference: %q (declared by %q) is not in the graph", e.Ref, e.From)
}
