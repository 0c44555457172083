package descriptor

import "fmt"

// MissingDescriptorError reports a repository directory that carries no
// descriptor file.
type MissingDescriptorError struct {
	Path string
}

func (e *MissingDescriptorError) Error() string {
	return fmt.Sprintf("missing descriptor: %s does not exist", e.Path)
}

// MalformedDescriptorError reports a descriptor file that exists but cannot
// be parsed or decoded into the expected shape.
type MalformedDescriptorError struct {
	Path   string
	Reason string
}

func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %s: %s", e.Path, e.Reason)
}
