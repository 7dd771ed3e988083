package yamaha

import (
	"fmt"

	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// ValidationError reports a request against a zone, input, scene or program
// the capability set does not contain. It is raised locally, before any
// network traffic.
type ValidationError struct {
	Kind string
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// UnsupportedOperationError reports a structurally valid request for a
// capability the addressed source does not expose.
type UnsupportedOperationError struct {
	Source string
	Action string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s does not support this operation", e.Source)
	}
	return fmt.Sprintf("%s does not support %s", e.Source, e.Action)
}

// MenuUnavailableError reports that the current input has no navigable menu.
type MenuUnavailableError struct {
	Input string
}

func (e *MenuUnavailableError) Error() string {
	return fmt.Sprintf("menu control unavailable for input %q", e.Input)
}

// MenuTraversalError reports an exhausted traversal: the bounded retry loop
// ran out of attempts before reaching the final path segment. The last
// observed menu state is kept for diagnostics.
type MenuTraversalError struct {
	Path       string
	Attempts   int
	LastStatus *ync.MenuStatus
}

func (e *MenuTraversalError) Error() string {
	if e.LastStatus == nil {
		return fmt.Sprintf("menu traversal of %q gave up after %d attempts (no menu status observed)", e.Path, e.Attempts)
	}
	return fmt.Sprintf("menu traversal of %q gave up after %d attempts (stuck at layer %d, menu %q)",
		e.Path, e.Attempts, e.LastStatus.Layer, e.LastStatus.Name)
}
