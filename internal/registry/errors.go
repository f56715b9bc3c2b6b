package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/assetgrid/internal/assetid"
)

var (
	// ErrSealed is returned by mutating calls after Seal.
	ErrSealed = errors.New("registry is sealed")
	// ErrInvalidNode is wrapped by Register when a node definition is malformed.
	ErrInvalidNode = errors.New("invalid node")
)

// DuplicateIDError is returned by Register when the handle is already taken.
type DuplicateIDError struct {
	ID assetid.ID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("resource '%s' is already registered", e.ID)
}

// MissingDependency names one dependency edge whose target is not registered.
type MissingDependency struct {
	Node       assetid.ID
	Dependency assetid.ID
}

// DanglingDependencyError lists every dependency that points at a handle
// absent from the registry, in registration order.
type DanglingDependencyError struct {
	Missing []MissingDependency
}

func (e *DanglingDependencyError) Error() string {
	lines := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		lines = append(lines, fmt.Sprintf("resource '%s' depends on unregistered '%s'", m.Node, m.Dependency))
	}
	return fmt.Sprintf("dangling dependencies:\n- %s", strings.Join(lines, "\n- "))
}

// CyclicDependencyError is returned by Resolve when included nodes depend on
// each other in a loop. IDs holds every handle that sits on a cycle, in
// registration order; nodes that merely depend on a cycle are not listed.
type CyclicDependencyError struct {
	IDs []assetid.ID
	// Cycles groups IDs by strongly connected component.
	Cycles [][]assetid.ID
}

func (e *CyclicDependencyError) Error() string {
	groups := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		groups = append(groups, "{"+strings.Join(assetid.Strings(c), ", ")+"}")
	}
	return fmt.Sprintf("cyclic dependency among included resources: %s", strings.Join(groups, ", "))
}
