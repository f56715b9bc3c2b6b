package registry

import "github.com/vk/assetgrid/internal/assetid"

// checkDangling reports every dependency that names an unregistered handle.
// The check covers all nodes, not only the ones a particular context
// includes, so the answer does not depend on the request.
func checkDangling(nodes []Node, byID map[assetid.ID]int) error {
	var missing []MissingDependency
	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			if _, ok := byID[dep]; !ok {
				missing = append(missing, MissingDependency{Node: n.ID, Dependency: dep})
			}
		}
	}
	if len(missing) > 0 {
		return &DanglingDependencyError{Missing: missing}
	}
	return nil
}
