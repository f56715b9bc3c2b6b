package registry

import (
	"github.com/vk/assetgrid/internal/gate"
	"github.com/vk/assetgrid/internal/manifest"
	"github.com/vk/assetgrid/internal/params"
	"github.com/vk/assetgrid/internal/snapshot"
)

// Resolve produces the manifest for c. The result depends only on the
// registered nodes and c, so two calls with the same inputs return identical
// manifests. A nil context is treated as snapshot.Empty().
func (r *Registry) Resolve(c *snapshot.Context) (*manifest.Manifest, error) {
	if c == nil {
		c = snapshot.Empty()
	}
	nodes, byID, derived := r.view()

	if err := checkDangling(nodes, byID); err != nil {
		return nil, err
	}

	pass := params.Derive(c, derived...)

	// Indices into nodes, ascending, so registration order is preserved.
	included := make([]int, 0, len(nodes))
	for i, n := range nodes {
		if gate.Eval(n.Gate, pass) {
			included = append(included, i)
		}
	}

	order, err := stableOrder(nodes, byID, included)
	if err != nil {
		return nil, err
	}

	entries := make([]manifest.Entry, 0, len(order))
	for _, i := range order {
		n := nodes[i]
		var payload params.Bundle
		if n.Params != nil {
			payload = n.Params(pass)
			if payload == nil {
				payload = params.Bundle{}
			}
		}
		entries = append(entries, n.entry(payload))
	}
	return manifest.New(entries), nil
}

// Derive returns c with the registered derived values attached, exactly as a
// resolution pass sees it. Consumers that evaluate their own gates against
// the same context, such as body class rules, use it.
func (r *Registry) Derive(c *snapshot.Context) *snapshot.Context {
	if c == nil {
		c = snapshot.Empty()
	}
	_, _, derived := r.view()
	return params.Derive(c, derived...)
}
