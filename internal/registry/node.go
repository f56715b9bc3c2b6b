package registry

import (
	"fmt"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/gate"
	"github.com/vk/assetgrid/internal/manifest"
	"github.com/vk/assetgrid/internal/params"
)

// Node is the definition of one frontend resource.
type Node struct {
	ID   assetid.ID
	Kind manifest.Kind
	// Location is an opaque reference to the asset, passed through untouched.
	Location string
	// Dependencies must be emitted before this node when they are included.
	Dependencies []assetid.ID
	// Gate decides inclusion. Nil includes the node on every pass.
	Gate gate.Gate
	// Params builds the payload. Nil means the entry carries no payload.
	Params params.Builder
	Footer bool

	// Pass-through rendering metadata.
	Version    string
	Media      string
	ObjectName string
	// Provided marks assets the host ships itself; they are ordered like any
	// other node but carry no location.
	Provided bool
}

// normalize validates n and returns a copy with dependencies de-duplicated
// (first occurrence wins) and detached from the caller's slice.
func (n Node) normalize() (Node, error) {
	if _, err := assetid.Parse(string(n.ID)); err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if !n.Kind.Valid() {
		return Node{}, fmt.Errorf("%w: resource '%s' has no valid kind", ErrInvalidNode, n.ID)
	}

	seen := make(map[assetid.ID]struct{}, len(n.Dependencies))
	deps := make([]assetid.ID, 0, len(n.Dependencies))
	for _, dep := range n.Dependencies {
		if _, err := assetid.Parse(string(dep)); err != nil {
			return Node{}, fmt.Errorf("%w: resource '%s' dependency: %v", ErrInvalidNode, n.ID, err)
		}
		if _, dup := seen[dep]; dup {
			continue
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}
	n.Dependencies = deps
	return n, nil
}

// detached returns n with a dependency slice the registry does not share.
func (n Node) detached() Node {
	n.Dependencies = append([]assetid.ID(nil), n.Dependencies...)
	return n
}

// entry builds the manifest entry for n with the given payload.
func (n Node) entry(payload params.Bundle) manifest.Entry {
	return manifest.NewEntry(manifest.EntrySpec{
		ID:           n.ID,
		Kind:         n.Kind,
		Location:     n.Location,
		Dependencies: n.Dependencies,
		Footer:       n.Footer,
		Payload:      payload,
		Version:      n.Version,
		Media:        n.Media,
		ObjectName:   n.ObjectName,
		Provided:     n.Provided,
	})
}
