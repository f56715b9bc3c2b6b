package registry

import (
	"fmt"
	"sync"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/params"
)

// Registry holds resource nodes and derived-value declarations for a single
// application instance.
type Registry struct {
	mu      sync.RWMutex
	sealed  bool
	nodes   []Node
	byID    map[assetid.ID]int
	derived []params.Derivation
	names   map[string]struct{}
}

// New creates an empty registry in the build phase.
func New() *Registry {
	return &Registry{
		byID:  make(map[assetid.ID]int),
		names: make(map[string]struct{}),
	}
}

// Register adds a node. It fails with *DuplicateIDError when the handle is
// taken, with ErrSealed after Seal, and with ErrInvalidNode for malformed
// definitions. Dependencies may name nodes registered later.
func (r *Registry) Register(n Node) error {
	n, err := n.normalize()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("cannot register '%s': %w", n.ID, ErrSealed)
	}
	if _, exists := r.byID[n.ID]; exists {
		return &DuplicateIDError{ID: n.ID}
	}
	r.byID[n.ID] = len(r.nodes)
	r.nodes = append(r.nodes, n)
	return nil
}

// MustRegister is like Register but panics on error. Intended for built-in
// definitions where a failure is a programming mistake.
func (r *Registry) MustRegister(nodes ...Node) {
	for _, n := range nodes {
		if err := r.Register(n); err != nil {
			panic(err)
		}
	}
}

// RegisterDerived declares a value computed once at the start of every pass.
// Derivations run in declaration order.
func (r *Registry) RegisterDerived(d params.Derivation) error {
	if d.Name == "" || d.Fn == nil {
		return fmt.Errorf("%w: derived value needs a name and a function", ErrInvalidNode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("cannot register derived value '%s': %w", d.Name, ErrSealed)
	}
	if _, exists := r.names[d.Name]; exists {
		return fmt.Errorf("derived value '%s' is already registered", d.Name)
	}
	r.names[d.Name] = struct{}{}
	r.derived = append(r.derived, d)
	return nil
}

// Seal ends the build phase. Dangling dependencies are reported here already
// so that a broken catalog fails at startup; the registry stays unsealed in
// that case so the caller can fix it up.
func (r *Registry) Seal() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil
	}
	if err := checkDangling(r.nodes, r.byID); err != nil {
		return err
	}
	r.sealed = true
	return nil
}

// Sealed reports whether Seal has completed.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Node returns the definition registered under id.
func (r *Registry) Node(id assetid.ID) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return Node{}, false
	}
	return r.nodes[i].detached(), true
}

// Nodes returns all definitions in registration order.
func (r *Registry) Nodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Node, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = n.detached()
	}
	return out
}

// view captures the state a pass needs. After Seal the slices are never
// appended to again, so sharing them is safe; before Seal they are copied.
func (r *Registry) view() ([]Node, map[assetid.ID]int, []params.Derivation) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.sealed {
		return r.nodes, r.byID, r.derived
	}
	byID := make(map[assetid.ID]int, len(r.byID))
	for k, v := range r.byID {
		byID[k] = v
	}
	return append([]Node(nil), r.nodes...), byID, append([]params.Derivation(nil), r.derived...)
}
