package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/assetgrid/internal/assetid"
	"github.com/vk/assetgrid/internal/manifest"
	"github.com/vk/assetgrid/internal/params"
	"github.com/vk/assetgrid/internal/snapshot"
)

// script is a test helper for a script node with the given dependencies.
func script(id string, deps ...string) Node {
	return Node{
		ID:           assetid.ID(id),
		Kind:         manifest.Script,
		Location:     "assets/js/" + id + ".js",
		Dependencies: toIDs(deps),
	}
}

func toIDs(raw []string) []assetid.ID {
	ids := make([]assetid.ID, len(raw))
	for i, r := range raw {
		ids[i] = assetid.ID(r)
	}
	return ids
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(script("chartjs")))

	err := r.Register(script("chartjs"))

	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, assetid.ID("chartjs"), dup.ID)
	assert.Equal(t, 1, r.Len())
}

func TestRegister_InvalidNodes(t *testing.T) {
	testCases := []struct {
		name string
		node Node
	}{
		{name: "empty id", node: Node{Kind: manifest.Script}},
		{name: "bad id", node: Node{ID: "has space", Kind: manifest.Script}},
		{name: "missing kind", node: Node{ID: "a"}},
		{name: "bad dependency", node: Node{ID: "a", Kind: manifest.Style, Dependencies: []assetid.ID{""}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().Register(tc.node)
			require.ErrorIs(t, err, ErrInvalidNode)
		})
	}
}

func TestRegister_DeduplicatesDependencies(t *testing.T) {
	r := New()
	r.MustRegister(script("jquery"), script("select2"), script("tags", "jquery", "select2", "jquery"))

	n, ok := r.Node("tags")
	require.True(t, ok)
	assert.Equal(t, []assetid.ID{"jquery", "select2"}, n.Dependencies)
}

func TestRegister_DetachesCallerSlice(t *testing.T) {
	deps := []assetid.ID{"jquery"}
	r := New()
	r.MustRegister(script("jquery"), Node{ID: "a", Kind: manifest.Script, Dependencies: deps})

	deps[0] = "changed"

	n, _ := r.Node("a")
	assert.Equal(t, []assetid.ID{"jquery"}, n.Dependencies)
}

func TestAccessors_DoNotExposeSealedState(t *testing.T) {
	r := New()
	r.MustRegister(script("a"), script("b", "a"))
	require.NoError(t, r.Seal())

	n, ok := r.Node("b")
	require.True(t, ok)
	n.Dependencies[0] = "b"

	nodes := r.Nodes()
	nodes[1].Dependencies[0] = "b"

	stored, _ := r.Node("b")
	assert.Equal(t, []assetid.ID{"a"}, stored.Dependencies)

	m, err := r.Resolve(snapshot.Empty())
	require.NoError(t, err)
	assert.Equal(t, []assetid.ID{"a", "b"}, m.IDs())
}

func TestSeal_BlocksRegistration(t *testing.T) {
	r := New()
	r.MustRegister(script("a"))
	require.NoError(t, r.Seal())
	require.True(t, r.Sealed())

	err := r.Register(script("b"))
	require.ErrorIs(t, err, ErrSealed)

	err = r.RegisterDerived(params.Derivation{Name: "x", Fn: func(*snapshot.Context) any { return 1 }})
	require.ErrorIs(t, err, ErrSealed)

	// Sealing twice is harmless.
	require.NoError(t, r.Seal())
}

func TestSeal_ReportsDanglingDependencies(t *testing.T) {
	r := New()
	r.MustRegister(script("wcv-frontend-product", "jquery-ui-core", "select2"), script("select2"))

	err := r.Seal()

	var dangling *DanglingDependencyError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, []MissingDependency{{Node: "wcv-frontend-product", Dependency: "jquery-ui-core"}}, dangling.Missing)
	assert.False(t, r.Sealed())

	// The build phase is still open, so the catalog can be completed.
	require.NoError(t, r.Register(script("jquery-ui-core")))
	require.NoError(t, r.Seal())
}

func TestRegisterDerived_Validation(t *testing.T) {
	r := New()
	fn := func(*snapshot.Context) any { return "." }

	require.ErrorIs(t, r.RegisterDerived(params.Derivation{Name: "", Fn: fn}), ErrInvalidNode)
	require.ErrorIs(t, r.RegisterDerived(params.Derivation{Name: "x"}), ErrInvalidNode)
	require.NoError(t, r.RegisterDerived(params.Derivation{Name: "x", Fn: fn}))
	require.Error(t, r.RegisterDerived(params.Derivation{Name: "x", Fn: fn}))
}

func TestNodes_RegistrationOrder(t *testing.T) {
	r := New()
	r.MustRegister(script("c"), script("a"), script("b"))

	var ids []assetid.ID
	for _, n := range r.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []assetid.ID{"c", "a", "b"}, ids)
}

func TestMustRegister_Panics(t *testing.T) {
	r := New()
	r.MustRegister(script("a"))
	assert.Panics(t, func() { r.MustRegister(script("a")) })
}

func TestErrorMessages(t *testing.T) {
	dup := &DuplicateIDError{ID: "a"}
	assert.Equal(t, "resource 'a' is already registered", dup.Error())

	dangling := &DanglingDependencyError{Missing: []MissingDependency{{Node: "a", Dependency: "b"}}}
	assert.Contains(t, dangling.Error(), "resource 'a' depends on unregistered 'b'")

	cyc := &CyclicDependencyError{IDs: []assetid.ID{"a", "b"}, Cycles: [][]assetid.ID{{"a", "b"}}}
	assert.Contains(t, cyc.Error(), "{a, b}")
}
