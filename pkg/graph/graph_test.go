package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(g *Graph)
		node    Node
		wantErr error
	}{
		{
			name: "node without dependencies",
			node: Node{ID: "a"},
		},
		{
			name:    "duplicate node",
			setup:   func(g *Graph) { require.NoError(t, g.Add(Node{ID: "a"})) },
			node:    Node{ID: "a"},
			wantErr: ErrDuplicate,
		},
		{
			name:    "node clashing with component",
			setup:   func(g *Graph) { require.NoError(t, g.AddComponent("a", "unit", "")) },
			node:    Node{ID: "a"},
			wantErr: ErrDuplicate,
		},
		{
			name:    "dependency registered later",
			node:    Node{ID: "b", DependsOn: []string{"a"}},
			wantErr: ErrUnknownDependency,
		},
		{
			name:    "unknown parent",
			node:    Node{ID: "a", Parent: "core"},
			wantErr: ErrUnknownParent,
		},
		{
			name:  "dependency on component",
			setup: func(g *Graph) { require.NoError(t, g.AddComponent("core", "unit", "")) },
			node:  Node{ID: "a", DependsOn: []string{"core"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			if tt.setup != nil {
				tt.setup(g)
			}
			err := g.Add(tt.node)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			_, ok := g.Node(tt.node.ID)
			assert.True(t, ok)
		})
	}
}

type checkedSpec struct{ err error }

func (c checkedSpec) Validate() error { return c.err }

func TestAddValidatesSpec(t *testing.T) {
	errBad := errors.New("bad spec")
	g := New()

	assert.ErrorIs(t, g.Add(Node{ID: "a", Spec: checkedSpec{err: errBad}}), errBad)
	assert.Equal(t, 0, g.Len())

	require.NoError(t, g.Add(Node{ID: "a", Spec: checkedSpec{}}))
	assert.Equal(t, 1, g.Len())
}

func TestAddDeduplicatesDependencies(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(Node{ID: "a"}))
	require.NoError(t, g.Add(Node{ID: "b", DependsOn: []string{"a", "a"}}))

	n, ok := g.Node("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, n.DependsOn)
}

func TestSortKeepsRegistrationOrderForIndependentNodes(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(Node{ID: "db"}))
	require.NoError(t, g.Add(Node{ID: "role"}))
	require.NoError(t, g.Add(Node{ID: "grant", DependsOn: []string{"role", "db"}}))
	require.NoError(t, g.Add(Node{ID: "wh"}))

	sorted, err := g.Sort()
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "role", "grant", "wh"}, ids(sorted))
}

func TestSortExpandsComponentDependencies(t *testing.T) {
	g := New()
	require.NoError(t, g.AddComponent("core", "core", ""))
	require.NoError(t, g.Add(Node{ID: "core/role", Parent: "core"}))
	require.NoError(t, g.Add(Node{ID: "core/deploy", Parent: "core", DependsOn: []string{"core/role"}}))
	require.NoError(t, g.AddComponent("port", "port", ""))
	require.NoError(t, g.Add(Node{ID: "port/owner", Parent: "port", DependsOn: []string{"core"}}))

	assert.True(t, g.DependsOn("port/owner", "core/deploy"))
	assert.True(t, g.DependsOn("port/owner", "core/role"))
	assert.False(t, g.DependsOn("core/role", "port/owner"))

	layers, err := g.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, []string{"core/role"}, ids(layers[0]))
	assert.Equal(t, []string{"core/deploy"}, ids(layers[1]))
	assert.Equal(t, []string{"port/owner"}, ids(layers[2]))
}

func TestSortNestedComponents(t *testing.T) {
	g := New()
	require.NoError(t, g.AddComponent("stack", "stack", ""))
	require.NoError(t, g.AddComponent("core", "core", "stack"))
	require.NoError(t, g.Add(Node{ID: "core/db", Parent: "core"}))
	require.NoError(t, g.Add(Node{ID: "after", DependsOn: []string{"stack"}}))

	assert.Len(t, g.Children("stack"), 1)
	assert.True(t, g.DependsOn("after", "core/db"))
}

func TestSortDetectsSelfComponentCycle(t *testing.T) {
	g := New()
	require.NoError(t, g.AddComponent("core", "core", ""))
	require.NoError(t, g.Add(Node{ID: "core/a", Parent: "core", DependsOn: []string{"core"}}))

	_, err := g.Sort()
	assert.ErrorIs(t, err, ErrCycle)

	_, err = g.Layers()
	assert.ErrorIs(t, err, ErrCycle)
}

func TestSortEmptyGraph(t *testing.T) {
	g := New()
	sorted, err := g.Sort()
	require.NoError(t, err)
	assert.Empty(t, sorted)

	layers, err := g.Layers()
	require.NoError(t, err)
	assert.Empty(t, layers)
}

func TestLayerOf(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(Node{ID: "a"}))
	require.NoError(t, g.Add(Node{ID: "b", DependsOn: []string{"a"}}))
	require.NoError(t, g.Add(Node{ID: "c", DependsOn: []string{"a", "b"}}))

	layerOf, err := g.LayerOf()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, layerOf)
}

func TestBuilderStopsAtFirstError(t *testing.T) {
	g := New()
	require.NoError(t, g.AddComponent("core", "core", ""))
	b := g.Under("core")

	role := b.Add("role", "ACME", "role", nil)
	assert.Equal(t, Ref{ID: "core/role", Name: "ACME"}, role)

	b.Add("grant", "", "grant", nil, "core/missing")
	b.Add("later", "", "grant", nil, role.ID)

	assert.ErrorIs(t, b.Err(), ErrUnknownDependency)
	_, ok := g.Node("core/later")
	assert.False(t, ok)
	assert.Equal(t, 1, g.Len())
}
