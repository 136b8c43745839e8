package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()
	g.AddNode("a/0")
	g.AddEdge("a/0", "b/0", false)
	g.AddEdge("b/0", "c/0", true)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasNode("c/0"))
	assert.False(t, g.HasNode("d/0"))
}

func TestGraph_AddEdge_NegativeWins(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", true)
	g.AddEdge("a", "b", false)

	assert.Equal(t, []Edge{{From: "a", To: "b", Negative: true}}, g.Edges())
}

func TestGraph_ParentsAndChildren(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", false)
	g.AddEdge("a", "c", false)
	g.AddEdge("b", "c", true)

	assert.Equal(t, []string{"a", "b"}, g.Parents("c"))
	assert.Equal(t, []string{"b", "c"}, g.Children("a"))
	assert.Empty(t, g.Parents("a"))
}

func TestGraph_Components(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  [][]string
	}{
		{
			name:  "chain",
			edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
			want:  [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:  "cycle",
			edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}, {From: "b", To: "c"}},
			want:  [][]string{{"a", "b"}, {"c"}},
		},
		{
			name:  "dependency before name order",
			edges: []Edge{{From: "z", To: "a"}},
			want:  [][]string{{"z"}, {"a"}},
		},
		{
			name:  "self loop",
			edges: []Edge{{From: "p", To: "p"}},
			want:  [][]string{{"p"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			for _, e := range tt.edges {
				g.AddEdge(e.From, e.To, e.Negative)
			}
			assert.Equal(t, tt.want, g.Components())
		})
	}
}

func TestGraph_Levels(t *testing.T) {
	g := NewGraph()
	// a and d are independent; b depends on a; c depends on b and d.
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "c", false)
	g.AddEdge("d", "c", true)
	g.AddNode("e")

	assert.Equal(t, [][]string{{"a", "d", "e"}, {"b"}, {"c"}}, g.Levels())
}

func TestGraph_Recursive(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "a", false)
	g.AddEdge("c", "c", false)
	g.AddEdge("a", "d", false)

	assert.True(t, g.Recursive("a"))
	assert.True(t, g.Recursive("c"))
	assert.False(t, g.Recursive("d"))
	assert.False(t, g.Recursive("missing"))
}

func TestGraph_Stratified(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", true)
	g.AddEdge("b", "c", false)
	ok, edge := g.Stratified()
	assert.True(t, ok)
	assert.Nil(t, edge)

	g.AddEdge("c", "a", false)
	ok, edge = g.Stratified()
	assert.False(t, ok)
	require.NotNil(t, edge)
	assert.Equal(t, "a -not-> b", edge.String())
}

func TestGraph_Positive(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", true)
	g.AddEdge("b", "c", false)

	pg := g.Positive()
	assert.Equal(t, 3, pg.NodeCount())
	assert.Equal(t, []Edge{{From: "b", To: "c"}}, pg.Edges())
}

func TestGraph_Upstream(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "c", false)
	g.AddEdge("x", "c", true)
	g.AddEdge("c", "d", false)

	assert.Equal(t, []string{"a", "b", "c", "x"}, g.Upstream("d"))
	assert.Empty(t, g.Upstream("a"))

	g.AddEdge("d", "a", false)
	assert.Contains(t, g.Upstream("d"), "d")
}

func TestGraph_Subgraph(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "c", true)
	g.AddEdge("c", "d", false)

	sub := g.Subgraph([]string{"b", "c", "missing"})
	assert.Equal(t, []string{"b", "c"}, sub.Nodes())
	assert.Equal(t, []Edge{{From: "b", To: "c", Negative: true}}, sub.Edges())
}

func TestGraph_LeveledComponents(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", false)
	g.AddEdge("b", "a", false)
	g.AddEdge("a", "c", true)
	g.AddEdge("c", "c", false)
	g.AddNode("d")

	assert.Equal(t, []Component{
		{Level: 0, Predicates: []string{"a", "b"}, Recursive: true},
		{Level: 0, Predicates: []string{"d"}},
		{Level: 1, Predicates: []string{"c"}, Recursive: true},
	}, g.LeveledComponents())
}
