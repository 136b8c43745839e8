package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapasp/internal/depgraph"
)

func testGraph() *depgraph.Graph {
	g := depgraph.NewGraph()
	g.AddEdge("a/0", "b/0", false)
	g.AddEdge("b/0", "a/0", false)
	g.AddEdge("a/0", "c/0", true)
	return g
}

func TestRenderer_DepsText(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false, ColorNever)
	cycles := []HeadCycleView{{File: "p.lp", Line: 3, Rule: "a; b.", Predicates: []string{"a/0", "b/0"}}}
	require.NoError(t, r.Deps(NewDepsView(testGraph(), cycles), true))

	assert.Equal(t, "level 0: a/0 b/0 (recursive)\n"+
		"level 1: c/0\n"+
		"a/0 -> b/0\n"+
		"a/0 -not-> c/0\n"+
		"b/0 -> a/0\n"+
		"stratified: yes\n", out.String())
	assert.Equal(t, "warning: p.lp:3: head cycle through a/0, b/0 in a; b.\n", errOut.String())
}

func TestRenderer_DepsUnstratified(t *testing.T) {
	g := testGraph()
	g.AddEdge("c/0", "a/0", false)

	r, out, _ := newTestRenderer(ModeText, false, ColorNever)
	require.NoError(t, r.Deps(NewDepsView(g, nil), false))
	assert.Equal(t, "level 0: a/0 b/0 c/0 (recursive)\nstratified: no (a/0 -not-> c/0)\n", out.String())
}

func TestRenderer_DepsMarkdown(t *testing.T) {
	g := testGraph()
	g.AddEdge("c/0", "a/0", false)

	r, out, _ := newTestRenderer(ModeMarkdown, false, ColorNever)
	require.NoError(t, r.Deps(NewDepsView(testGraph(), nil), true))
	assert.Equal(t, "# Dependency Graph\n\n"+
		"## Level 0\n- a/0, b/0 (recursive)\n\n"+
		"## Level 1\n- c/0\n\n"+
		"## Edges\n- `a/0 -> b/0`\n- `a/0 -not-> c/0`\n- `b/0 -> a/0`\n\n"+
		"## Summary\n- Predicates: 3\n- Dependencies: 3\n- Stratified: yes\n", out.String())

	r, out, _ = newTestRenderer(ModeMarkdown, false, ColorNever)
	require.NoError(t, r.Deps(NewDepsView(g, nil), false))
	assert.Contains(t, out.String(), "- a/0, b/0, c/0 (recursive)\n")
	assert.NotContains(t, out.String(), "## Edges")
	assert.Contains(t, out.String(), "- Stratified: no (`a/0 -not-> c/0`)\n")
}

func TestRenderer_DepsJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false, ColorNever)
	require.NoError(t, r.Deps(NewDepsView(testGraph(), nil), false))

	var got DepsView
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Stratified)
	assert.Nil(t, got.Violation)
	assert.Equal(t, []ComponentView{
		{Level: 0, Predicates: []string{"a/0", "b/0"}, Recursive: true},
		{Level: 1, Predicates: []string{"c/0"}},
	}, got.Components)
	assert.Len(t, got.Edges, 3)
}

func TestRenderer_DepsDOT(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText, false, ColorNever)
	r.DepsDOT(NewDepsView(testGraph(), nil))
	assert.Equal(t, "digraph dependencies {\n"+
		"  \"a/0\";\n  \"b/0\";\n  \"c/0\";\n"+
		"  \"a/0\" -> \"b/0\";\n"+
		"  \"a/0\" -> \"c/0\" [style=dashed];\n"+
		"  \"b/0\" -> \"a/0\";\n"+
		"}\n", out.String())
}
