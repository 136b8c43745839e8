// Package depgraph provides the predicate dependency graph of a program.
// It computes strongly connected components, their evaluation levels,
// stratification and head cycles of disjunctive rules.
package depgraph

import (
	"fmt"
	"slices"
	"sort"
)

// Edge is a dependency of the predicate To on the predicate From. The
// edge is negative when From occurs under default negation or inside an
// aggregate.
type Edge struct {
	From     string
	To       string
	Negative bool
}

func (e Edge) String() string {
	arrow := "->"
	if e.Negative {
		arrow = "-not->"
	}
	return fmt.Sprintf("%s %s %s", e.From, arrow, e.To)
}

// Graph is a directed graph over predicate names. Unlike a build graph it
// may contain cycles, including self loops.
type Graph struct {
	nodes   map[string]bool
	edges   map[string]map[string]bool // from -> to -> negative
	parents map[string]map[string]bool // to -> from -> negative
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string]map[string]bool),
		parents: make(map[string]map[string]bool),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string) {
	if g.nodes[id] {
		return
	}
	g.nodes[id] = true
	g.edges[id] = make(map[string]bool)
	g.parents[id] = make(map[string]bool)
}

// AddEdge adds a dependency of to on from, adding missing nodes. Adding a
// negative edge over an existing positive one makes it negative.
func (g *Graph) AddEdge(from, to string, negative bool) {
	g.AddNode(from)
	g.AddNode(to)
	neg := g.edges[from][to] || negative
	g.edges[from][to] = neg
	g.parents[to][from] = neg
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool { return g.nodes[id] }

// Nodes returns all nodes in sorted order.
func (g *Graph) Nodes() []string {
	return sortedKeys(g.nodes)
}

// Edges returns all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.Nodes() {
		for _, to := range sortedKeys(g.edges[from]) {
			out = append(out, Edge{From: from, To: to, Negative: g.edges[from][to]})
		}
	}
	return out
}

// Parents returns the predicates id depends on.
func (g *Graph) Parents(id string) []string {
	return sortedKeys(g.parents[id])
}

// Children returns the predicates depending on id.
func (g *Graph) Children(id string) []string {
	return sortedKeys(g.edges[id])
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// Positive returns the subgraph of positive edges.
func (g *Graph) Positive() *Graph {
	pg := NewGraph()
	for id := range g.nodes {
		pg.AddNode(id)
	}
	for from, children := range g.edges {
		for to, negative := range children {
			if !negative {
				pg.AddEdge(from, to, false)
			}
		}
	}
	return pg
}

// Components returns the strongly connected components, dependencies
// before dependents. Each component is sorted, and components without a
// dependency between them are ordered by their first node.
func (g *Graph) Components() [][]string {
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	var (
		stack      []string
		components [][]string
		next       int
	)

	var strongConnect func(id string)
	strongConnect = func(id string) {
		index[id] = next
		low[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range g.Children(id) {
			if _, seen := index[child]; !seen {
				strongConnect(child)
				low[id] = min(low[id], low[child])
			} else if onStack[child] {
				low[id] = min(low[id], index[child])
			}
		}

		if low[id] == index[id] {
			var comp []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				comp = append(comp, top)
				if top == id {
					break
				}
			}
			sort.Strings(comp)
			components = append(components, comp)
		}
	}

	for _, id := range g.Nodes() {
		if _, seen := index[id]; !seen {
			strongConnect(id)
		}
	}

	// Tarjan emits dependents first.
	slices.Reverse(components)
	return g.orderComponents(components)
}

// orderComponents sorts components topologically, breaking ties by the
// first node of each component.
func (g *Graph) orderComponents(components [][]string) [][]string {
	compOf := make(map[string]int, len(g.nodes))
	for i, comp := range components {
		for _, id := range comp {
			compOf[id] = i
		}
	}
	levels := g.componentLevels(components, compOf)
	order := make([]int, len(components))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if levels[ia] != levels[ib] {
			return levels[ia] < levels[ib]
		}
		return components[ia][0] < components[ib][0]
	})
	out := make([][]string, len(components))
	for i, c := range order {
		out[i] = components[c]
	}
	return out
}

// componentLevels assigns each component one more than the highest level
// of the components it depends on. components must be in topological order.
func (g *Graph) componentLevels(components [][]string, compOf map[string]int) []int {
	levels := make([]int, len(components))
	for i, comp := range components {
		for _, id := range comp {
			for parent := range g.parents[id] {
				if p := compOf[parent]; p != i {
					levels[i] = max(levels[i], levels[p]+1)
				}
			}
		}
	}
	return levels
}

// Component is a strongly connected component with its evaluation level.
type Component struct {
	Level      int
	Predicates []string
	Recursive  bool
}

// LeveledComponents returns the components in the order of Components
// together with their levels. A component is recursive if it has more
// than one member or a self loop.
func (g *Graph) LeveledComponents() []Component {
	components := g.Components()
	compOf := make(map[string]int, len(g.nodes))
	for i, comp := range components {
		for _, id := range comp {
			compOf[id] = i
		}
	}
	levels := g.componentLevels(components, compOf)

	out := make([]Component, len(components))
	for i, comp := range components {
		_, self := g.edges[comp[0]][comp[0]]
		out[i] = Component{Level: levels[i], Predicates: comp, Recursive: len(comp) > 1 || self}
	}
	return out
}

// Levels groups the nodes by evaluation level. Level 0 holds the
// predicates that depend on nothing outside their own component; a
// component at level N depends only on components below N.
func (g *Graph) Levels() [][]string {
	var levels [][]string
	for _, comp := range g.LeveledComponents() {
		for len(levels) <= comp.Level {
			levels = append(levels, []string{})
		}
		levels[comp.Level] = append(levels[comp.Level], comp.Predicates...)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels
}

// Recursive reports whether id lies on a cycle.
func (g *Graph) Recursive(id string) bool {
	for _, comp := range g.LeveledComponents() {
		if slices.Contains(comp.Predicates, id) {
			return comp.Recursive
		}
	}
	return false
}

// Stratified reports whether no cycle passes through a negative edge. If
// the graph is not stratified, the offending edge is returned.
func (g *Graph) Stratified() (bool, *Edge) {
	compOf := make(map[string]int, len(g.nodes))
	for i, comp := range g.Components() {
		for _, id := range comp {
			compOf[id] = i
		}
	}
	for _, e := range g.Edges() {
		if e.Negative && compOf[e.From] == compOf[e.To] {
			return false, &e
		}
	}
	return true, nil
}

// Upstream returns all nodes id depends on, directly or indirectly. id is
// included only if it is recursive.
func (g *Graph) Upstream(id string) []string {
	upstream := make(map[string]bool)

	var markUpstream func(nodeID string)
	markUpstream = func(nodeID string) {
		for parentID := range g.parents[nodeID] {
			if !upstream[parentID] {
				upstream[parentID] = true
				markUpstream(parentID)
			}
		}
	}

	markUpstream(id)
	return sortedKeys(upstream)
}

// Subgraph returns a new graph containing only the specified nodes and their edges.
func (g *Graph) Subgraph(nodeIDs []string) *Graph {
	subgraph := NewGraph()
	nodeSet := make(map[string]bool)
	for _, id := range nodeIDs {
		if g.nodes[id] {
			nodeSet[id] = true
			subgraph.AddNode(id)
		}
	}
	for id := range nodeSet {
		for child, negative := range g.edges[id] {
			if nodeSet[child] {
				subgraph.AddEdge(id, child, negative)
			}
		}
	}
	return subgraph
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
