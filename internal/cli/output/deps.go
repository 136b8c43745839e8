package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapasp/internal/depgraph"
)

// ComponentView is one strongly connected component of the dependency
// graph.
type ComponentView struct {
	Level      int      `json:"level" yaml:"level"`
	Predicates []string `json:"predicates" yaml:"predicates,flow"`
	Recursive  bool     `json:"recursive,omitempty" yaml:"recursive,omitempty"`
}

// EdgeView is one dependency between two predicates.
type EdgeView struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Negative bool   `json:"negative,omitempty" yaml:"negative,omitempty"`
}

// HeadCycleView is a disjunctive rule with a head cycle.
type HeadCycleView struct {
	File       string   `json:"file,omitempty" yaml:"file,omitempty"`
	Line       int      `json:"line" yaml:"line"`
	Rule       string   `json:"rule" yaml:"rule"`
	Predicates []string `json:"predicates" yaml:"predicates,flow"`
}

// NewHeadCycleView builds the view of a head cycle found in file.
func NewHeadCycleView(file string, c depgraph.HeadCycle) HeadCycleView {
	return HeadCycleView{File: file, Line: c.Span.Start.Line, Rule: c.Rule, Predicates: c.Predicates}
}

// Message returns the head cycle as a one line warning.
func (h HeadCycleView) Message() string {
	loc := h.File
	if h.Line > 0 {
		loc = fmt.Sprintf("%s:%d", h.File, h.Line)
	}
	return fmt.Sprintf("%s: head cycle through %s in %s", loc, strings.Join(h.Predicates, ", "), h.Rule)
}

// DepsView is the dependency graph of a program.
type DepsView struct {
	Components []ComponentView `json:"components" yaml:"components"`
	Edges      []EdgeView      `json:"edges" yaml:"edges"`
	Stratified bool            `json:"stratified" yaml:"stratified"`
	Violation  *EdgeView       `json:"violation,omitempty" yaml:"violation,omitempty"`
	HeadCycles []HeadCycleView `json:"head_cycles,omitempty" yaml:"head_cycles,omitempty"`
}

// NewDepsView builds the view of g.
func NewDepsView(g *depgraph.Graph, cycles []HeadCycleView) DepsView {
	v := DepsView{
		Components: []ComponentView{},
		Edges:      []EdgeView{},
		HeadCycles: cycles,
	}
	for _, c := range g.LeveledComponents() {
		v.Components = append(v.Components, ComponentView{Level: c.Level, Predicates: c.Predicates, Recursive: c.Recursive})
	}
	for _, e := range g.Edges() {
		v.Edges = append(v.Edges, EdgeView{From: e.From, To: e.To, Negative: e.Negative})
	}
	ok, violation := g.Stratified()
	v.Stratified = ok
	if violation != nil {
		v.Violation = &EdgeView{From: violation.From, To: violation.To, Negative: violation.Negative}
	}
	return v
}

func (e EdgeView) String() string {
	return depgraph.Edge{From: e.From, To: e.To, Negative: e.Negative}.String()
}

// Deps writes a dependency graph. Text mode prints one line per level and,
// with edges set, every dependency; head cycles become warnings.
func (r *Renderer) Deps(v DepsView, edges bool) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		return r.encodeYAML(v)
	case ModeTable:
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Level", "Predicates", "Recursive"})
		for _, c := range v.Components {
			t.AppendRow(table.Row{c.Level, strings.Join(c.Predicates, " "), yesNo(c.Recursive)})
		}
		t.Render()
	case ModeMarkdown:
		r.depsMarkdown(v, edges)
	default:
		r.depsText(v, edges)
	}
	for _, c := range v.HeadCycles {
		r.Warning(c.Message())
	}
	return nil
}

func (r *Renderer) depsText(v DepsView, edges bool) {
	var levels [][]string
	for _, c := range v.Components {
		for len(levels) <= c.Level {
			levels = append(levels, nil)
		}
		text := strings.Join(c.Predicates, " ")
		if c.Recursive {
			text = r.styles.Bold.Render(text) + r.styles.Muted.Render(" (recursive)")
		}
		levels[c.Level] = append(levels[c.Level], text)
	}
	for i, preds := range levels {
		r.Println(FormatKeyValue(fmt.Sprintf("level %d", i), strings.Join(preds, ", "), 0))
	}
	if edges {
		for _, e := range v.Edges {
			r.Println(e.String())
		}
	}
	if v.Stratified {
		r.Println(FormatKeyValue("stratified", "yes", 0))
	} else {
		r.Println(FormatKeyValue("stratified", fmt.Sprintf("no (%s)", v.Violation), 0))
	}
}

func (r *Renderer) depsMarkdown(v DepsView, edges bool) {
	r.Println(FormatHeader(1, "Dependency Graph"))
	r.Println()
	level := -1
	for _, c := range v.Components {
		if c.Level != level {
			if level >= 0 {
				r.Println()
			}
			level = c.Level
			r.Println(FormatHeader(2, fmt.Sprintf("Level %d", level)))
		}
		line := "- " + strings.Join(c.Predicates, ", ")
		if c.Recursive {
			line += " (recursive)"
		}
		r.Println(line)
	}
	r.Println()
	if edges && len(v.Edges) > 0 {
		r.Println(FormatHeader(2, "Edges"))
		for _, e := range v.Edges {
			r.Printf("- `%s`\n", e)
		}
		r.Println()
	}
	r.Println(FormatHeader(2, "Summary"))
	r.Println(FormatKeyValue("- Predicates", strconv.Itoa(v.predicateCount()), 0))
	r.Println(FormatKeyValue("- Dependencies", strconv.Itoa(len(v.Edges)), 0))
	if v.Stratified {
		r.Println(FormatKeyValue("- Stratified", "yes", 0))
	} else {
		r.Println(FormatKeyValue("- Stratified", fmt.Sprintf("no (`%s`)", v.Violation), 0))
	}
}

func (v DepsView) predicateCount() int {
	n := 0
	for _, c := range v.Components {
		n += len(c.Predicates)
	}
	return n
}

// DepsDOT writes the graph in Graphviz format. Negative edges are dashed.
func (r *Renderer) DepsDOT(v DepsView) {
	r.Println("digraph dependencies {")
	for _, c := range v.Components {
		for _, p := range c.Predicates {
			r.Printf("  %q;\n", p)
		}
	}
	for _, e := range v.Edges {
		if e.Negative {
			r.Printf("  %q -> %q [style=dashed];\n", e.From, e.To)
		} else {
			r.Printf("  %q -> %q;\n", e.From, e.To)
		}
	}
	r.Println("}")
}
