package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/internal/depgraph"
	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/core"
)

// DepsOptions holds options for the deps command.
type DepsOptions struct {
	Predicates []string // Restrict the graph to these predicates and their dependencies
	Edges      bool     // Print every edge in text mode
	DOT        bool     // Print the graph in Graphviz format
}

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	opts := &DepsOptions{}
	cmd := &cobra.Command{
		Use:   "deps FILE...",
		Short: "Show the predicate dependency graph",
		Long: `Show the predicate dependency graph of the given programs.

Predicates are grouped into strongly connected components and ordered by
evaluation level. Dependencies through negation or aggregates are
negative; a program is stratified if no cycle passes through a negative
dependency. Disjunctive rules with head cycles are reported as warnings,
since the solver only handles head-cycle-free disjunction exactly.`,
		Example: `  # Show levels and stratification
  leapasp deps coloring.lp

  # Everything reach/2 depends on, with edges
  leapasp deps --edges -p reach/2 graph.lp

  # Render with Graphviz
  leapasp deps --dot graph.lp | dot -Tsvg > graph.svg`,
		Args:              fileArgs,
		ValidArgsFunction: completeProgramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Predicates, "predicate", "p", nil, "Only show these predicates (name/arity) and their dependencies")
	cmd.Flags().BoolVar(&opts.Edges, "edges", false, "Also print every dependency")
	cmd.Flags().BoolVar(&opts.DOT, "dot", false, "Print the graph in Graphviz DOT format")

	return cmd
}

func runDeps(cmd *cobra.Command, args []string, opts *DepsOptions) error {
	cmdCtx := NewCommandContext(cmd)
	sources, err := readSources(cmd, args)
	if err != nil {
		return err
	}

	prog, err := buildProgram(cmdCtx.Renderer, sources)
	if err != nil {
		return err
	}
	g := prog.Graph
	if len(opts.Predicates) > 0 {
		var keep []string
		for _, p := range opts.Predicates {
			if !prog.HasNode(p) {
				return fmt.Errorf("unknown predicate %q (expected name/arity)", p)
			}
			keep = append(keep, p)
			keep = append(keep, prog.Upstream(p)...)
		}
		slices.Sort(keep)
		g = prog.Subgraph(slices.Compact(keep))
	}
	cmdCtx.Logger.Debug("dependency graph", "predicates", g.NodeCount(), "edges", g.EdgeCount())

	view := output.NewDepsView(g, prog.cycles())
	if opts.DOT {
		cmdCtx.Renderer.DepsDOT(view)
		return nil
	}
	return cmdCtx.Renderer.Deps(view, opts.Edges)
}

// program is the dependency graph of several files.
type program struct {
	*depgraph.Program
	origin map[*ast.Rule]string
}

// buildProgram parses sources and builds their combined dependency graph.
// Parse errors are rendered as diagnostics.
func buildProgram(r *output.Renderer, sources []source) (*program, error) {
	var (
		stmts []ast.Statement
		diags []output.DiagnosticView
	)
	origin := make(map[*ast.Rule]string)
	for _, src := range sources {
		parsed, err := core.ParseStatements(src.Text)
		if err != nil {
			diags = append(diags, output.NewDiagnosticView(src.Name, err))
			continue
		}
		for _, stmt := range parsed {
			if rule, ok := stmt.(*ast.Rule); ok {
				origin[rule] = src.Name
			}
		}
		stmts = append(stmts, parsed...)
	}
	if len(diags) > 0 {
		if err := r.Diagnostics(diags); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d of %d files failed to parse", ErrDiagnostics, len(diags), len(sources))
	}
	return &program{Program: depgraph.Build(stmts), origin: origin}, nil
}

// cycles returns the head cycles of p, each attributed to its file.
func (p *program) cycles() []output.HeadCycleView {
	var out []output.HeadCycleView
	for _, c := range p.HeadCycles() {
		out = append(out, output.NewHeadCycleView(p.origin[c.Node], c))
	}
	return out
}
