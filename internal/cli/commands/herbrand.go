package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/pkg/core"
)

// HerbrandOptions holds options for the herbrand command.
type HerbrandOptions struct {
	Predicates []string // Only print atoms of these predicates
}

// NewHerbrandCommand creates the herbrand command.
func NewHerbrandCommand() *cobra.Command {
	opts := &HerbrandOptions{}
	cmd := &cobra.Command{
		Use:   "herbrand FILE...",
		Short: "Print the Herbrand base of programs",
		Long: `Print every ground atom the grounder can derive from the given programs.

The files must contain plain rules only; directives such as #show or
#const are rejected. The rules of all files are combined into one
program before grounding.`,
		Example: `  # Print the Herbrand base
  leapasp herbrand graph.lp

  # Only atoms of edge/2
  leapasp herbrand -p edge/2 graph.lp`,
		Args:              fileArgs,
		ValidArgsFunction: completeProgramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHerbrand(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Predicates, "predicate", "p", nil, "Only print atoms of these predicates (name or name/arity)")

	return cmd
}

func runHerbrand(cmd *cobra.Command, args []string, opts *HerbrandOptions) error {
	cmdCtx := NewCommandContext(cmd)

	preds := make([]core.Predicate, len(opts.Predicates))
	for i, p := range opts.Predicates {
		pred, err := core.ParsePredicate(p)
		if err != nil {
			return fmt.Errorf("invalid predicate %q: %w", p, err)
		}
		preds[i] = pred
	}

	sources, err := readSources(cmd, args)
	if err != nil {
		return err
	}
	sets := make([]core.RuleSet, 0, len(sources))
	var diags []output.DiagnosticView
	for _, src := range sources {
		prog, err := core.ParseSymbolicProgram(src.Text)
		if err != nil {
			diags = append(diags, output.NewDiagnosticView(src.Name, err))
			continue
		}
		sets = append(sets, prog)
	}
	if len(diags) > 0 {
		if err := cmdCtx.Renderer.Diagnostics(diags); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d of %d files failed to parse", ErrDiagnostics, len(diags), len(sources))
	}

	prog := core.SymbolicProgramOf(sets...)
	base, err := prog.HerbrandBase()
	if err != nil {
		return err
	}
	if len(preds) > 0 {
		base = base.Filter(func(e core.Element) bool {
			atom, ok := e.(core.GroundAtom)
			if !ok {
				return false
			}
			for _, p := range preds {
				if p.Match(atom.Predicate()) {
					return true
				}
			}
			return false
		})
	}
	cmdCtx.Logger.Debug("herbrand base", "rules", prog.Len(), "atoms", base.Len())
	return cmdCtx.Renderer.Model(base)
}
