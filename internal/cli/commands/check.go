package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/internal/depgraph"
	"github.com/leapstack-labs/leapasp/pkg/core"
	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Ground bool // Also ground each file to find unsafe variables
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check programs for errors",
		Long: `Check answer set programs for syntax errors.

Files are checked concurrently and every failing file is reported, not
only the first. With --ground each file is also grounded on its own,
which reports unsafe variables and unsupported constructs. Disjunctive
rules with head cycles are reported as warnings.`,
		Example: `  # Check all programs in a directory
  leapasp check *.lp

  # Also ground each program
  leapasp check --ground coloring.lp`,
		Args:              fileArgs,
		ValidArgsFunction: completeProgramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Ground, "ground", false, "Also ground each file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd)
	sources, err := readSources(cmd, args)
	if err != nil {
		return err
	}

	results := make([]checkResult, len(sources))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cmdCtx.Cfg.Parallel)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = checkSource(ctx, src, opts, cmdCtx.Logger)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var diags []output.DiagnosticView
	for i, res := range results {
		if res.err != nil {
			diags = append(diags, output.NewDiagnosticView(sources[i].Name, res.err))
		}
	}
	if err := cmdCtx.Renderer.Diagnostics(diags); err != nil {
		return err
	}
	for _, res := range results {
		for _, c := range res.cycles {
			cmdCtx.Renderer.Warning(c.Message())
		}
	}
	if len(diags) > 0 {
		return fmt.Errorf("%w: %d of %d files have errors", ErrDiagnostics, len(diags), len(sources))
	}
	if mode := cmdCtx.Renderer.EffectiveMode(); mode != output.ModeJSON && mode != output.ModeYAML {
		cmdCtx.Renderer.Success(fmt.Sprintf("%d files OK", len(sources)))
	}
	return nil
}

type checkResult struct {
	err    error
	cycles []output.HeadCycleView
}

func checkSource(ctx context.Context, src source, opts *CheckOptions, logger *slog.Logger) checkResult {
	stmts, err := core.ParseStatements(src.Text)
	if err != nil {
		return checkResult{err: err}
	}
	var res checkResult
	for _, c := range depgraph.Build(stmts).HeadCycles() {
		res.cycles = append(res.cycles, output.NewHeadCycleView(src.Name, c))
	}
	if !opts.Ground {
		return res
	}
	ctl := solver.New(solver.Config{Logger: logger.With("file", src.Name)})
	if err := ctl.Add(solver.Base.Name, nil, src.Text); err != nil {
		res.err = err
		return res
	}
	res.err = ctl.Ground(ctx)
	return res
}
