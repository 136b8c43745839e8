package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/internal/starlark"
	"github.com/leapstack-labs/leapasp/pkg/core"
	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// SolveOptions holds options for the solve command.
type SolveOptions struct {
	Filter     string   // Starlark filter script
	Watch      bool     // Re-solve when an input file changes
	ExactlyOne bool     // Require a unique model
	Consts     []string // name=value constant overrides
}

// Solve errors reported with --exactly-one.
var (
	ErrNoAnswer        = errors.New("program has no model")
	ErrAmbiguousAnswer = errors.New("program has more than one model")
)

var constPattern = regexp.MustCompile(`^([a-z_][A-Za-z0-9_']*)=(.+)$`)

// NewSolveCommand creates the solve command.
func NewSolveCommand() *cobra.Command {
	opts := &SolveOptions{}
	cmd := &cobra.Command{
		Use:   "solve FILE...",
		Short: "Ground and solve programs",
		Long: `Ground the given programs together and print their stable models.

Output adapts to the environment:
  - Terminal: answers followed by a summary
  - Piped/Scripted: one fact per line, ready to be fed back as input
  - json, yaml, table: machine readable or tabular output (-o)
  - markdown: headed sections for reports

A Starlark filter script may define accept(model), keep(element) and
transform(element) to post-process every model.`,
		Example: `  # Print all models
  leapasp solve coloring.lp

  # Print at most three models as JSON
  leapasp solve -n 3 -o json coloring.lp

  # Require exactly one model
  leapasp solve --exactly-one unique.lp

  # Override a constant and filter models
  leapasp solve -c n=5 --filter filter.star queens.lp

  # Re-solve on every change
  leapasp solve --watch coloring.lp`,
		Args:              fileArgs,
		ValidArgsFunction: completeProgramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args, opts)
		},
	}

	cmd.Flags().IntP("models", "n", 0, "Maximum number of models to compute (0 for all)")
	cmd.Flags().String("opt-mode", "auto", "Optimization mode: auto, opt, optN, enum")
	cmd.Flags().Duration("timeout", 0, "Stop the search after this duration")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Starlark script filtering the models")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-solve when an input file changes")
	cmd.Flags().BoolVar(&opts.ExactlyOne, "exactly-one", false, "Fail unless the program has exactly one model")
	cmd.Flags().StringArrayVarP(&opts.Consts, "const", "c", nil, "Override a constant (name=value)")

	_ = cmd.RegisterFlagCompletionFunc("opt-mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "opt", "optN", "enum"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("filter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"star"}, cobra.ShellCompDirectiveFilterFileExt
	})

	return cmd
}

func runSolve(cmd *cobra.Command, args []string, opts *SolveOptions) error {
	cmdCtx := NewCommandContext(cmd)
	consts, err := constDefinitions(opts.Consts)
	if err != nil {
		return err
	}
	run := &solveRun{
		cmd:    cmd,
		cmdCtx: cmdCtx,
		args:   args,
		opts:   opts,
		consts: consts,
	}
	if opts.Filter != "" {
		run.filter, err = starlark.LoadFilter(opts.Filter, starlark.WithLogger(cmdCtx.Logger))
		if err != nil {
			return err
		}
	}

	if !opts.Watch {
		return run.execute(cmd.Context())
	}
	if slices.Contains(args, stdinName) {
		return errors.New("--watch cannot read standard input")
	}
	if err := run.execute(cmd.Context()); err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}
	paths := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a != stdinName {
			paths = append(paths, a)
		}
	}
	if opts.Filter != "" {
		paths = append(paths, opts.Filter)
	}
	return watchFiles(cmd.Context(), paths, cmdCtx.Logger, func(ctx context.Context) {
		cmdCtx.Renderer.Println()
		if err := run.execute(ctx); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

// constDefinitions turns name=value pairs into overriding #const
// directives.
func constDefinitions(pairs []string) (string, error) {
	var b strings.Builder
	for _, p := range pairs {
		m := constPattern.FindStringSubmatch(strings.TrimSpace(p))
		if m == nil {
			return "", fmt.Errorf("invalid constant %q: expected name=value", p)
		}
		if _, err := core.ParseSymbolicTerm(m[2]); err != nil {
			return "", fmt.Errorf("invalid constant %q: %w", p, err)
		}
		fmt.Fprintf(&b, "#const %s=%s. [override]\n", m[1], m[2])
	}
	return b.String(), nil
}

// solveRun is one configured solve invocation, repeated in watch mode.
type solveRun struct {
	cmd    *cobra.Command
	cmdCtx *CommandContext
	args   []string
	opts   *SolveOptions
	consts string
	filter *starlark.Filter
}

func (r *solveRun) execute(ctx context.Context) error {
	cfg := r.cmdCtx.Cfg
	runID := uuid.NewString()
	logger := r.cmdCtx.Logger.With("run_id", runID)
	start := time.Now()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ctl, err := r.load(ctx, logger)
	if err != nil {
		return err
	}

	if r.opts.ExactlyOne {
		return r.exactlyOne(ctx, ctl, runID, start)
	}

	var (
		inputs  []starlark.Input
		convErr error
	)
	res, err := ctl.Solve(ctx, func(m *solver.Model) bool {
		model, err := core.ModelOfElements(m.Shown())
		if err != nil {
			convErr = err
			return false
		}
		inputs = append(inputs, starlark.Input{
			Model:   model,
			Number:  m.Number(),
			Cost:    m.Cost(),
			Optimal: m.OptimalityProven(),
		})
		logger.Debug("model found", "number", m.Number(), "cost", m.Cost())
		return true
	})
	interrupted := false
	switch {
	case convErr != nil:
		return convErr
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && cfg.Timeout > 0:
		interrupted = true
		r.cmdCtx.Renderer.Warning(fmt.Sprintf("search interrupted after %s", cfg.Timeout))
	default:
		return err
	}
	if res.OptimalityProven && len(inputs) > 0 {
		inputs[len(inputs)-1].Optimal = true
	}

	views, err := r.apply(ctx, inputs, logger)
	if err != nil {
		return err
	}

	summary := output.Summary{
		Result:    resultOf(res, interrupted),
		Models:    len(views),
		Exhausted: res.Exhausted,
		Optimum:   res.OptimalityProven,
		Elapsed:   time.Since(start),
		RunID:     runID,
	}
	logger.Info("solve finished", "result", summary.Result, "models", summary.Models, "elapsed", summary.Elapsed)
	return r.cmdCtx.Renderer.Solve(output.SolveOutput{Models: views, Summary: summary})
}

// load parses every input, reporting all diagnostics, and grounds them
// into one control.
func (r *solveRun) load(ctx context.Context, logger *slog.Logger) (*solver.Control, error) {
	cfg := r.cmdCtx.Cfg
	sources, err := readSources(r.cmd, r.args)
	if err != nil {
		return nil, err
	}
	prog, err := buildProgram(r.cmdCtx.Renderer, sources)
	if err != nil {
		return nil, err
	}
	for _, c := range prog.cycles() {
		r.cmdCtx.Renderer.Warning(c.Message() + "; models may not be minimal")
	}

	scfg := solver.Config{Models: cfg.Models, OptMode: cfg.OptMode, Logger: logger}
	if r.opts.ExactlyOne {
		scfg.Models = 0
	}
	ctl := solver.New(scfg)
	for _, src := range sources {
		if err := ctl.Add(solver.Base.Name, nil, src.Text); err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
	}
	if r.consts != "" {
		if err := ctl.Add(solver.Base.Name, nil, r.consts); err != nil {
			return nil, fmt.Errorf("constants: %w", err)
		}
	}
	if err := ctl.Ground(ctx); err != nil {
		return nil, err
	}
	logger.Debug("grounded", "files", len(sources), "atoms", len(ctl.SymbolicAtoms()))
	return ctl, nil
}

func (r *solveRun) exactlyOne(ctx context.Context, ctl *solver.Control, runID string, start time.Time) error {
	m, err := core.ModelOfControl(ctx, ctl)
	switch {
	case errors.Is(err, core.ErrNoModel):
		return ErrNoAnswer
	case errors.Is(err, core.ErrMultipleModels):
		return ErrAmbiguousAnswer
	case err != nil:
		return err
	}
	views := []output.ModelView{output.NewModelView(1, nil, false, m)}
	if r.filter != nil {
		views, err = r.apply(ctx, []starlark.Input{{Model: m, Number: 1}}, r.cmdCtx.Logger)
		if err != nil {
			return err
		}
	}
	return r.cmdCtx.Renderer.Solve(output.SolveOutput{
		Models: views,
		Summary: output.Summary{
			Result:    output.ResultSatisfiable,
			Models:    len(views),
			Exhausted: true,
			Elapsed:   time.Since(start),
			RunID:     runID,
		},
	})
}

// apply runs the filter over the models, if one is configured.
func (r *solveRun) apply(ctx context.Context, inputs []starlark.Input, logger *slog.Logger) ([]output.ModelView, error) {
	views := make([]output.ModelView, 0, len(inputs))
	if r.filter == nil {
		for _, in := range inputs {
			views = append(views, output.NewModelView(in.Number, in.Cost, in.Optimal, in.Model))
		}
		return views, nil
	}
	results, err := r.filter.ApplyAll(ctx, inputs, r.cmdCtx.Cfg.Parallel)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		if !res.Accepted {
			logger.Debug("model rejected by filter", "number", inputs[i].Number)
			continue
		}
		in := inputs[i]
		views = append(views, output.NewModelView(in.Number, in.Cost, in.Optimal, res.Model))
	}
	return views, nil
}

func resultOf(res solver.Result, interrupted bool) string {
	switch {
	case res.OptimalityProven:
		return output.ResultOptimum
	case res.Satisfiable():
		return output.ResultSatisfiable
	case res.Unsatisfiable() && !interrupted:
		return output.ResultUnsatisfiable
	}
	return output.ResultUnknown
}
