package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/pkg/core"
	"github.com/leapstack-labs/leapasp/pkg/solver"
)

const (
	replPrompt         = "leapasp> "
	replContinuePrompt = "     ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [FILE...]",
		Short: "Inspect terms, atoms and rules interactively",
		Long: `Start an interactive prompt for inspecting the input language.

Lines starting with a colon are commands (:term, :atom, :rule,
:predicate, :solve, ...). Any other input is added to the session
program once its statement is complete. Files given as arguments are
loaded into the session program first.`,
		Example: `  leapasp repl
  leapasp repl coloring.lp`,
		ValidArgsFunction: completeProgramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, args)
		},
	}
}

func runREPL(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	s := newREPLSession(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmdCtx.Logger, cmdCtx.Cfg.Models)
	for _, name := range args {
		text, err := readFile(name)
		if err != nil {
			return err
		}
		if err := s.addProgram(text); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "leapasp", "repl_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "leapasp REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type :help for commands, :quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.pending.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if s.handle(cmd.Context(), line) {
			break
		}
		if s.pending.Len() > 0 {
			rl.SetPrompt(replContinuePrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
	return nil
}

// replSession holds the state of one REPL: the session program and an
// incomplete statement being typed.
type replSession struct {
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	models  int
	program []string
	pending strings.Builder
}

func newREPLSession(out, errOut io.Writer, logger *slog.Logger, models int) *replSession {
	return &replSession{out: out, errOut: errOut, logger: logger, models: models}
}

// handle processes one input line and reports whether the session ends.
func (s *replSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if s.pending.Len() == 0 && strings.HasPrefix(line, ":") {
		return s.command(ctx, line)
	}

	if s.pending.Len() > 0 {
		s.pending.WriteString("\n")
	}
	s.pending.WriteString(line)
	if !strings.HasSuffix(line, ".") && !strings.HasSuffix(line, "]") {
		return false
	}
	text := s.pending.String()
	s.pending.Reset()
	if err := s.addProgram(text); err != nil {
		s.printError(err)
	}
	return false
}

// addProgram checks text and appends it to the session program.
func (s *replSession) addProgram(text string) error {
	stmts, err := core.ParseStatements(text)
	if err != nil {
		return err
	}
	s.program = append(s.program, text)
	s.logger.Debug("added to session program", "statements", len(stmts))
	return nil
}

func (s *replSession) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(name) {
	case ":quit", ":exit", ":q":
		return true
	case ":help", ":h":
		printREPLHelp(s.out)
	case ":term":
		err = s.showTerm(arg)
	case ":atom":
		err = s.showAtom(arg)
	case ":rule":
		err = s.showRule(arg)
	case ":predicate", ":pred":
		err = s.showPredicate(arg)
	case ":program":
		s.println(strings.Join(s.program, "\n"))
	case ":reset":
		s.program = nil
		s.println("session program cleared")
	case ":solve":
		err = s.solve(ctx)
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type :help for commands)\n", name)
	}
	if err != nil {
		s.printError(err)
	}
	return false
}

func (s *replSession) showTerm(text string) error {
	if text == "" {
		return errors.New("usage: :term TERM")
	}
	t, err := core.ParseSymbolicTerm(text)
	if err != nil {
		return err
	}
	s.field("term", t.Node().String())
	s.field("variables", listOrNone(t.Variables()))
	if sym, err := core.ParseGroundTerm(text); err == nil {
		s.field("value", sym.String())
	}
	return nil
}

func (s *replSession) showAtom(text string) error {
	if text == "" {
		return errors.New("usage: :atom ATOM")
	}
	a, err := core.ParseSymbolicAtom(text)
	if err != nil {
		return err
	}
	s.field("atom", a.Node().String())
	if g, err := core.ParseGroundAtom(text); err == nil {
		s.field("predicate", g.Predicate().String())
		s.field("negated", fmt.Sprint(g.StronglyNegated()))
	} else {
		s.field("ground", "no")
	}
	return nil
}

func (s *replSession) showRule(text string) error {
	if text == "" {
		return errors.New("usage: :rule RULE")
	}
	r, err := core.ParseSymbolicRule(text)
	if err != nil {
		return err
	}
	kind := output.KindRule
	switch {
	case r.IsConstraint():
		kind = output.KindConstraint
	case r.IsFact():
		kind = output.KindFact
	}
	s.field("rule", r.Node().String())
	s.field("kind", kind)
	s.field("head", listOrNone(r.HeadVariables()))
	s.field("body", listOrNone(r.BodyVariables()))
	s.field("safe", listOrNone(r.GlobalSafeVariables()))
	return nil
}

func (s *replSession) showPredicate(text string) error {
	if text == "" {
		return errors.New("usage: :predicate NAME[/ARITY]")
	}
	p, err := core.ParsePredicate(text)
	if err != nil {
		return err
	}
	s.field("name", p.Name())
	if n, ok := p.Arity(); ok {
		s.field("arity", fmt.Sprint(n))
	} else {
		s.field("arity", "any")
	}
	return nil
}

func (s *replSession) solve(ctx context.Context) error {
	ctl := solver.New(solver.Config{Models: s.models, Logger: s.logger})
	if err := ctl.Add(solver.Base.Name, nil, strings.Join(s.program, "\n")); err != nil {
		return err
	}
	if err := ctl.Ground(ctx); err != nil {
		return err
	}
	res, err := ctl.Solve(ctx, func(m *solver.Model) bool {
		model, err := core.ModelOfElements(m.Shown())
		if err != nil {
			model = core.EmptyModel()
		}
		s.println(fmt.Sprintf("Answer: %d", m.Number()))
		s.println(model.String())
		if cost := m.Cost(); len(cost) > 0 {
			s.println("Optimization: " + strings.Trim(fmt.Sprint(cost), "[]"))
		}
		return true
	})
	if err != nil {
		return err
	}
	s.println(resultOf(res, false))
	return nil
}

func (s *replSession) field(key, value string) {
	s.println(output.FormatKeyValue(key, value, 10))
}

func (s *replSession) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}

func (s *replSession) printError(err error) {
	_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
}

func listOrNone(xs []string) string {
	if len(xs) == 0 {
		return "(none)"
	}
	return strings.Join(xs, " ")
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  :term TERM          Parse a term and show its variables and value
  :atom ATOM          Parse an atom and show its predicate
  :rule RULE          Parse a rule and show its variables
  :predicate P[/N]    Parse a predicate
  :program            Print the session program
  :solve              Solve the session program
  :reset              Clear the session program
  :help               Show this help message
  :quit / :exit       Exit the REPL

Any other input is added to the session program once it ends with a
period.`
	_, _ = fmt.Fprintln(w, help)
}

func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(":term"),
		readline.PcItem(":atom"),
		readline.PcItem(":rule"),
		readline.PcItem(":predicate"),
		readline.PcItem(":program"),
		readline.PcItem(":solve"),
		readline.PcItem(":reset"),
		readline.PcItem(":help"),
		readline.PcItem(":quit"),
		readline.PcItem(":exit"),
	)
}
