package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/pkg/core"
)

// ErrDiagnostics is returned when a command reported file diagnostics.
var ErrDiagnostics = errors.New("errors found")

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Parse programs and print them normalized",
		Long: `Parse answer set programs and print every statement in normalized form.

Syntax errors are reported with the offending source line and a caret
under the failing columns. In json and yaml output each statement is
listed with its kind and line.`,
		Example: `  # Print the normalized program
  leapasp parse coloring.lp

  # List statements as JSON
  leapasp parse -o json coloring.lp

  # Read from standard input
  echo "a :- b." | leapasp parse -`,
		Args:              fileArgs,
		ValidArgsFunction: completeProgramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args)
		},
	}
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	sources, err := readSources(cmd, args)
	if err != nil {
		return err
	}

	files := make([]output.FileView, 0, len(sources))
	var diags []output.DiagnosticView
	for _, src := range sources {
		stmts, err := core.ParseStatements(src.Text)
		if err != nil {
			diags = append(diags, output.NewDiagnosticView(src.Name, err))
			continue
		}
		view := output.FileView{File: src.Name, Statements: make([]output.StatementView, len(stmts))}
		for i, stmt := range stmts {
			view.Statements[i] = output.NewStatementView(stmt)
		}
		files = append(files, view)
		cmdCtx.Logger.Debug("parsed file", "file", src.Name, "statements", len(stmts))
	}

	if len(diags) > 0 {
		if err := cmdCtx.Renderer.Diagnostics(diags); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d of %d files failed to parse", ErrDiagnostics, len(diags), len(sources))
	}
	return cmdCtx.Renderer.Program(files)
}
