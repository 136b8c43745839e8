package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/config"
	"github.com/leapstack-labs/leapasp/internal/lsp"
)

// LSPOptions holds options for the lsp command.
type LSPOptions struct {
	GroundTimeout time.Duration
}

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	opts := &LSPOptions{}

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It reports
syntax errors, unsafe variables, head cycles and atoms that no rule
derives, and offers completion, hover, go to definition and find
references for predicates.

Logs go to stderr so they never mix with the protocol stream.`,
		Example: `  # Start LSP server (usually called by an editor)
  leapasp lsp

  # Skip grounding in diagnostics
  leapasp lsp --ground-timeout 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.GroundTimeout, "ground-timeout", lsp.DefaultGroundTimeout,
		"Time budget for grounding a document during diagnostics (0 disables grounding)")

	return cmd
}

func runLSP(cmd *cobra.Command, opts *LSPOptions) error {
	logger := config.GetLogger(cmd.Context())
	server := lsp.NewServerWithLogger(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	server.SetGroundTimeout(opts.GroundTimeout)
	return server.Run(cmd.Context())
}
