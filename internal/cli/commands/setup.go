package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapasp/internal/cli/config"
	"github.com/leapstack-labs/leapasp/internal/cli/output"
)

// stdinName is the file argument that reads the program from standard input.
const stdinName = "-"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration
// and the logger stored in the command context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output), cfg.Color)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cwd, _ := os.Getwd()
	return &config.Config{
		Output:      config.DefaultOutput,
		Color:       config.DefaultColor,
		LogLevel:    slog.LevelWarn,
		Parallel:    config.DefaultParallel,
		ProjectRoot: cwd,
	}
}

// source is one program file given on the command line.
type source struct {
	Name string
	Text string
}

// readSources reads every file argument in order. "-" reads standard input
// once; later occurrences are empty.
func readSources(cmd *cobra.Command, args []string) ([]source, error) {
	sources := make([]source, 0, len(args))
	stdinRead := false
	for _, name := range args {
		if name == stdinName {
			text := ""
			if !stdinRead {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return nil, fmt.Errorf("failed to read standard input: %w", err)
				}
				text = string(data)
				stdinRead = true
			}
			sources = append(sources, source{Name: "<stdin>", Text: text})
			continue
		}
		text, err := readFile(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{Name: name, Text: text})
	}
	return sources, nil
}

func readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// fileArgs requires at least one file argument.
func fileArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s requires at least one file (use - for standard input)", cmd.Name())
	}
	return nil
}

// completeProgramFiles completes file arguments with ASP sources.
func completeProgramFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"lp", "asp"}, cobra.ShellCompDirectiveFilterFileExt
}
