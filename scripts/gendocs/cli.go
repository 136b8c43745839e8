package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapasp/internal/cli"
	"github.com/leapstack-labs/leapasp/internal/cli/config"
	"github.com/leapstack-labs/leapasp/internal/cli/output"
)

// commandGroups orders the index by what a command is used for.
// Commands missing here are listed under "Other".
var commandGroups = []struct {
	title    string
	summary  string
	commands []string
}{
	{"Inspecting programs", "Read programs without searching for answer sets.", []string{"parse", "check", "deps", "herbrand"}},
	{"Solving", "Ground programs and enumerate their answer sets.", []string{"solve", "repl"}},
	{"Editor and shell integration", "", []string{"lsp", "completion", "version"}},
}

// outputModes documents the values of --output.
var outputModes = []struct {
	mode output.Mode
	desc string
}{
	{output.ModeAuto, "text on a terminal, facts otherwise"},
	{output.ModeText, "clingo-style answers and summary"},
	{output.ModeFacts, "each answer as a fact file, summary in comments"},
	{output.ModeJSON, "one JSON document"},
	{output.ModeYAML, "one YAML document"},
	{output.ModeTable, "one table row per answer or predicate level"},
	{output.ModeMarkdown, "headed sections (solve, deps)"},
}

const quickStartProgram = `% colour.lp
node(1..3). edge(1,2). edge(2,3). edge(1,3).
colour(red; green; blue).
{ assign(N, C) : colour(C) } = 1 :- node(N).
:- edge(X, Y), assign(X, C), assign(Y, C).
#show assign/2.`

// documented reports whether cmd gets a page.
func documented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "__complete"
}

// generateCLIDocs writes index.md and one page per top-level command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	if err := writeDoc(filepath.Join(outDir, "index.md"), cliIndex(root)); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	for _, cmd := range root.Commands() {
		if !documented(cmd) {
			continue
		}
		if err := writeDoc(filepath.Join(outDir, cmd.Name()+".md"), commandPage(cmd)); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}
	return nil
}

func writeDoc(path string, w *MarkdownWriter) error {
	return os.WriteFile(path, w.Bytes(), 0600)
}

// groupOf returns the index of the group listing name, or -1.
func groupOf(name string) int {
	for i, g := range commandGroups {
		if slices.Contains(g.commands, name) {
			return i
		}
	}
	return -1
}

func commandLink(cmd *cobra.Command) string {
	return fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
}

func cliIndex(root *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line reference for leapasp")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("leapasp reads answer set programs in the gringo input language, reports " +
		"positioned diagnostics, and grounds and solves them with an embedded solver.")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/leapasp/cmd/leapasp@latest")

	w.Header(2, "Quick Start")
	w.CodeBlock("prolog", quickStartProgram)
	w.CodeBlock("bash", `leapasp check colour.lp        # syntax and safety
leapasp deps colour.lp         # predicate levels and stratification
leapasp solve -n 0 colour.lp   # all answer sets`)

	byGroup := make([][]*cobra.Command, len(commandGroups)+1)
	for _, cmd := range root.Commands() {
		if !documented(cmd) {
			continue
		}
		g := groupOf(cmd.Name())
		if g < 0 {
			g = len(commandGroups)
		}
		byGroup[g] = append(byGroup[g], cmd)
	}
	for i, cmds := range byGroup {
		if len(cmds) == 0 {
			continue
		}
		title, summary := "Other", ""
		if i < len(commandGroups) {
			title, summary = commandGroups[i].title, commandGroups[i].summary
			slices.SortStableFunc(cmds, func(a, b *cobra.Command) int {
				return slices.Index(commandGroups[i].commands, a.Name()) - slices.Index(commandGroups[i].commands, b.Name())
			})
		}
		w.Header(2, title)
		if summary != "" {
			w.Paragraph(summary)
		}
		var rows [][]string
		for _, cmd := range cmds {
			rows = append(rows, []string{commandLink(cmd), cleanDescription(cmd.Short)})
		}
		w.Table([]string{"Command", "Description"}, rows)
	}

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Output Formats")
	var modes [][]string
	for _, m := range outputModes {
		modes = append(modes, []string{InlineCode(string(m.mode)), m.desc})
	}
	w.Table([]string{"--output", "Result"}, modes)

	w.Header(2, "Configuration")
	w.Paragraph("Settings are read from " + InlineCode("leapasp.yaml") + ", then from the " +
		"environment, then from flags; later sources win.")
	var env [][]string
	for _, key := range configKeys() {
		env = append(env, []string{InlineCode(key), InlineCode(config.EnvVar(key))})
	}
	w.Table([]string{"Key", "Environment"}, env)

	w.Header(2, "Exit Status")
	w.BulletList([]string{
		InlineCode("0") + ": the command ran, including when a program is unsatisfiable",
		InlineCode("1") + ": a diagnostic or error was reported on stderr, or " +
			InlineCode("--exactly-one") + " found no model or several",
	})
	return w
}

func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("leapasp "+cmd.Name(), cleanDescription(cmd.Short))
	w.GeneratedMarker()

	w.Header(1, "leapasp "+cmd.Name())
	w.Paragraph(cleanDescription(cmd.Short))

	use := cmd.UseLine()
	if !strings.HasPrefix(use, "leapasp") {
		use = "leapasp " + use
	}
	if cmd.HasSubCommands() {
		use = fmt.Sprintf("leapasp %s <shell>", cmd.Name())
	}
	w.CodeBlock("bash", use)

	if cmd.Long != "" {
		w.Header(2, "Description")
		w.Paragraph(cleanExample(cmd.Long))
	}
	if len(cmd.Aliases) > 0 {
		w.Paragraph("Also available as " + strings.Join(mapStrings(cmd.Aliases, InlineCode), ", ") + ".")
	}

	if cmd.HasSubCommands() {
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if !sub.Hidden {
				rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
			}
		}
		w.Header(2, "Shells")
		w.Table([]string{"Shell", "Description"}, rows)
	}
	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Paragraph("See the [CLI reference](/cli/) for " +
			strings.Join(flagNames(cmd.InheritedFlags()), ", ") + ".")
	}

	if g := groupOf(cmd.Name()); g >= 0 {
		var related []string
		for _, name := range commandGroups[g].commands {
			if name != cmd.Name() {
				related = append(related, fmt.Sprintf("[%s](/cli/%s)", InlineCode(name), name))
			}
		}
		w.Header(2, "See Also")
		w.BulletList(related)
	}
	return w
}

// flagCell renders a flag as "-s, --name".
func flagCell(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return InlineCode("-"+f.Shorthand) + ", " + InlineCode("--"+f.Name)
	}
	return InlineCode("--" + f.Name)
}

func flagNames(flags *pflag.FlagSet) []string {
	var names []string
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			names = append(names, InlineCode("--"+f.Name))
		}
	})
	return names
}

// writeFlagsTable writes one row per visible flag.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		def := f.DefValue
		switch f.Value.Type() {
		case "bool":
			if def == "false" {
				def = ""
			}
		case "stringSlice", "stringArray":
			if def == "[]" {
				def = ""
			}
		}
		if def != "" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{flagCell(f), f.Value.Type(), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Type", "Default", "Description"}, rows)
}

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

// cleanExample removes the common indentation of a help text block.
func cleanExample(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(example)
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
