package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	gostarlark "go.starlark.net/starlark"

	"github.com/leapstack-labs/leapasp/internal/starlark"
	"github.com/leapstack-labs/leapasp/pkg/core"
)

// FilterHook is a function a filter script may define.
type FilterHook struct {
	Signature   string
	Description string
}

func filterHooks() []FilterHook {
	return []FilterHook{
		{Signature: starlark.HookAccept + "(model)", Description: "Return False to drop the whole model."},
		{Signature: starlark.HookKeep + "(e)", Description: "Return False to drop one element of the model."},
		{Signature: starlark.HookTransform + "(e)", Description: "Return the element that replaces e."},
	}
}

// builtinDescriptions documents starlark.Predeclared.
var builtinDescriptions = map[string][2]string{
	"atom":    {`atom("p(1)")`, "Parses a ground atom into an atom struct."},
	"matches": {`matches(e, "p/1")`, "Reports whether e is an atom of the predicate."},
}

// modelFields documents the struct passed to accept.
var modelFields = [][]string{
	{InlineCode("number"), "int", "Position of the model in the solver output"},
	{InlineCode("cost"), "tuple of int", "Cost vector, empty without optimization"},
	{InlineCode("optimal"), "bool", "Whether the model is proven optimal"},
	{InlineCode("elements"), "tuple", "Shown elements of the model"},
}

// atomFields documents the fields of atom and term structs.
var atomFields = map[string][2]string{
	"name":    {"string", "Predicate or function name"},
	"arity":   {"int", "Number of arguments"},
	"args":    {"tuple", "Arguments: int, string or term structs"},
	"negated": {"bool", "Whether the atom is classically negated"},
	"text":    {"string", "The atom in input language syntax"},
}

// filterBuiltins returns the documented builtins, failing on builtins
// without documentation.
func filterBuiltins() ([][]string, error) {
	names := make([]string, 0)
	for name := range starlark.Predeclared() {
		names = append(names, name)
	}
	sort.Strings(names)
	var rows [][]string
	for _, name := range names {
		d, ok := builtinDescriptions[name]
		if !ok {
			return nil, fmt.Errorf("builtin %q has no description", name)
		}
		rows = append(rows, []string{InlineCode(d[0]), d[1]})
	}
	return rows, nil
}

// atomFieldRows lists the attributes of a converted atom.
func atomFieldRows() ([][]string, error) {
	a, err := core.ParseGroundAtom("p(1)")
	if err != nil {
		return nil, err
	}
	v, ok := starlark.ElementToStarlark(a).(gostarlark.HasAttrs)
	if !ok {
		return nil, fmt.Errorf("atoms are not converted to structs")
	}
	var rows [][]string
	for _, name := range v.AttrNames() {
		d, ok := atomFields[name]
		if !ok {
			return nil, fmt.Errorf("atom field %q has no description", name)
		}
		rows = append(rows, []string{InlineCode(name), d[0], d[1]})
	}
	return rows, nil
}

// generateFilterDocs writes filters.md, the reference of Starlark filter
// scripts.
func generateFilterDocs(outDir string) error {
	log.Printf("Generating filter docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	builtins, err := filterBuiltins()
	if err != nil {
		return err
	}
	fields, err := atomFieldRows()
	if err != nil {
		return err
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Filter Scripts", "Post-processing models with Starlark")
	w.GeneratedMarker()

	w.Header(1, "Filter Scripts")
	w.Paragraph("A filter script passed to " + InlineCode("leapasp solve --filter") +
		" post-processes every model. Scripts are written in Starlark and may load helper modules relative to the script.")

	w.Header(2, "Hooks")
	var hookRows [][]string
	for _, h := range filterHooks() {
		hookRows = append(hookRows, []string{InlineCode(h.Signature), h.Description})
	}
	w.Table([]string{"Hook", "Description"}, hookRows)
	w.Paragraph("A script must define at least one hook. Elements are ints, strings or atom structs.")

	w.Header(2, "Model")
	w.Table([]string{"Field", "Type", "Description"}, modelFields)

	w.Header(2, "Atoms")
	w.Table([]string{"Field", "Type", "Description"}, fields)

	w.Header(2, "Builtins")
	w.Table([]string{"Builtin", "Description"}, builtins)

	w.Header(2, "Example")
	w.CodeBlock("python", `# Only keep colourings where node 1 is red, and drop helper atoms.
def accept(model):
    return atom("assign(1,red)") in model.elements

def keep(e):
    return matches(e, "assign/2")`)

	filename := filepath.Join(outDir, "filters.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated filters.md")
	return nil
}
