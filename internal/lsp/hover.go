package lsp

import (
	"fmt"
	"slices"
	"strings"
)

type directiveDoc struct {
	Syntax      string
	Description string
}

// directiveDocs documents the '#' keywords of the input language.
var directiveDocs = map[string]directiveDoc{
	"#program":  {"#program name(p1, ..., pn).", "Starts a program part. Following statements belong to the part until the next #program directive."},
	"#show":     {"#show p/n. | #show t : body.", "Restricts the atoms printed with models. Without any #show statement all atoms are shown."},
	"#const":    {"#const c = t. | #const c = t. [override]", "Defines a constant that is replaced by its value before grounding. An override definition wins over default ones."},
	"#minimize": {"#minimize { w@p, t : body }.", "Prefers models with a lower sum of weights for each priority level."},
	"#maximize": {"#maximize { w@p, t : body }.", "Prefers models with a higher sum of weights for each priority level."},
	"#count":    {"#count { t : body }", "Number of distinct element tuples whose condition holds."},
	"#sum":      {"#sum { w, t : body }", "Sum of the first terms of the distinct element tuples whose condition holds."},
	"#min":      {"#min { w, t : body }", "Smallest first term among the element tuples whose condition holds, #sup if none."},
	"#max":      {"#max { w, t : body }", "Largest first term among the element tuples whose condition holds, #inf if none."},
	"#inf":      {"#inf", "The smallest term, below every other term."},
	"#sup":      {"#sup", "The largest term, above every other term."},
	"#true":     {"#true", "A literal that always holds."},
	"#false":    {"#false", "A literal that never holds."},
}

// getHover returns hover information for the given position.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	word, wordRange := doc.GetWordAtPosition(params.Position)
	if word == "" {
		return nil
	}

	if d, ok := directiveDocs[word]; ok {
		return &Hover{
			Contents: MarkupContent{
				Kind:  MarkupKindMarkdown,
				Value: fmt.Sprintf("```\n%s\n```\n\n%s", d.Syntax, d.Description),
			},
			Range: &wordRange,
		}
	}

	if word == "not" {
		return &Hover{
			Contents: MarkupContent{
				Kind:  MarkupKindMarkdown,
				Value: "**not** (default negation)\n\nHolds if the literal cannot be derived.",
			},
			Range: &wordRange,
		}
	}

	a := doc.Analysis
	if a.ParseErr != nil {
		return nil
	}

	o := a.OccurrenceAt(doc.PositionToOffset(params.Position))
	if c, ok := a.Constants[word]; ok && (o == nil || predicateName(o.Predicate) != word) {
		return &Hover{
			Contents: MarkupContent{
				Kind:  MarkupKindMarkdown,
				Value: fmt.Sprintf("```\n%s\n```", c.String()),
			},
			Range: &wordRange,
		}
	}
	if o != nil {
		r := doc.SpanToRange(o.Span)
		return &Hover{
			Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: predicateInfo(a, o.Predicate)},
			Range:    &r,
		}
	}
	return nil
}

// predicateInfo renders what the dependency graph knows about pred.
func predicateInfo(a *Analysis, pred string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n", pred)

	if n := a.RuleCount(pred); n > 0 {
		fmt.Fprintf(&sb, "Defined by %d %s", n, plural(n, "rule", "rules"))
	} else {
		sb.WriteString("Not defined by any rule")
	}
	for _, comp := range a.Program.LeveledComponents() {
		if !slices.Contains(comp.Predicates, pred) {
			continue
		}
		fmt.Fprintf(&sb, ", level %d", comp.Level)
		if comp.Recursive {
			sb.WriteString(", recursive")
		}
		break
	}
	sb.WriteString(".")

	var deps []string
	for _, e := range a.Program.Edges() {
		if e.To != pred {
			continue
		}
		if e.Negative {
			deps = append(deps, "`not "+e.From+"`")
		} else {
			deps = append(deps, "`"+e.From+"`")
		}
	}
	if len(deps) > 0 {
		fmt.Fprintf(&sb, "\n\nDepends on: %s", strings.Join(deps, ", "))
	}
	return sb.String()
}

// predicateName strips the arity and classical negation from pred.
func predicateName(pred string) string {
	name, _ := splitPredicate(pred)
	return strings.TrimPrefix(name, "-")
}

// getDefinition returns the rule heads deriving the predicate under the
// cursor.
func (s *Server) getDefinition(params DefinitionParams) []Location {
	return s.locations(params.TextDocumentPositionParams, true)
}

// getReferences returns the occurrences of the predicate under the
// cursor. Rule heads are left out unless declarations are requested.
func (s *Server) getReferences(params ReferenceParams) []Location {
	locations := s.locations(params.TextDocumentPositionParams, false)
	if params.Context.IncludeDeclaration {
		return locations
	}
	heads := s.locations(params.TextDocumentPositionParams, true)
	out := locations[:0]
	for _, l := range locations {
		if !slices.Contains(heads, l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Server) locations(params TextDocumentPositionParams, headsOnly bool) []Location {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || doc.Analysis.ParseErr != nil {
		return nil
	}
	a := doc.Analysis
	o := a.OccurrenceAt(doc.PositionToOffset(params.Position))
	if o == nil {
		return nil
	}

	occurrences := a.occurrences(o.Predicate, headsOnly)
	locations := make([]Location, 0, len(occurrences))
	for _, occ := range occurrences {
		locations = append(locations, Location{URI: doc.URI, Range: doc.SpanToRange(occ.Span)})
	}
	return locations
}
