package lsp

import (
	"errors"
	"slices"

	"github.com/leapstack-labs/leapasp/internal/depgraph"
	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/parser"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// Occurrence is an atom in the source text.
type Occurrence struct {
	Predicate string
	Span      token.Span
	Head      bool
	Statement int // index into Analysis.Statements
}

// Analysis is what the server knows about one version of a document.
type Analysis struct {
	Statements  []ast.Statement
	ParseErr    *parser.Diagnostic
	Program     *depgraph.Program
	Occurrences []Occurrence
	Constants   map[string]*ast.Definition
}

// Analyze parses text and indexes its atoms. On a syntax error only
// ParseErr is set.
func Analyze(text string) *Analysis {
	a := &Analysis{Constants: make(map[string]*ast.Definition)}
	stmts, err := parser.ParseStatements(text)
	if err != nil {
		var diag *parser.Diagnostic
		if !errors.As(err, &diag) {
			diag = &parser.Diagnostic{Message: err.Error()}
		}
		a.ParseErr = diag
		return a
	}

	a.Statements = stmts
	a.Program = depgraph.Build(stmts)
	for i, stmt := range stmts {
		heads := headAtoms(stmt)
		ast.Walk(stmt, func(n any) bool {
			switch n := n.(type) {
			case *ast.SymbolicAtom:
				if pred, ok := depgraph.AtomPredicate(n); ok {
					a.Occurrences = append(a.Occurrences, Occurrence{
						Predicate: pred,
						Span:      n.Span,
						Head:      slices.Contains(heads, n),
						Statement: i,
					})
				}
				return false
			case *ast.Definition:
				a.Constants[n.Name] = n
			}
			return true
		})
	}
	return a
}

// headAtoms returns the atoms a rule derives.
func headAtoms(stmt ast.Statement) []*ast.SymbolicAtom {
	r, ok := stmt.(*ast.Rule)
	if !ok {
		return nil
	}
	var out []*ast.SymbolicAtom
	add := func(l *ast.Literal) {
		if atom, ok := l.Atom.(*ast.SymbolicAtom); ok && l.Sign == ast.NoSign {
			out = append(out, atom)
		}
	}
	switch h := r.Head.(type) {
	case *ast.Literal:
		add(h)
	case *ast.Disjunction:
		for _, c := range h.Elements {
			add(c.Literal)
		}
	case *ast.Aggregate:
		for _, c := range h.Elements {
			add(c.Literal)
		}
	}
	return out
}

// OccurrenceAt returns the innermost atom whose span contains offset. A
// cursor right behind an atom still counts as on it.
func (a *Analysis) OccurrenceAt(offset int) *Occurrence {
	if a == nil {
		return nil
	}
	var best *Occurrence
	for i := range a.Occurrences {
		o := &a.Occurrences[i]
		if offset < o.Span.Start.Offset || offset > o.Span.End.Offset {
			continue
		}
		if best == nil || o.Span.End.Offset-o.Span.Start.Offset < best.Span.End.Offset-best.Span.Start.Offset {
			best = o
		}
	}
	return best
}

// Heads returns the occurrences of pred in rule heads.
func (a *Analysis) Heads(pred string) []Occurrence {
	return a.occurrences(pred, true)
}

// References returns all occurrences of pred.
func (a *Analysis) References(pred string) []Occurrence {
	return a.occurrences(pred, false)
}

func (a *Analysis) occurrences(pred string, headsOnly bool) []Occurrence {
	if a == nil {
		return nil
	}
	var out []Occurrence
	for _, o := range a.Occurrences {
		if o.Predicate == pred && (o.Head || !headsOnly) {
			out = append(out, o)
		}
	}
	return out
}

// Defined reports whether pred occurs in some rule head.
func (a *Analysis) Defined(pred string) bool {
	return len(a.Heads(pred)) > 0
}

// RuleCount returns the number of statements deriving pred.
func (a *Analysis) RuleCount(pred string) int {
	seen := make(map[int]bool)
	for _, o := range a.Heads(pred) {
		seen[o.Statement] = true
	}
	return len(seen)
}

// Predicates returns every predicate of the program in sorted order.
func (a *Analysis) Predicates() []string {
	if a == nil || a.Program == nil {
		return nil
	}
	return a.Program.Nodes()
}

// DefinedPredicates returns the predicates occurring in some rule head.
func (a *Analysis) DefinedPredicates() []string {
	var out []string
	for _, pred := range a.Predicates() {
		if a.Defined(pred) {
			out = append(out, pred)
		}
	}
	return out
}
