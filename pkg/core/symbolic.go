package core

import (
	"errors"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// Synthetic wrappers for parsing fragments as part of a statement.
const (
	termPrefix = ":- a("
	termSuffix = ")."
	atomPrefix = ":- "
	atomSuffix = "."
)

// parseFragment parses prefix+text+suffix as a single constraint with a
// single body element. Errors are reported relative to text.
func parseFragment(text, prefix, suffix string) (*ast.Literal, error) {
	rules, err := ParseProgram(prefix + text + suffix)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Line == 1 {
			if dropped, dropErr := pe.Drop(len(prefix), len(suffix)); dropErr == nil {
				return nil, dropped
			}
		}
		return nil, err
	}
	if len(rules) != 1 || !rules[0].IsConstraint() || len(rules[0].Body) != 1 {
		return nil, validationf("expected exactly one element: %s", text)
	}
	lit, ok := rules[0].Body[0].(*ast.Literal)
	if !ok {
		return nil, validationf("expected a literal: %s", text)
	}
	return lit, nil
}

// SymbolicTerm is a possibly non-ground term together with the text it
// was parsed from.
type SymbolicTerm struct {
	node ast.Term
	text string // empty when built from an AST
}

// ParseSymbolicTerm parses text as a single term.
func ParseSymbolicTerm(text string) (SymbolicTerm, error) {
	lit, err := parseFragment(text, termPrefix, termSuffix)
	if err != nil {
		return SymbolicTerm{}, err
	}
	atom, ok := lit.Atom.(*ast.SymbolicAtom)
	if !ok || lit.Sign != ast.NoSign {
		return SymbolicTerm{}, validationf("expected a term: %s", text)
	}
	fn, ok := atom.Symbol.(*ast.Function)
	if !ok || len(fn.Arguments) != 1 {
		return SymbolicTerm{}, validationf("expected exactly one term: %s", text)
	}
	return SymbolicTerm{node: fn.Arguments[0], text: text}, nil
}

// SymbolicTermOfInt returns the number term n.
func SymbolicTermOfInt(n int) SymbolicTerm {
	return symbolicTermOf(&ast.SymbolicTerm{Symbol: symbol.NewNumber(n)})
}

// SymbolicTermOfString returns the string term s.
func SymbolicTermOfString(s string) SymbolicTerm {
	return symbolicTermOf(&ast.SymbolicTerm{Symbol: symbol.NewString(s)})
}

func symbolicTermOf(node ast.Term) SymbolicTerm { return SymbolicTerm{node: node} }

// Node returns a copy of the AST of the term.
func (t SymbolicTerm) Node() ast.Term {
	if t.node == nil {
		return nil
	}
	return ast.Clone(t.node)
}

// Variables returns the sorted variable names of the term.
func (t SymbolicTerm) Variables() []string {
	if t.node == nil {
		return nil
	}
	return ast.Variables(t.node)
}

// String returns the parsed text, or the printed AST.
func (t SymbolicTerm) String() string {
	if t.text != "" || t.node == nil {
		return t.text
	}
	return t.node.String()
}

// SymbolicAtom is a possibly non-ground atom together with the text it
// was parsed from.
type SymbolicAtom struct {
	node ast.Atom
	text string
}

// ParseSymbolicAtom parses text as a single positive atom.
func ParseSymbolicAtom(text string) (SymbolicAtom, error) {
	lit, err := parseFragment(text, atomPrefix, atomSuffix)
	if err != nil {
		return SymbolicAtom{}, err
	}
	if lit.Sign != ast.NoSign {
		return SymbolicAtom{}, validationf("expected an atom without sign: %s", text)
	}
	atom, ok := lit.Atom.(*ast.SymbolicAtom)
	if !ok {
		return SymbolicAtom{}, validationf("expected an atom: %s", text)
	}
	return SymbolicAtom{node: atom, text: text}, nil
}

var falseAtom = SymbolicAtom{node: &ast.BooleanConstant{Value: false}}

// FalseAtom returns the #false atom.
func FalseAtom() SymbolicAtom { return falseAtom }

// Node returns a copy of the AST of the atom.
func (a SymbolicAtom) Node() ast.Atom {
	if a.node == nil {
		return nil
	}
	return ast.Clone(a.node)
}

// String returns the parsed text, or the printed AST.
func (a SymbolicAtom) String() string {
	if a.text != "" || a.node == nil {
		return a.text
	}
	return a.node.String()
}

// SymbolicRule is a rule together with the text it was parsed from.
// The zero SymbolicRule holds no rule: its accessors return zero values
// and its transformations return it unchanged.
type SymbolicRule struct {
	node *ast.Rule
	text string
}

// ParseSymbolicRule parses text as exactly one rule.
func ParseSymbolicRule(text string) (SymbolicRule, error) {
	rules, err := ParseProgram(text)
	if err != nil {
		return SymbolicRule{}, err
	}
	if len(rules) != 1 {
		return SymbolicRule{}, validationf("expected exactly one rule, got %d", len(rules))
	}
	return SymbolicRule{node: rules[0], text: text}, nil
}

func symbolicRuleOf(node *ast.Rule) SymbolicRule { return SymbolicRule{node: node} }

// Node returns a copy of the AST of the rule.
func (r SymbolicRule) Node() *ast.Rule {
	if r.node == nil {
		return nil
	}
	return ast.Clone(r.node)
}

// Head returns a copy of the rule head.
func (r SymbolicRule) Head() ast.Head {
	if r.node == nil {
		return nil
	}
	return r.Node().Head
}

// Body returns a copy of the rule body.
func (r SymbolicRule) Body() []ast.BodyElement {
	if r.node == nil {
		return nil
	}
	return r.Node().Body
}

// IsFact reports whether the rule is a fact.
func (r SymbolicRule) IsFact() bool { return r.node != nil && r.node.IsFact() }

// IsConstraint reports whether the rule is an integrity constraint.
func (r SymbolicRule) IsConstraint() bool { return r.node != nil && r.node.IsConstraint() }

// HeadVariables returns the sorted variable names of the head.
func (r SymbolicRule) HeadVariables() []string {
	if r.node == nil {
		return nil
	}
	return ast.Variables(r.node.Head)
}

// BodyVariables returns the sorted variable names of the body.
func (r SymbolicRule) BodyVariables() []string {
	if r.node == nil {
		return nil
	}
	return ast.BodyVariables(r.node.Body)
}

// GlobalSafeVariables returns the variables bound by positive body
// literals and by the terms of equality guards of body aggregates.
func (r SymbolicRule) GlobalSafeVariables() []string {
	if r.node == nil {
		return nil
	}
	return ast.GlobalSafeVariables(r.node.Body)
}

// DefaultBodySeparator joins body elements in BodyAsString.
const DefaultBodySeparator = "; "

// BodyAsString joins the printed body elements with sep.
func (r SymbolicRule) BodyAsString(sep string) string {
	if r.node == nil {
		return ""
	}
	return ast.BodyString(r.node.Body, sep)
}

// WithExtendedBody returns the rule with a literal over atom appended to
// its body. A fact becomes a rule.
func (r SymbolicRule) WithExtendedBody(atom SymbolicAtom, sign ast.Sign) SymbolicRule {
	if r.node == nil || atom.node == nil {
		return r
	}
	node := r.Node()
	node.Body = append(node.Body, &ast.Literal{Sign: sign, Atom: atom.Node()})
	return symbolicRuleOf(node)
}

// ApplyVariableSubstitution replaces the variables named in bindings.
// Other variables are left unchanged.
func (r SymbolicRule) ApplyVariableSubstitution(bindings map[string]SymbolicTerm) SymbolicRule {
	if r.node == nil {
		return r
	}
	terms := make(map[string]ast.Term, len(bindings))
	for name, t := range bindings {
		if t.node != nil {
			terms[name] = t.node
		}
	}
	return symbolicRuleOf(ast.SubstituteVariables(r.node, terms))
}

// Rules implements RuleSet.
func (r SymbolicRule) Rules() []SymbolicRule { return []SymbolicRule{r} }

// String returns the parsed text, or the printed AST.
func (r SymbolicRule) String() string {
	if r.text != "" || r.node == nil {
		return r.text
	}
	return r.node.String()
}
