package core

import (
	"context"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// RuleSet is implemented by values that contribute rules to a program.
type RuleSet interface {
	Rules() []SymbolicRule
}

// SymbolicProgram is an ordered sequence of rules, optionally with the
// text it was parsed from. Use it through a pointer.
type SymbolicProgram struct {
	rules []SymbolicRule
	text  string
	// parsed is true when text is the source of rules.
	parsed bool

	herbrand func() (Model, error)
}

// ParseSymbolicProgram parses text as a sequence of rules. Each rule
// keeps its own source text, and the program keeps the whole text.
func ParseSymbolicProgram(text string) (*SymbolicProgram, error) {
	nodes, err := ParseProgram(text)
	if err != nil {
		return nil, err
	}
	rules := make([]SymbolicRule, len(nodes))
	for i, n := range nodes {
		src := n.GetSpan().Slice(text)
		r, err := ParseSymbolicRule(src)
		if err != nil {
			return nil, err
		}
		rules[i] = r
	}
	return newSymbolicProgram(rules, text, true), nil
}

// SymbolicProgramOf concatenates the rules of sets.
func SymbolicProgramOf(sets ...RuleSet) *SymbolicProgram {
	var rules []SymbolicRule
	for _, s := range sets {
		rules = append(rules, s.Rules()...)
	}
	return newSymbolicProgram(rules, "", false)
}

func newSymbolicProgram(rules []SymbolicRule, text string, parsed bool) *SymbolicProgram {
	p := &SymbolicProgram{rules: rules, text: text, parsed: parsed}
	p.herbrand = sync.OnceValues(p.computeHerbrandBase)
	return p
}

// Rules returns the rules in source order.
func (p *SymbolicProgram) Rules() []SymbolicRule {
	out := make([]SymbolicRule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Len returns the number of rules.
func (p *SymbolicProgram) Len() int { return len(p.rules) }

// Append returns a program with the rules of sets added after the rules
// of p.
func (p *SymbolicProgram) Append(sets ...RuleSet) *SymbolicProgram {
	return SymbolicProgramOf(append([]RuleSet{p}, sets...)...)
}

// HerbrandBase returns every ground atom the grounder derives for the
// base part of the program. The result is computed once for programs
// built by ParseSymbolicProgram or SymbolicProgramOf.
func (p *SymbolicProgram) HerbrandBase() (Model, error) {
	if p.herbrand == nil {
		return p.computeHerbrandBase()
	}
	return p.herbrand()
}

func (p *SymbolicProgram) computeHerbrandBase() (Model, error) {
	ctx := context.Background()
	ctl := solver.New(solver.Config{})
	text := p.String()
	if err := ctl.Add("base", nil, text); err != nil {
		return Model{}, asParseError(text, err)
	}
	if err := ctl.Ground(ctx); err != nil {
		return Model{}, err
	}
	return ModelOfElements(ctl.SymbolicAtoms())
}

// String returns the parsed text, or the rules one per line.
func (p *SymbolicProgram) String() string {
	if p.parsed {
		return p.text
	}
	lines := make([]string, len(p.rules))
	for i, r := range p.rules {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
