package core

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// Model is an immutable sorted collection of elements: numbers in
// ascending order, then strings, then ground atoms. Duplicates are kept.
type Model struct {
	elems []Element
}

// EmptyModel returns the model without elements.
func EmptyModel() Model { return Model{} }

func newModel(elems []Element) Model {
	slices.SortStableFunc(elems, compareElements)
	return Model{elems: elems}
}

// ModelOfElements builds a model from strings, ints, elements, symbols
// and slices or models of those. A string is parsed as a ground atom;
// if that fails it becomes a String element, without its quotes if it
// was quoted.
func ModelOfElements(items ...any) (Model, error) {
	var elems []Element
	if err := collectElements(&elems, items); err != nil {
		return Model{}, err
	}
	return newModel(elems), nil
}

// ModelOfAtoms is like ModelOfElements but fails unless every element is
// a ground atom.
func ModelOfAtoms(items ...any) (Model, error) {
	m, err := ModelOfElements(items...)
	if err != nil {
		return Model{}, err
	}
	if !m.ContainsOnlyGroundAtoms() {
		return Model{}, validationf("model contains non-atoms: %s", m)
	}
	return m, nil
}

func collectElements(out *[]Element, items []any) error {
	for _, item := range items {
		switch v := item.(type) {
		case Element:
			*out = append(*out, v)
		case int:
			*out = append(*out, Number(v))
		case string:
			e, err := elementOfText(v)
			if err != nil {
				return err
			}
			*out = append(*out, e)
		case symbol.Symbol:
			e, err := elementOf(v)
			if err != nil {
				return err
			}
			*out = append(*out, e)
		case Model:
			*out = append(*out, v.elems...)
		case []Element:
			*out = append(*out, v...)
		case []GroundAtom:
			for _, a := range v {
				*out = append(*out, a)
			}
		case []string:
			if err := collectElements(out, toAny(v)); err != nil {
				return err
			}
		case []int:
			if err := collectElements(out, toAny(v)); err != nil {
				return err
			}
		case []symbol.Symbol:
			if err := collectElements(out, toAny(v)); err != nil {
				return err
			}
		case []any:
			if err := collectElements(out, v); err != nil {
				return err
			}
		default:
			return validationf("cannot build a model element from %T", item)
		}
	}
	return nil
}

func toAny[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func elementOfText(text string) (Element, error) {
	if a, err := ParseGroundAtom(text); err == nil {
		return a, nil
	}
	quoted := text
	if len(text) < 2 || !strings.HasPrefix(text, `"`) || !strings.HasSuffix(text, `"`) {
		quoted = symbol.Quote(text)
	}
	sym, err := ParseGroundTerm(quoted)
	if err != nil {
		return nil, err
	}
	if sym.Type() != symbol.String {
		return nil, validationf("not an atom or string: %s", text)
	}
	return String(sym.StringValue()), nil
}

// Len returns the number of elements.
func (m Model) Len() int { return len(m.elems) }

// Elements returns the elements in model order.
func (m Model) Elements() []Element { return slices.Clone(m.elems) }

// Atoms returns the ground atoms in model order.
func (m Model) Atoms() []GroundAtom {
	var out []GroundAtom
	for _, e := range m.elems {
		if a, ok := e.(GroundAtom); ok {
			out = append(out, a)
		}
	}
	return out
}

// ContainsOnlyGroundAtoms reports whether the model has no numbers or
// strings.
func (m Model) ContainsOnlyGroundAtoms() bool {
	for _, e := range m.elems {
		if e.kind() != kindAtom {
			return false
		}
	}
	return true
}

// Contains reports whether e is an element of the model.
func (m Model) Contains(e Element) bool {
	_, found := slices.BinarySearchFunc(m.elems, e, compareElements)
	return found
}

// Compare orders models lexicographically by their elements.
func (m Model) Compare(o Model) int {
	return slices.CompareFunc(m.elems, o.elems, compareElements)
}

// Equal reports whether both models have the same elements.
func (m Model) Equal(o Model) bool { return m.Compare(o) == 0 }

// Filter returns the elements for which keep returns true.
func (m Model) Filter(keep func(Element) bool) Model {
	var out []Element
	for _, e := range m.elems {
		if keep(e) {
			out = append(out, e)
		}
	}
	return Model{elems: out}
}

// DropOption selects elements removed by Drop.
type DropOption func(*dropOptions)

type dropOptions struct {
	predicates []Predicate
	numbers    bool
	strings    bool
}

// DropPredicate removes atoms matching p.
func DropPredicate(p Predicate) DropOption {
	return func(o *dropOptions) { o.predicates = append(o.predicates, p) }
}

// DropNumbers removes all numbers.
func DropNumbers() DropOption {
	return func(o *dropOptions) { o.numbers = true }
}

// DropStrings removes all strings.
func DropStrings() DropOption {
	return func(o *dropOptions) { o.strings = true }
}

// Drop removes the elements selected by opts.
func (m Model) Drop(opts ...DropOption) Model {
	var o dropOptions
	for _, opt := range opts {
		opt(&o)
	}
	return m.Filter(func(e Element) bool {
		switch e := e.(type) {
		case Number:
			return !o.numbers
		case String:
			return !o.strings
		case GroundAtom:
			for _, p := range o.predicates {
				if p.Match(e.Predicate()) {
					return false
				}
			}
		}
		return true
	})
}

// Map applies fn to every element and restores model order.
func (m Model) Map(fn func(Element) Element) Model {
	out := make([]Element, len(m.elems))
	for i, e := range m.elems {
		out[i] = fn(e)
	}
	return newModel(out)
}

// mapAtoms applies fn to the atoms matching p.
func (m Model) mapAtoms(p Predicate, fn func(symbol.Symbol) symbol.Symbol) Model {
	return m.Map(func(e Element) Element {
		a, ok := e.(GroundAtom)
		if !ok || !p.Match(a.Predicate()) {
			return e
		}
		return GroundAtom{sym: fn(a.sym)}
	})
}

// Rename changes the name of the atoms matching from. Both predicates
// must have the same arity.
func (m Model) Rename(from, to Predicate) (Model, error) {
	if from.arity != to.arity {
		return Model{}, validationf("cannot rename %s to %s: arities differ", from, to)
	}
	return m.mapAtoms(from, func(s symbol.Symbol) symbol.Symbol {
		return s.WithName(to.name)
	}), nil
}

func argumentIndex(p Predicate, index int) error {
	arity, ok := p.Arity()
	if !ok {
		return validationf("predicate %s has no arity", p)
	}
	if index < 1 || index > arity {
		return validationf("argument %d out of range [1, %d] for %s", index, arity, p)
	}
	return nil
}

// Substitute replaces the argument at the 1-based index of every atom
// matching p with term.
func (m Model) Substitute(p Predicate, index int, term symbol.Symbol) (Model, error) {
	if err := argumentIndex(p, index); err != nil {
		return Model{}, err
	}
	return m.mapAtoms(p, func(s symbol.Symbol) symbol.Symbol {
		args := s.Arguments()
		args[index-1] = term
		return s.WithArguments(args)
	}), nil
}

// Project removes the argument at the 1-based index of every atom
// matching p. The resulting atoms have one argument less.
func (m Model) Project(p Predicate, index int) (Model, error) {
	if err := argumentIndex(p, index); err != nil {
		return Model{}, err
	}
	return m.mapAtoms(p, func(s symbol.Symbol) symbol.Symbol {
		return s.WithArguments(slices.Delete(s.Arguments(), index-1, index))
	}), nil
}

// Helper predicates wrapping numbers and strings in AsFacts and BlockUp.
const (
	numberPredicate = "__number"
	stringPredicate = "__string"
)

func factAtom(e Element) string {
	switch e.kind() {
	case kindNumber:
		return numberPredicate + "(" + e.String() + ")"
	case kindString:
		return stringPredicate + "(" + e.String() + ")"
	}
	return e.String()
}

// AsFacts renders the model as one fact per line.
func (m Model) AsFacts() string {
	lines := make([]string, len(m.elems))
	for i, e := range m.elems {
		lines[i] = factAtom(e) + "."
	}
	return strings.Join(lines, "\n")
}

// BlockUp renders an integrity constraint that fails exactly when every
// element of the model holds.
func (m Model) BlockUp() string {
	if len(m.elems) == 0 {
		return ":- #true."
	}
	parts := make([]string, len(m.elems))
	for i, e := range m.elems {
		parts[i] = factAtom(e)
	}
	return ":- " + strings.Join(parts, ", ") + "."
}

func (m Model) String() string {
	parts := make([]string, len(m.elems))
	for i, e := range m.elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the model as a list of printed elements.
func (m Model) MarshalJSON() ([]byte, error) {
	out := make([]string, len(m.elems))
	for i, e := range m.elems {
		out[i] = e.String()
	}
	return json.Marshal(out)
}
