package solver

import (
	"context"
	"slices"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// checkInterval is the number of candidates examined between context
// checks.
const checkInterval = 256

// searcher enumerates the stable models of a ground program. It guesses
// the atoms whose value is read non-monotonically (negation, aggregates,
// conditional literals) or that occur in choice and disjunctive heads,
// computes the least model of the reduct for each guess and keeps the
// guesses the least model reproduces. Disjunctive rules are shifted,
// which is exact for head-cycle-free programs.
type searcher struct {
	prog    *program
	certain boolSlice // least model of the definite rules
	guessed []int
}

func newSearcher(prog *program) *searcher {
	n := len(prog.atoms)
	s := &searcher{prog: prog, certain: make(boolSlice, n)}

	var definite []*rule
	for _, r := range prog.rules {
		if r.kind == headAtom && r.body.isDefinite() {
			definite = append(definite, r)
		}
	}
	s.certain = leastModel(definite, n, s.certain)

	hasHead := make([]bool, n)
	read := make([]bool, n)
	mark := func(atom int) { read[atom] = true }
	for _, r := range prog.rules {
		for _, e := range r.elems {
			hasHead[e.atom] = true
			if r.kind == headChoice || r.kind == headDisjunction {
				read[e.atom] = true
			}
			for _, l := range e.cond {
				if l.atom >= 0 {
					read[l.atom] = true
				}
			}
		}
		r.body.nonMonotoneAtoms(mark)
	}
	for atom := range n {
		if read[atom] && hasHead[atom] && !s.certain[atom] {
			s.guessed = append(s.guessed, atom)
		}
	}
	return s
}

// leastModel computes the least model of rules with only positive bodies
// and atom heads, starting from base.
func leastModel(rules []*rule, n int, base boolSlice) boolSlice {
	m := make(boolSlice, n)
	copy(m, base)
	for changed := true; changed; {
		changed = false
		for _, r := range rules {
			atom := r.elems[0].atom
			if m[atom] || !r.body.holds(m, m) {
				continue
			}
			m[atom] = true
			changed = true
		}
	}
	return m
}

// candidate is a stable model with its costs.
type candidate struct {
	atoms boolSlice
	cost  []int
}

// enumerate calls yield for every stable model until yield returns
// false. It reports whether the search space was exhausted.
func (s *searcher) enumerate(ctx context.Context, yield func(*candidate) bool) (bool, error) {
	n := len(s.prog.atoms)
	guess := make(boolSlice, n)
	copy(guess, s.certain)

	visited := 0
	var walk func(i int) (bool, error)
	walk = func(i int) (bool, error) {
		if i == len(s.guessed) {
			visited++
			if visited%checkInterval == 0 {
				if err := ctx.Err(); err != nil {
					return false, err
				}
			}
			if m := s.check(guess); m != nil {
				return yield(&candidate{atoms: m, cost: s.cost(m)}), nil
			}
			return true, nil
		}
		atom := s.guessed[i]
		for _, v := range []bool{false, true} {
			guess[atom] = v
			cont, err := walk(i + 1)
			if err != nil || !cont {
				return cont, err
			}
		}
		guess[atom] = false
		return true, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}
	return walk(0)
}

// check returns the stable model reproducing guess, or nil.
func (s *searcher) check(guess boolSlice) boolSlice {
	n := len(s.prog.atoms)
	m := make(boolSlice, n)
	copy(m, s.certain)

	for changed := true; changed; {
		changed = false
		for _, r := range s.prog.rules {
			if r.kind == headNone || !r.body.holds(m, guess) {
				continue
			}
			for _, atom := range s.derived(r, guess) {
				if !m[atom] {
					m[atom] = true
					changed = true
				}
			}
		}
	}

	for _, atom := range s.guessed {
		if m[atom] != guess[atom] {
			return nil
		}
	}

	for _, r := range s.prog.rules {
		if !r.body.holds(m, m) {
			continue
		}
		switch r.kind {
		case headNone:
			return nil
		case headChoice:
			if !checkGuards(symbol.NewNumber(countTrue(r.elems, m)), r.lower, r.upper) {
				return nil
			}
		case headDisjunction:
			if countTrue(r.elems, m) == 0 {
				return nil
			}
		}
	}
	return m
}

// derived returns the head atoms a rule with a true body derives under
// guess.
func (s *searcher) derived(r *rule, guess boolSlice) []int {
	switch r.kind {
	case headAtom:
		return []int{r.elems[0].atom}
	case headChoice:
		var out []int
		for _, e := range r.elems {
			if allHold(e.cond, guess) && guess[e.atom] {
				out = append(out, e.atom)
			}
		}
		return out
	case headDisjunction:
		var active []int
		for _, e := range r.elems {
			if allHold(e.cond, guess) {
				active = append(active, e.atom)
			}
		}
		var out []int
		for i, atom := range active {
			others := false
			for j, other := range active {
				if i != j && other != atom && guess[other] {
					others = true
					break
				}
			}
			if !others {
				out = append(out, atom)
			}
		}
		return out
	}
	return nil
}

// countTrue counts the distinct true atoms among the active elements.
func countTrue(elems []headElement, m boolSlice) int {
	var seen []int
	for _, e := range elems {
		if m[e.atom] && allHold(e.cond, m) && !slices.Contains(seen, e.atom) {
			seen = append(seen, e.atom)
		}
	}
	return len(seen)
}

// cost sums the weights of the distinct weak constraint tuples whose body
// holds, per priority level in descending order.
func (s *searcher) cost(m boolSlice) []int {
	if len(s.prog.priorities) == 0 {
		return []int{}
	}
	cost := make([]int, len(s.prog.priorities))
	seen := make(map[string]struct{})
	for _, w := range s.prog.weaks {
		if !w.body.holds(m, m) {
			continue
		}
		k := w.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		cost[slices.Index(s.prog.priorities, w.priority)] += w.weight
	}
	return cost
}

// shown returns the symbols displayed for a model.
func (s *searcher) shown(m boolSlice) []symbol.Symbol {
	set := symbol.NewSet()
	for atom, ok := range m {
		if !ok {
			continue
		}
		sym := s.prog.atoms[atom]
		if !s.prog.hideAtoms || matchesSignature(sym, s.prog.signatures) {
			set.Add(sym)
		}
	}
	for _, st := range s.prog.shows {
		if st.body.holds(m, m) {
			set.Add(st.term)
		}
	}
	return set.Sorted()
}

func matchesSignature(sym symbol.Symbol, sigs []*ast.ShowSignature) bool {
	for _, sig := range sigs {
		if sym.Match(sig.Name, sig.Arity) && sym.IsPositive() == sig.Positive {
			return true
		}
	}
	return false
}

// compareCost compares cost vectors lexicographically.
func compareCost(a, b []int) int {
	return slices.Compare(a, b)
}
