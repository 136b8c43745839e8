package solver

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// Model is a stable model reported by Solve.
type Model struct {
	number           int
	cost             []int
	atoms            []symbol.Symbol // sorted
	shown            []symbol.Symbol // sorted
	optimalityProven bool
}

// Number returns the 1-based position of the model in the report order.
func (m *Model) Number() int { return m.number }

// Cost returns the cost per priority level, highest priority first.
func (m *Model) Cost() []int { return slices.Clone(m.cost) }

// Atoms returns all true atoms.
func (m *Model) Atoms() []symbol.Symbol { return slices.Clone(m.atoms) }

// Shown returns the atoms and terms selected by #show statements, or
// all atoms when there are none.
func (m *Model) Shown() []symbol.Symbol { return slices.Clone(m.shown) }

// Contains reports whether atom is true in the model.
func (m *Model) Contains(atom symbol.Symbol) bool {
	_, found := slices.BinarySearchFunc(m.atoms, atom, symbol.Compare)
	return found
}

// OptimalityProven reports whether the model is known to be optimal.
func (m *Model) OptimalityProven() bool { return m.optimalityProven }

func (m *Model) String() string {
	parts := make([]string, len(m.shown))
	for i, s := range m.shown {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
