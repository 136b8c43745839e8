package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// Solver is the solving contract of *solver.Control.
type Solver interface {
	Solve(ctx context.Context, onModel func(*solver.Model) bool) (solver.Result, error)
}

// ModelOfControl solves s and returns its only model, built from the
// shown symbols. It fails with ErrNoModel if there is no model. It fails
// with ErrMultipleModels if a reported model does not improve on the cost
// of the model reported before it; without weak constraints every cost
// is equal, so this rejects any second model, and with them it rejects
// ties at the optimum.
func ModelOfControl(ctx context.Context, s Solver) (Model, error) {
	var (
		found     bool
		ambiguous bool
		bestCost  []int
		best      Model
		convErr   error
	)
	_, err := s.Solve(ctx, func(m *solver.Model) bool {
		cost := m.Cost()
		if found && slices.Compare(bestCost, cost) <= 0 {
			ambiguous = true
		}
		found = true
		bestCost = cost
		best, convErr = ModelOfElements(m.Shown())
		return convErr == nil
	})
	switch {
	case err != nil:
		return Model{}, err
	case convErr != nil:
		return Model{}, convErr
	case !found:
		return Model{}, ErrNoModel
	case ambiguous:
		return Model{}, ErrMultipleModels
	}
	return best, nil
}

// ModelOfProgram joins the given program fragments, grounds the base part
// and returns the only model. Fragments may be strings, *SymbolicProgram,
// SymbolicRule or any fmt.Stringer.
func ModelOfProgram(ctx context.Context, parts ...any) (Model, error) {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case string:
			texts = append(texts, p)
		case fmt.Stringer:
			texts = append(texts, p.String())
		default:
			return Model{}, validationf("cannot use %T as a program", p)
		}
	}
	text := strings.Join(texts, "\n")

	ctl := solver.New(solver.Config{})
	if err := ctl.Add("base", nil, text); err != nil {
		return Model{}, asParseError(text, err)
	}
	if err := ctl.Ground(ctx); err != nil {
		return Model{}, err
	}
	return ModelOfControl(ctx, ctl)
}
