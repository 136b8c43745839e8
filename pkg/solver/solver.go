// Package solver grounds and solves answer set programs.
//
// A Control collects program parts through Add, instantiates the
// selected parts with Ground and enumerates stable models with Solve.
// The grounder is a semi-naive instantiation over the possibly derivable
// atoms and the solver is an exhaustive guess-and-check search, so it is
// meant for small programs such as test fixtures and examples.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/parser"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// Sentinel errors.
var (
	// ErrUnsupported is returned for constructs the grounder does not handle.
	ErrUnsupported = errors.New("unsupported construct")
	// ErrNotGrounded is returned by Solve before Ground was called.
	ErrNotGrounded = errors.New("program not grounded")
	// ErrUnknownPart is returned when Ground names a part never added.
	ErrUnknownPart = errors.New("unknown program part")
)

// OptMode selects how weak constraints affect model reporting.
type OptMode int

const (
	// OptModeAuto optimizes when the program has weak constraints and
	// enumerates otherwise.
	OptModeAuto OptMode = iota
	// OptModeOpt reports models with strictly decreasing cost.
	OptModeOpt
	// OptModeOptN reports every optimal model.
	OptModeOptN
	// OptModeEnum ignores costs and reports every stable model.
	OptModeEnum
)

var optModeNames = map[OptMode]string{
	OptModeAuto: "auto",
	OptModeOpt:  "opt",
	OptModeOptN: "optN",
	OptModeEnum: "enum",
}

func (m OptMode) String() string {
	if name, ok := optModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("OptMode(%d)", int(m))
}

// ParseOptMode parses an optimization mode name, case-insensitively.
func ParseOptMode(s string) (OptMode, error) {
	for mode, name := range optModeNames {
		if strings.EqualFold(name, s) {
			return mode, nil
		}
	}
	return OptModeAuto, fmt.Errorf("unknown optimization mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m OptMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OptMode) UnmarshalText(text []byte) error {
	mode, err := ParseOptMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Config configures a Control.
type Config struct {
	// Models limits the number of reported models; 0 reports all.
	Models int
	// OptMode selects the optimization mode.
	OptMode OptMode
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Part names a program part and the values of its parameters.
type Part struct {
	Name   string
	Params []symbol.Symbol
}

// Base is the default program part.
var Base = Part{Name: "base"}

type partDef struct {
	params []string
	stmts  []ast.Statement
}

// Control holds the program parts, the ground program and the solver
// configuration.
type Control struct {
	cfg    Config
	logger *slog.Logger

	parts   map[string]*partDef
	consts  map[string]*ast.Definition
	grounds []ast.Statement
	prog    *program
}

// New creates a Control.
func New(cfg Config) *Control {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Control{
		cfg:    cfg,
		logger: logger,
		parts:  make(map[string]*partDef),
		consts: make(map[string]*ast.Definition),
	}
}

// Add parses text and appends its statements to the named part.
// Statements following a "#program" directive go to the part it names.
func (c *Control) Add(name string, params []string, text string) error {
	current := c.part(name, params)
	first := true
	err := parser.ParseProgram(text, func(stmt ast.Statement) {
		if first {
			first = false
			return
		}
		switch s := stmt.(type) {
		case *ast.Program:
			current = c.part(s.Name, s.Parameters)
		case *ast.Definition:
			if prev, ok := c.consts[s.Name]; ok && !prev.IsDefault && s.IsDefault {
				return
			}
			c.consts[s.Name] = s
		default:
			current.stmts = append(current.stmts, stmt)
		}
	}, parser.WithLogger(func(code parser.MessageCode, msg string) {
		c.logger.Debug("parse message", "code", code, "message", msg)
	}))
	return err
}

func (c *Control) part(name string, params []string) *partDef {
	p, ok := c.parts[name]
	if !ok {
		p = &partDef{params: params}
		c.parts[name] = p
	}
	return p
}

// Ground instantiates the given parts, or the base part when none is
// given. Repeated calls ground the union of all selected parts.
func (c *Control) Ground(ctx context.Context, parts ...Part) error {
	if len(parts) == 0 {
		parts = []Part{Base}
	}
	stmts := slices.Clone(c.grounds)
	for _, p := range parts {
		def, ok := c.parts[p.Name]
		if !ok {
			if p.Name == Base.Name {
				continue
			}
			return fmt.Errorf("%w: %s", ErrUnknownPart, p.Name)
		}
		if len(def.params) != len(p.Params) {
			return fmt.Errorf("part %s expects %d parameters, got %d", p.Name, len(def.params), len(p.Params))
		}
		values := make(map[string]ast.Term, len(def.params))
		for i, name := range def.params {
			values[name] = &ast.SymbolicTerm{Symbol: p.Params[i]}
		}
		for _, s := range def.stmts {
			stmts = append(stmts, substituteConstants(s, values))
		}
	}

	consts := c.constants()
	ground := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		ground[i] = substituteConstants(s, consts)
	}

	g := newGrounder(ctx, c.logger)
	prog, err := g.ground(ground)
	if err != nil {
		return err
	}
	c.grounds = stmts
	c.prog = prog
	c.logger.Debug("grounded program",
		"atoms", len(prog.atoms),
		"rules", len(prog.rules),
		"weak_constraints", len(prog.weaks))
	return nil
}

// constants resolves #const definitions, substituting constants used in
// other definitions.
func (c *Control) constants() map[string]ast.Term {
	values := make(map[string]ast.Term, len(c.consts))
	for name, d := range c.consts {
		values[name] = d.Value
	}
	for range len(values) {
		for name, v := range values {
			values[name] = substituteConstants(v, values)
		}
	}
	return values
}

func substituteConstants[T ast.Node](node T, values map[string]ast.Term) T {
	if len(values) == 0 {
		return node
	}
	return ast.RewriteTerms(node, func(t ast.Term) (ast.Term, bool) {
		st, ok := t.(*ast.SymbolicTerm)
		if !ok || st.Symbol.Type() != symbol.Function || st.Symbol.Arity() != 0 || !st.Symbol.IsPositive() {
			return nil, false
		}
		v, ok := values[st.Symbol.Name()]
		if !ok {
			return nil, false
		}
		return ast.Clone(v), true
	})
}

// SymbolicAtoms returns the atoms of the ground program in symbol order.
func (c *Control) SymbolicAtoms() []symbol.Symbol {
	if c.prog == nil {
		return nil
	}
	return append([]symbol.Symbol(nil), c.prog.atoms...)
}

// Result summarizes a Solve call.
type Result struct {
	// Models is the number of reported models.
	Models int
	// Exhausted reports whether the whole search space was explored.
	Exhausted bool
	// OptimalityProven reports whether the last reported model is optimal.
	OptimalityProven bool
}

// Satisfiable reports whether a model was found.
func (r Result) Satisfiable() bool { return r.Models > 0 }

// Unsatisfiable reports whether the program provably has no model.
func (r Result) Unsatisfiable() bool { return r.Exhausted && r.Models == 0 }

// Solve enumerates models, calling onModel for each reported model
// until it returns false or the model limit is reached.
func (c *Control) Solve(ctx context.Context, onModel func(*Model) bool) (Result, error) {
	if c.prog == nil {
		return Result{}, ErrNotGrounded
	}
	s := newSearcher(c.prog)
	mode := c.cfg.OptMode
	if mode == OptModeAuto {
		mode = OptModeEnum
		if len(c.prog.priorities) > 0 {
			mode = OptModeOpt
		}
	}
	c.logger.Debug("solving", "mode", mode, "guessed_atoms", len(s.guessed))

	var res Result
	report := func(m *Model) bool {
		res.Models++
		m.number = res.Models
		cont := onModel == nil || onModel(m)
		if c.cfg.Models > 0 && res.Models >= c.cfg.Models {
			return false
		}
		return cont
	}

	var (
		exhausted bool
		err       error
	)
	switch mode {
	case OptModeOpt:
		var best []int
		stopped := false
		exhausted, err = s.enumerate(ctx, func(cand *candidate) bool {
			if best != nil && compareCost(cand.cost, best) >= 0 {
				return true
			}
			best = cand.cost
			if !report(c.newModel(s, cand, false)) {
				stopped = true
				return false
			}
			return true
		})
		if err == nil && exhausted && !stopped && res.Models > 0 {
			res.OptimalityProven = true
		}

	case OptModeOptN:
		var (
			best    []int
			optimal []*candidate
		)
		exhausted, err = s.enumerate(ctx, func(cand *candidate) bool {
			switch {
			case best == nil || compareCost(cand.cost, best) < 0:
				best = cand.cost
				optimal = []*candidate{cand}
			case compareCost(cand.cost, best) == 0:
				optimal = append(optimal, cand)
			}
			return true
		})
		if err == nil {
			for _, cand := range optimal {
				if !report(c.newModel(s, cand, true)) {
					break
				}
			}
			res.OptimalityProven = len(optimal) > 0
		}

	default:
		exhausted, err = s.enumerate(ctx, func(cand *candidate) bool {
			return report(c.newModel(s, cand, false))
		})
	}
	if err != nil {
		return res, err
	}
	res.Exhausted = exhausted
	c.logger.Debug("solve finished", "models", res.Models, "exhausted", res.Exhausted)
	return res, nil
}

func (c *Control) newModel(s *searcher, cand *candidate, proven bool) *Model {
	var atoms []symbol.Symbol
	for atom, ok := range cand.atoms {
		if ok {
			atoms = append(atoms, c.prog.atoms[atom])
		}
	}
	return &Model{
		cost:             cand.cost,
		atoms:            atoms,
		shown:            s.shown(cand.atoms),
		optimalityProven: proven,
	}
}
