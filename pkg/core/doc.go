// Package core defines the symbolic program model of leapasp.
//
// This package contains:
//   - Value types (Predicate, GroundAtom, Number, String)
//   - Program wrappers that keep their source text (SymbolicTerm,
//     SymbolicAtom, SymbolicRule, SymbolicProgram)
//   - Model, a sorted collection of elements with a transformation algebra
//   - ParseError, a positioned diagnostic rendered with a caret line
//
// Every value is immutable: transformations return new values.
//
// The Golden Rule: pkg/core imports the language packages (token, symbol,
// ast, parser, solver), golang.org/x/text and the stdlib only.
package core
