// Package starlark runs user supplied Starlark scripts over the models
// found by the solver.
//
// A script defines any of three hooks:
//
//	def accept(model): ...   # return False to drop the whole model
//	def keep(e): ...         # return False to drop one element
//	def transform(e): ...    # return the replacement element
//
// Elements are passed as Starlark values: numbers as int, strings as
// string, and ground atoms as an "atom" struct with the fields name,
// arity, args, negated and text. Arguments of atoms are ints, strings or
// "term" structs with the same fields.
package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leapasp/pkg/core"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

var (
	atomConstructor = starlark.String("atom")
	termConstructor = starlark.String("term")
)

// ElementToStarlark converts a model element to a Starlark value.
func ElementToStarlark(e core.Element) starlark.Value {
	switch e := e.(type) {
	case core.Number:
		return starlark.MakeInt(int(e))
	case core.String:
		return starlark.String(string(e))
	case core.GroundAtom:
		return functionToStarlark(atomConstructor, e.Symbol())
	}
	return starlark.None
}

// SymbolToStarlark converts a ground term to a Starlark value.
func SymbolToStarlark(sym symbol.Symbol) starlark.Value {
	switch sym.Type() {
	case symbol.Number:
		return starlark.MakeInt(sym.Number())
	case symbol.String:
		return starlark.String(sym.StringValue())
	case symbol.Function:
		return functionToStarlark(termConstructor, sym)
	}
	// #inf and #sup have no Starlark counterpart.
	return starlarkstruct.FromStringDict(termConstructor, starlark.StringDict{
		"name":    starlark.String(""),
		"arity":   starlark.MakeInt(0),
		"args":    starlark.Tuple{},
		"negated": starlark.False,
		"text":    starlark.String(sym.String()),
	})
}

func functionToStarlark(constructor starlark.String, sym symbol.Symbol) starlark.Value {
	args := sym.Arguments()
	tuple := make(starlark.Tuple, len(args))
	for i, a := range args {
		tuple[i] = SymbolToStarlark(a)
	}
	return starlarkstruct.FromStringDict(constructor, starlark.StringDict{
		"name":    starlark.String(sym.Name()),
		"arity":   starlark.MakeInt(len(args)),
		"args":    tuple,
		"negated": starlark.Bool(sym.IsNegative()),
		"text":    starlark.String(sym.String()),
	})
}

// ElementFromStarlark converts a value returned by a script back to a
// model element. Atom structs are re-parsed from their text field.
func ElementFromStarlark(v starlark.Value) (core.Element, error) {
	switch v := v.(type) {
	case starlark.Int:
		n, ok := v.Int64()
		if !ok || int64(int(n)) != n {
			return nil, fmt.Errorf("number out of range: %s", v)
		}
		return core.Number(int(n)), nil
	case starlark.String:
		return core.String(string(v)), nil
	case *starlarkstruct.Struct:
		if v.Constructor() != atomConstructor {
			return nil, fmt.Errorf("cannot use %s struct as a model element", v.Constructor())
		}
		text, err := v.Attr("text")
		if err != nil {
			return nil, err
		}
		s, ok := starlark.AsString(text)
		if !ok {
			return nil, fmt.Errorf("atom text must be a string, got %s", text.Type())
		}
		return core.ParseGroundAtom(s)
	}
	return nil, fmt.Errorf("cannot use %s as a model element", v.Type())
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, bool, []int, []any, map[string]any.
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case bool:
		return starlark.Bool(val), nil

	case []int:
		list := make([]starlark.Value, len(val))
		for i, n := range val {
			list[i] = starlark.MakeInt(n)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
