package starlark

import (
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapasp/pkg/core"
)

// Predeclared returns the builtins available to every script:
//
//	atom("p(1)")        parses a ground atom
//	matches(e, "p/1")   reports whether e is an atom of the predicate
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"atom":    starlark.NewBuiltin("atom", builtinAtom),
		"matches": starlark.NewBuiltin("matches", builtinMatches),
	}
}

func builtinAtom(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &text); err != nil {
		return nil, err
	}
	a, err := core.ParseGroundAtom(text)
	if err != nil {
		return nil, err
	}
	return ElementToStarlark(a), nil
}

func builtinMatches(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		v    starlark.Value
		spec string
	)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &v, &spec); err != nil {
		return nil, err
	}
	p, err := core.ParsePredicate(spec)
	if err != nil {
		return nil, err
	}
	e, err := ElementFromStarlark(v)
	if err != nil {
		return nil, err
	}
	a, ok := e.(core.GroundAtom)
	return starlark.Bool(ok && a.Predicate().Match(p)), nil
}
