package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolString(t *testing.T) {
	tests := []struct {
		name string
		sym  Symbol
		want string
	}{
		{"number", NewNumber(42), "42"},
		{"negative number", NewNumber(-3), "-3"},
		{"string", NewString("a \"b\"\n"), `"a \"b\"\n"`},
		{"constant", NewConstant("foo"), "foo"},
		{"function", NewFunction("p", []Symbol{NewNumber(1), NewConstant("a")}, true), "p(1,a)"},
		{"negated", NewFunction("p", []Symbol{NewNumber(1)}, false), "-p(1)"},
		{"tuple", NewTuple(NewNumber(1), NewNumber(2)), "(1,2)"},
		{"unary tuple", NewTuple(NewNumber(1)), "(1,)"},
		{"empty tuple", NewTuple(), "()"},
		{"inf", Inf(), "#inf"},
		{"sup", Sup(), "#sup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sym.String())
		})
	}
}

func TestCompareTypeOrder(t *testing.T) {
	ordered := []Symbol{
		Inf(),
		NewNumber(-1),
		NewNumber(7),
		NewConstant("a"),
		NewConstant("b"),
		NewFunction("a", []Symbol{NewNumber(1)}, true),
		NewFunction("a", []Symbol{NewNumber(2)}, true),
		NewFunction("a", []Symbol{NewNumber(1)}, false),
		NewString("a"),
		NewString("b"),
		Sup(),
	}

	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%s < %s", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, got, "%s > %s", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, got)
			}
		}
	}
}

func TestNegate(t *testing.T) {
	neg, ok := NewNumber(3).Negate()
	require.True(t, ok)
	assert.Equal(t, -3, neg.Number())

	fn, ok := NewConstant("a").Negate()
	require.True(t, ok)
	assert.True(t, fn.IsNegative())
	assert.Equal(t, "-a", fn.String())

	_, ok = NewString("s").Negate()
	assert.False(t, ok)
	_, ok = NewTuple(NewNumber(1)).Negate()
	assert.False(t, ok)
}

func TestArgumentsAreCopied(t *testing.T) {
	args := []Symbol{NewNumber(1)}
	sym := NewFunction("p", args, true)
	args[0] = NewNumber(2)
	assert.Equal(t, "p(1)", sym.String())

	got := sym.Arguments()
	got[0] = NewNumber(3)
	assert.Equal(t, "p(1)", sym.String())
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", `with "quotes"`, `back\slash`, "new\nline"} {
		got, ok := Unquote(Quote(s))
		require.True(t, ok, s)
		assert.Equal(t, s, got)
	}

	_, ok := Unquote(`"unterminated`)
	assert.False(t, ok)
	_, ok = Unquote(`"bad \q escape"`)
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(NewConstant("b")))
	assert.True(t, s.Add(NewConstant("a")))
	assert.False(t, s.Add(NewConstant("b")))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.Index(NewConstant("b")))
	assert.Equal(t, -1, s.Index(NewConstant("c")))
	assert.True(t, s.Contains(NewConstant("a")))

	sorted := s.Sorted()
	assert.Equal(t, "a", sorted[0].String())
	assert.Equal(t, "b", s.Items()[0].String())
}
