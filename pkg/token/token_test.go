package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, NOT, LookupIdent("not"))
	assert.Equal(t, IDENT, LookupIdent("node"))
	assert.Equal(t, IDENT, LookupIdent("notx"))
}

func TestLookupDirective(t *testing.T) {
	tests := []struct {
		name string
		want TokenType
		ok   bool
	}{
		{"show", SHOW, true},
		{"count", COUNT, true},
		{"minimise", MINIMIZE, true},
		{"supremum", SUP, true},
		{"include", ILLEGAL, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupDirective(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenClassification(t *testing.T) {
	for _, tt := range []TokenType{EQ, NE, LT, GT, LE, GE} {
		assert.True(t, IsComparison(tt), tt.String())
	}
	assert.False(t, IsComparison(PLUS))

	for _, tt := range []TokenType{COUNT, SUM, SUMPLUS, MIN, MAX} {
		assert.True(t, IsAggregateFunction(tt), tt.String())
	}
	assert.False(t, IsAggregateFunction(SHOW))

	assert.True(t, IsDirective(PROGRAM))
	assert.True(t, IsDirective(FALSE))
	assert.False(t, IsDirective(NOT))
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, ":-", IF.String())
	assert.Equal(t, "#sum+", SUMPLUS.String())
	assert.Equal(t, "TOKEN(12345)", TokenType(12345).String())
}

func TestSpanSlice(t *testing.T) {
	src := "a. b :- c."
	span := Span{
		Start: Position{Line: 1, Column: 4, Offset: 3},
		End:   Position{Line: 1, Column: 11, Offset: 10},
	}
	require.True(t, span.IsValid())
	assert.Equal(t, "b :- c.", span.Slice(src))
	assert.True(t, span.Contains(3))
	assert.False(t, span.Contains(10))

	assert.Equal(t, "", Span{}.Slice(src))
	assert.Equal(t, "1:4", span.Start.String())
}
