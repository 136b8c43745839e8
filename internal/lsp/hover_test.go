package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionParams(line, character uint32) TextDocumentPositionParams {
	return TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Position:     Position{Line: line, Character: character},
	}
}

func TestGetHover_Predicate(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, "p(1).\nq(X) :- p(X), not r(X).\nr(X) :- q(X).\n", 1)

	hover := server.getHover(HoverParams{positionParams(1, 0)})
	require.NotNil(t, hover)
	assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
	assert.Equal(t,
		"**q/1**\n\nDefined by 1 rule, level 1, recursive.\n\nDepends on: `p/1`, `not r/1`",
		hover.Contents.Value)
	require.NotNil(t, hover.Range)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 0}, End: Position{Line: 1, Character: 4}}, *hover.Range)

	hover = server.getHover(HoverParams{positionParams(0, 0)})
	require.NotNil(t, hover)
	assert.Equal(t, "**p/1**\n\nDefined by 1 rule, level 0.", hover.Contents.Value)
}

func TestGetHover_Undefined(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, "a :- b.", 1)

	hover := server.getHover(HoverParams{positionParams(0, 5)})
	require.NotNil(t, hover)
	assert.Equal(t, "**b/0**\n\nNot defined by any rule, level 0.", hover.Contents.Value)
}

func TestGetHover_Directive(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, "#show a/0.\na.", 1)

	hover := server.getHover(HoverParams{positionParams(0, 2)})
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.Value, "#show p/n.")
	assert.Contains(t, hover.Contents.Value, "Restricts the atoms")
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 5}}, *hover.Range)
}

func TestGetHover_Keyword(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, "a :- not b. b :- c.", 1)

	hover := server.getHover(HoverParams{positionParams(0, 6)})
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.Value, "default negation")
}

func TestGetHover_Constant(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, "#const n = 3.\np(n).\n", 1)

	hover := server.getHover(HoverParams{positionParams(1, 2)})
	require.NotNil(t, hover)
	assert.Equal(t, "```\n#const n = 3.\n```", hover.Contents.Value)

	hover = server.getHover(HoverParams{positionParams(1, 0)})
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.Value, "**p/1**")
}

func TestGetHover_Nothing(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, "a.   b.", 1)
	assert.Nil(t, server.getHover(HoverParams{positionParams(0, 4)}))

	server.documents.Open(testURI, "a :- b(", 1)
	assert.Nil(t, server.getHover(HoverParams{positionParams(0, 0)}))

	assert.Nil(t, server.getHover(HoverParams{TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///missing.lp"},
	}}))
}

const pathProgram = "edge(1, 2).\nedge(2, 3).\npath(X, Y) :- edge(X, Y).\n"

func TestGetDefinition(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, pathProgram, 1)

	locations := server.getDefinition(DefinitionParams{positionParams(2, 15)})
	require.Len(t, locations, 2)
	for i, l := range locations {
		assert.Equal(t, testURI, l.URI)
		assert.Equal(t, Position{Line: uint32(i), Character: 0}, l.Range.Start)
	}

	assert.Empty(t, server.getDefinition(DefinitionParams{positionParams(2, 11)}))
}

func TestGetReferences(t *testing.T) {
	server := newTestServer(t)
	server.documents.Open(testURI, pathProgram, 1)

	params := ReferenceParams{TextDocumentPositionParams: positionParams(0, 1)}
	locations := server.getReferences(params)
	require.Len(t, locations, 1)
	assert.Equal(t, Position{Line: 2, Character: 14}, locations[0].Range.Start)

	params.Context.IncludeDeclaration = true
	assert.Len(t, server.getReferences(params), 3)
}
