package lsp

import (
	"testing"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/prog.lp"
	content := "a. b :- a."

	// Open document
	store.Open(uri, content, 1)

	// Get document
	doc := store.Get(uri)
	if doc == nil {
		t.Fatal("expected document to exist")
	}
	if doc.URI != uri {
		t.Errorf("expected URI %s, got %s", uri, doc.URI)
	}
	if doc.Content != content {
		t.Errorf("expected content %q, got %q", content, doc.Content)
	}
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
	if doc.Analysis == nil || doc.Analysis.ParseErr != nil {
		t.Fatalf("expected a parsed analysis, got %+v", doc.Analysis)
	}
	if doc.Stable != doc.Analysis {
		t.Error("expected stable analysis to be the current one")
	}

	// Close document
	store.Close(uri)
	doc = store.Get(uri)
	if doc != nil {
		t.Error("expected document to be nil after close")
	}
}

func TestDocumentStore_Update(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/prog.lp"
	store.Open(uri, "a.", 1)

	// Update
	store.Update(uri, "b.", 2)

	doc := store.Get(uri)
	if doc.Content != "b." {
		t.Errorf("expected content 'b.', got %q", doc.Content)
	}
	if doc.Version != 2 {
		t.Errorf("expected version 2, got %d", doc.Version)
	}

	if got := store.Update("file:///missing.lp", "c.", 1); got != nil {
		t.Error("expected update of a closed document to return nil")
	}
}

func TestDocumentStore_UpdateKeepsStableAnalysis(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/prog.lp"
	first := store.Open(uri, "p(1). q(X) :- p(X).", 1)
	doc := store.Update(uri, "p(1). q(X) :- p(", 2)

	if doc.Analysis.ParseErr == nil {
		t.Fatal("expected a syntax error")
	}
	if doc.Stable != first.Analysis {
		t.Error("expected the last parsed analysis to be kept")
	}
	if first.Content != "p(1). q(X) :- p(X)." {
		t.Errorf("expected the previous document to stay unchanged, got %q", first.Content)
	}
}

func TestDocumentStore_List(t *testing.T) {
	store := NewDocumentStore()

	store.Open("file:///c.lp", "c.", 1)
	store.Open("file:///a.lp", "a.", 1)
	store.Open("file:///b.lp", "b.", 1)

	uris := store.List()
	want := []string{"file:///a.lp", "file:///b.lp", "file:///c.lp"}
	if len(uris) != len(want) {
		t.Fatalf("expected %d URIs, got %d", len(want), len(uris))
	}
	for i := range want {
		if uris[i] != want[i] {
			t.Errorf("uris[%d]: expected %s, got %s", i, want[i], uris[i])
		}
	}
}

func TestComputeLineOffsets(t *testing.T) {
	tests := []struct {
		content  string
		expected []int
	}{
		{"", []int{0}},
		{"abc", []int{0}},
		{"a\nb", []int{0, 2}},
		{"a\nb\nc", []int{0, 2, 4}},
		{"\n\n\n", []int{0, 1, 2, 3}},
		{"line1\nline2\nline3", []int{0, 6, 12}},
	}

	for _, tt := range tests {
		offsets := computeLineOffsets(tt.content)
		if len(offsets) != len(tt.expected) {
			t.Errorf("content %q: expected %d offsets, got %d", tt.content, len(tt.expected), len(offsets))
			continue
		}
		for i, exp := range tt.expected {
			if offsets[i] != exp {
				t.Errorf("content %q: offset[%d] expected %d, got %d", tt.content, i, exp, offsets[i])
			}
		}
	}
}

func TestDocument_PositionToOffset(t *testing.T) {
	content := "line0\nline1\nline2"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		pos      Position
		expected int
	}{
		{Position{Line: 0, Character: 0}, 0},
		{Position{Line: 0, Character: 3}, 3},
		{Position{Line: 0, Character: 5}, 5},
		{Position{Line: 1, Character: 0}, 6},
		{Position{Line: 1, Character: 4}, 10},
		{Position{Line: 2, Character: 0}, 12},
		{Position{Line: 2, Character: 5}, 17},
		// Edge cases
		{Position{Line: 100, Character: 0}, len(content)}, // Line beyond document
		{Position{Line: 0, Character: 100}, 5},            // Character beyond line
	}

	for _, tt := range tests {
		offset := doc.PositionToOffset(tt.pos)
		if offset != tt.expected {
			t.Errorf("PositionToOffset(%v): expected %d, got %d", tt.pos, tt.expected, offset)
		}
	}
}

func TestDocument_OffsetToPosition(t *testing.T) {
	content := "line0\nline1\nline2"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		offset   int
		expected Position
	}{
		{0, Position{Line: 0, Character: 0}},
		{3, Position{Line: 0, Character: 3}},
		{5, Position{Line: 0, Character: 5}},
		{6, Position{Line: 1, Character: 0}},
		{10, Position{Line: 1, Character: 4}},
		{12, Position{Line: 2, Character: 0}},
		{17, Position{Line: 2, Character: 5}},
		// Edge cases
		{-1, Position{Line: 0, Character: 0}},  // Negative offset
		{100, Position{Line: 2, Character: 5}}, // Beyond end
	}

	for _, tt := range tests {
		pos := doc.OffsetToPosition(tt.offset)
		if pos != tt.expected {
			t.Errorf("OffsetToPosition(%d): expected %v, got %v", tt.offset, tt.expected, pos)
		}
	}
}

func TestDocument_UTF16Positions(t *testing.T) {
	// "é" is two bytes and one UTF-16 unit, "𝄞" four bytes and two units.
	content := "p(\"é𝄞\", x).\nq."
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	xOffset := len("p(\"é𝄞\", ")
	xPos := Position{Line: 0, Character: 9}
	if got := doc.OffsetToPosition(xOffset); got != xPos {
		t.Errorf("OffsetToPosition(%d): expected %v, got %v", xOffset, xPos, got)
	}
	if got := doc.PositionToOffset(xPos); got != xOffset {
		t.Errorf("PositionToOffset(%v): expected %d, got %d", xPos, xOffset, got)
	}

	// A position inside a surrogate pair stays before the character.
	mid := Position{Line: 0, Character: 5}
	if got, want := doc.PositionToOffset(mid), len("p(\"é"); got != want {
		t.Errorf("PositionToOffset(%v): expected %d, got %d", mid, want, got)
	}

	if got := doc.OffsetToPosition(len(content)); got != (Position{Line: 1, Character: 2}) {
		t.Errorf("OffsetToPosition(end): got %v", got)
	}
}

func TestDocument_CRLF(t *testing.T) {
	content := "a.\r\nb."
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	if got := doc.PositionToOffset(Position{Line: 0, Character: 10}); got != 2 {
		t.Errorf("expected line end before \\r, got %d", got)
	}
	if got := doc.PositionToOffset(Position{Line: 1, Character: 1}); got != 5 {
		t.Errorf("expected offset 5, got %d", got)
	}
}

func TestDocument_GetWordAtPosition(t *testing.T) {
	content := "#show reach/2. reach(X', Y) :- edge(X', Y), not blocked."
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		pos          Position
		expectedWord string
	}{
		{Position{Line: 0, Character: 0}, "#show"},
		{Position{Line: 0, Character: 3}, "#show"},
		{Position{Line: 0, Character: 6}, "reach"},
		{Position{Line: 0, Character: 21}, "X'"},
		{Position{Line: 0, Character: 32}, "edge"},
		{Position{Line: 0, Character: 45}, "not"},
		{Position{Line: 0, Character: 13}, "2"},
		{Position{Line: 0, Character: 14}, ""},
	}

	for _, tt := range tests {
		word, _ := doc.GetWordAtPosition(tt.pos)
		if word != tt.expectedWord {
			t.Errorf("GetWordAtPosition(%v): expected %q, got %q", tt.pos, tt.expectedWord, word)
		}
	}

	_, r := doc.GetWordAtPosition(Position{Line: 0, Character: 8})
	want := Range{Start: Position{Line: 0, Character: 6}, End: Position{Line: 0, Character: 11}}
	if r != want {
		t.Errorf("expected range %v, got %v", want, r)
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"file:///Users/test/prog.lp", "/Users/test/prog.lp"},
		{"file:///home/user/my%20prog.lp", "/home/user/my prog.lp"},
		{"/already/a/path.lp", "/already/a/path.lp"},
	}

	for _, tt := range tests {
		path := URIToPath(tt.uri)
		if path != tt.expected {
			t.Errorf("URIToPath(%q): expected %q, got %q", tt.uri, tt.expected, path)
		}
	}
}

func TestIsWordChar(t *testing.T) {
	wordChars := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_'"
	nonWordChars := " \t\n!@#$%^&*()-+=[]{}|;:\",./<>?"

	for _, c := range wordChars {
		if !isWordChar(byte(c)) {
			t.Errorf("isWordChar(%q): expected true", c)
		}
	}

	for _, c := range nonWordChars {
		if isWordChar(byte(c)) {
			t.Errorf("isWordChar(%q): expected false", c)
		}
	}
}
