package lsp

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leapstack-labs/leapasp/pkg/token"
)

// Document represents an open text document in the editor.
type Document struct {
	URI     string // Document URI (file:///path/to/prog.lp)
	Content string // Full document content
	Version int    // Version number, incremented on each change
	Lines   []int  // Byte offsets of line starts for fast position lookups

	// Analysis of Content. Stable is the most recent analysis that parsed,
	// used for completion while the user is in the middle of a statement.
	Analysis *Analysis
	Stable   *Analysis
}

// DocumentStore manages open documents in memory.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Open adds or replaces a document in the store and analyzes it.
func (s *DocumentStore) Open(uri string, content string, version int) *Document {
	doc := &Document{URI: uri}
	doc.setContent(content, version)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = doc
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Update replaces an open document's content. Documents are immutable
// once stored, so readers holding the previous version stay consistent.
// It returns nil if the document is not open.
func (s *DocumentStore) Update(uri string, content string, version int) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.documents[uri]
	if !ok {
		return nil
	}
	doc := &Document{URI: uri, Stable: prev.Stable}
	doc.setContent(content, version)
	s.documents[uri] = doc
	return doc
}

// List returns all open document URIs in sorted order.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

func (d *Document) setContent(content string, version int) {
	d.Content = content
	d.Version = version
	d.Lines = computeLineOffsets(content)
	d.Analysis = Analyze(content)
	if d.Analysis.ParseErr == nil {
		d.Stable = d.Analysis
	}
}

// computeLineOffsets calculates byte offsets for each line start.
func computeLineOffsets(content string) []int {
	offsets := []int{0} // First line starts at offset 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}

	return offsets
}

// lineEnd returns the byte offset of the end of line, excluding the
// line break.
func (d *Document) lineEnd(line int) int {
	if line+1 < len(d.Lines) {
		end := d.Lines[line+1] - 1
		if end > d.Lines[line] && d.Content[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(d.Content)
}

// PositionToOffset converts a Position to a byte offset in the document.
// Characters are counted in UTF-16 code units; a character past the end
// of the line clamps to the line end.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}

	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	offset := d.Lines[line]
	end := d.lineEnd(line)
	units := int(pos.Character)
	for offset < end && units > 0 {
		r, size := utf8.DecodeRuneInString(d.Content[offset:end])
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		if n > units {
			break
		}
		units -= n
		offset += size
	}
	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}

	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}

	line := sort.Search(len(d.Lines), func(i int) bool { return d.Lines[i] > offset }) - 1

	character := 0
	for _, r := range d.Content[d.Lines[line]:offset] {
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		character += n
	}
	return Position{
		Line:      uint32(line),
		Character: uint32(character),
	}
}

// SpanToRange converts a source span to an editor range.
func (d *Document) SpanToRange(span token.Span) Range {
	end := span.End.Offset
	if end < span.Start.Offset {
		end = span.Start.Offset
	}
	return Range{Start: d.OffsetToPosition(span.Start.Offset), End: d.OffsetToPosition(end)}
}

// GetWordAtPosition returns the word at the given position and its range.
// A leading '#' is part of the word, so directives come back whole.
func (d *Document) GetWordAtPosition(pos Position) (string, Range) {
	offset := d.PositionToOffset(pos)
	if offset > len(d.Content) {
		return "", Range{Start: pos, End: pos}
	}

	start := offset
	for start > 0 && isWordChar(d.Content[start-1]) {
		start--
	}
	if start > 0 && d.Content[start-1] == '#' {
		start--
	}

	end := offset
	if end < len(d.Content) && d.Content[end] == '#' && end == start {
		end++
	}
	for end < len(d.Content) && isWordChar(d.Content[end]) {
		end++
	}

	if start == end || d.Content[start:end] == "#" {
		return "", Range{Start: pos, End: pos}
	}

	return d.Content[start:end], Range{
		Start: d.OffsetToPosition(start),
		End:   d.OffsetToPosition(end),
	}
}

// isWordChar reports whether c can occur in a name or variable. Primes
// are allowed after the first character, as in X'.
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '\''
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	path := uri[len(prefix):]
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}
