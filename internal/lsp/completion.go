package lsp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/parser"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// getCompletions returns completion items for the given position.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	lineStart := doc.Lines[min(int(params.Position.Line), len(doc.Lines)-1)]
	lineBefore := doc.Content[lineStart:offset]
	if strings.Contains(lineBefore, "%") {
		return nil
	}

	prefix := wordPrefix(lineBefore)
	if strings.HasPrefix(prefix, "#") {
		return filterPrefix(directiveCompletions(), prefix)
	}
	if prefix != "" && (prefix[0] == '_' || (prefix[0] >= 'A' && prefix[0] <= 'Z')) {
		return filterPrefix(variableCompletions(doc.Content, offset), prefix)
	}

	var items []CompletionItem
	items = append(items, s.predicateCompletions(doc.Stable)...)
	items = append(items, constantCompletions(doc.Stable)...)
	items = append(items, CompletionItem{
		Label:  "not",
		Kind:   CompletionItemKindKeyword,
		Detail: "default negation",
	})
	return filterPrefix(items, prefix)
}

// wordPrefix returns the partial name or directive ending the text.
func wordPrefix(text string) string {
	i := len(text)
	for i > 0 && isWordChar(text[i-1]) {
		i--
	}
	if i > 0 && text[i-1] == '#' {
		i--
	}
	return text[i:]
}

func filterPrefix(items []CompletionItem, prefix string) []CompletionItem {
	if prefix == "" {
		return items
	}
	var out []CompletionItem
	for _, item := range items {
		if strings.HasPrefix(item.Label, prefix) {
			out = append(out, item)
		}
	}
	return out
}

func directiveCompletions() []CompletionItem {
	names := make([]string, 0, len(directiveDocs))
	for name := range directiveDocs {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]CompletionItem, 0, len(names))
	for _, name := range names {
		d := directiveDocs[name]
		items = append(items, CompletionItem{
			Label:         name,
			Kind:          CompletionItemKindKeyword,
			Detail:        d.Syntax,
			Documentation: d.Description,
		})
	}
	return items
}

// predicateCompletions offers every predicate of the last parsed version
// of the document. With snippet support the arguments become tab stops.
func (s *Server) predicateCompletions(a *Analysis) []CompletionItem {
	var items []CompletionItem
	for _, pred := range a.Predicates() {
		if strings.HasPrefix(pred, "-") {
			continue
		}
		name, arityText := splitPredicate(pred)
		arity, err := strconv.Atoi(arityText)
		if err != nil {
			continue
		}

		item := CompletionItem{
			Label:  name,
			Kind:   CompletionItemKindStruct,
			Detail: pred,
		}
		if n := a.RuleCount(pred); n > 0 {
			item.Documentation = fmt.Sprintf("defined by %d %s", n, plural(n, "rule", "rules"))
		}
		if arity > 0 && s.snippetSupport() {
			args := make([]string, arity)
			for i := range args {
				args[i] = fmt.Sprintf("${%d:X%d}", i+1, i+1)
			}
			item.InsertText = name + "(" + strings.Join(args, ", ") + ")"
			item.InsertTextFormat = InsertTextFormatSnippet
		}
		items = append(items, item)
	}
	return items
}

func constantCompletions(a *Analysis) []CompletionItem {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Constants))
	for name := range a.Constants {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]CompletionItem, 0, len(names))
	for _, name := range names {
		items = append(items, CompletionItem{
			Label:  name,
			Kind:   CompletionItemKindConstant,
			Detail: a.Constants[name].String(),
		})
	}
	return items
}

// variableCompletions returns the variables of the statement around
// offset. The text is lexed rather than parsed, so it works on
// statements that are still being typed.
func variableCompletions(content string, offset int) []CompletionItem {
	seen := make(map[string]bool)
	var current []string
	before := true
	for _, tok := range parser.Tokenize(content) {
		if tok.Type == token.EOF {
			break
		}
		if tok.Pos.Offset >= offset && before {
			before = false
		}
		if tok.Type == token.DOT {
			if !before {
				break
			}
			clear(seen)
			current = current[:0]
			continue
		}
		if tok.Type == token.VARIABLE && !seen[tok.Literal] && tok.End.Offset != offset {
			seen[tok.Literal] = true
			current = append(current, tok.Literal)
		}
	}
	sort.Strings(current)

	items := make([]CompletionItem, 0, len(current))
	for _, name := range current {
		items = append(items, CompletionItem{
			Label: name,
			Kind:  CompletionItemKindVariable,
		})
	}
	return items
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
