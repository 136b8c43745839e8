package lsp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/parser"
	"github.com/leapstack-labs/leapasp/pkg/solver"
)

// Diagnostic codes.
const (
	CodeSyntax             = "syntax"
	CodeHeadCycle          = "head-cycle"
	CodeUndefinedPredicate = "undefined-predicate"
	CodeUnsafe             = "unsafe"
	CodeGround             = "ground"
)

const diagnosticSource = "leapasp"

// publishDiagnostics computes and sends diagnostics for a document.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	diagnostics := s.computeDiagnostics(ctx, doc)
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// computeDiagnostics checks a document. A syntax error hides every other
// finding since nothing past it was parsed.
func (s *Server) computeDiagnostics(ctx context.Context, doc *Document) []Diagnostic {
	diagnostics := []Diagnostic{}
	a := doc.Analysis
	if a.ParseErr != nil {
		return append(diagnostics, Diagnostic{
			Range:    doc.SpanToRange(a.ParseErr.Span),
			Severity: DiagnosticSeverityError,
			Code:     CodeSyntax,
			Source:   diagnosticSource,
			Message:  a.ParseErr.Message,
		})
	}

	for _, c := range a.Program.HeadCycles() {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    doc.SpanToRange(c.Span),
			Severity: DiagnosticSeverityWarning,
			Code:     CodeHeadCycle,
			Source:   diagnosticSource,
			Message:  fmt.Sprintf("head cycle through %s; models may not be minimal", strings.Join(c.Predicates, ", ")),
		})
	}

	defined := a.DefinedPredicates()
	for _, o := range a.Occurrences {
		if o.Head || a.Defined(o.Predicate) {
			continue
		}
		msg := o.Predicate + " does not occur in any rule head"
		if suggestion := suggestSimilar(o.Predicate, defined); suggestion != "" {
			msg += fmt.Sprintf("; did you mean %s?", suggestion)
		}
		diagnostics = append(diagnostics, Diagnostic{
			Range:    doc.SpanToRange(o.Span),
			Severity: DiagnosticSeverityInformation,
			Code:     CodeUndefinedPredicate,
			Source:   diagnosticSource,
			Message:  msg,
		})
	}

	if d, ok := s.groundDiagnostic(ctx, doc); ok {
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

// groundDiagnostic grounds the document and reports the first error.
// Grounding that runs out of time is not reported.
func (s *Server) groundDiagnostic(ctx context.Context, doc *Document) (Diagnostic, bool) {
	if s.groundTimeout <= 0 {
		return Diagnostic{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.groundTimeout)
	defer cancel()

	ctl := solver.New(solver.Config{Logger: s.logger})
	err := ctl.Add(solver.Base.Name, nil, doc.Content)
	if err == nil {
		err = ctl.Ground(ctx)
	}
	if err == nil {
		return Diagnostic{}, false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.Debug("grounding skipped", "uri", doc.URI, "error", err)
		return Diagnostic{}, false
	}

	d := Diagnostic{
		Severity: DiagnosticSeverityError,
		Code:     CodeGround,
		Source:   diagnosticSource,
		Message:  err.Error(),
	}
	if errors.Is(err, solver.ErrUnsafe) {
		d.Code = CodeUnsafe
	}
	var diag *parser.Diagnostic
	if errors.As(err, &diag) {
		d.Range = doc.SpanToRange(diag.Span)
		d.Message = diag.Message
	}
	return d, true
}

// suggestSimilar returns the candidate closest to name, or "" if none is
// close enough. Predicates only match candidates of the same arity.
func suggestSimilar(name string, candidates []string) string {
	base, arity := splitPredicate(name)
	maxDist := max(1, len(base)/3)

	best := ""
	bestDist := maxDist + 1
	for _, c := range candidates {
		cBase, cArity := splitPredicate(c)
		if cArity != arity || c == name {
			continue
		}
		dist := levenshtein(strings.ToLower(base), strings.ToLower(cBase))
		if dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	return best
}

func splitPredicate(pred string) (name, arity string) {
	if i := strings.LastIndexByte(pred, '/'); i >= 0 {
		return pred[:i], pred[i+1:]
	}
	return pred, ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
