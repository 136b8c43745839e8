package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/core"
)

// DiagnosticView is one file diagnostic in machine readable form.
type DiagnosticView struct {
	File        string `json:"file" yaml:"file"`
	Line        int    `json:"line,omitempty" yaml:"line,omitempty"`
	ColumnBegin int    `json:"column_begin,omitempty" yaml:"column_begin,omitempty"`
	ColumnEnd   int    `json:"column_end,omitempty" yaml:"column_end,omitempty"`
	Message     string `json:"message" yaml:"message"`

	excerpt []string
}

// NewDiagnosticView builds the view of err reported for file. Parse
// errors keep their position and source excerpt.
func NewDiagnosticView(file string, err error) DiagnosticView {
	var pe *core.ParseError
	if !errors.As(err, &pe) {
		return DiagnosticView{File: file, Message: err.Error()}
	}
	lines := strings.Split(pe.Error(), "\n")
	return DiagnosticView{
		File:        file,
		Line:        pe.Line,
		ColumnBegin: pe.ColumnBegin,
		ColumnEnd:   pe.ColumnEnd,
		Message:     pe.Message,
		excerpt:     lines[1:],
	}
}

// Location returns file:line:column[-column], or the file alone.
func (d DiagnosticView) Location() string {
	if d.Line == 0 {
		return d.File
	}
	if d.ColumnEnd <= d.ColumnBegin {
		return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.ColumnBegin)
	}
	return fmt.Sprintf("%s:%d:%d-%d", d.File, d.Line, d.ColumnBegin, d.ColumnEnd)
}

// Diagnostics writes diagnostics to the message output, or as a JSON or
// YAML list to the result output in those modes.
func (r *Renderer) Diagnostics(diags []DiagnosticView) error {
	switch r.EffectiveMode() {
	case ModeJSON, ModeYAML:
		out := struct {
			Diagnostics []DiagnosticView `json:"diagnostics" yaml:"diagnostics"`
		}{Diagnostics: diags}
		if out.Diagnostics == nil {
			out.Diagnostics = []DiagnosticView{}
		}
		if r.EffectiveMode() == ModeYAML {
			return r.encodeYAML(out)
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, d := range diags {
		r.Diagnostic(d)
	}
	return nil
}

// Diagnostic writes one diagnostic with its source excerpt to the message
// output.
func (r *Renderer) Diagnostic(d DiagnosticView) {
	s := r.styles
	_, _ = fmt.Fprintf(r.errOut, "%s: %s %s\n",
		s.Location.Render(d.Location()), s.Error.Render("error:"), d.Message)
	for _, line := range d.excerpt {
		gutter, text, ok := strings.Cut(line, " | ")
		if !ok {
			_, _ = fmt.Fprintln(r.errOut, line)
			continue
		}
		if strings.TrimSpace(gutter) == "" {
			text = s.Caret.Render(text)
		}
		_, _ = fmt.Fprintf(r.errOut, "%s %s\n", s.Muted.Render(gutter+" |"), text)
	}
}
