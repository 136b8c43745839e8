package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/core"
)

// Statement kinds reported by NewStatementView.
const (
	KindRule       = "rule"
	KindConstraint = "constraint"
	KindFact       = "fact"
	KindShow       = "show"
	KindWeak       = "weak"
	KindConst      = "const"
	KindProgram    = "program"
)

// StatementView is one parsed statement.
type StatementView struct {
	Kind string `json:"kind" yaml:"kind"`
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// NewStatementView builds the view of stmt.
func NewStatementView(stmt ast.Statement) StatementView {
	return StatementView{
		Kind: statementKind(stmt),
		Line: stmt.GetSpan().Start.Line,
		Text: stmt.String(),
	}
}

func statementKind(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.Rule:
		switch {
		case s.IsConstraint():
			return KindConstraint
		case s.IsFact():
			return KindFact
		}
		return KindRule
	case *ast.ShowSignature, *ast.ShowTerm:
		return KindShow
	case *ast.Minimize:
		return KindWeak
	case *ast.Definition:
		return KindConst
	case *ast.Program:
		return KindProgram
	}
	return fmt.Sprintf("%T", stmt)
}

// FileView is the parsed content of one file.
type FileView struct {
	File       string          `json:"file" yaml:"file"`
	Statements []StatementView `json:"statements" yaml:"statements"`
}

// Program writes parsed files. Text and facts modes print the normalized
// program, one statement per line.
func (r *Renderer) Program(files []FileView) error {
	for i := range files {
		if files[i].Statements == nil {
			files[i].Statements = []StatementView{}
		}
	}
	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	case ModeYAML:
		return r.encodeYAML(files)
	case ModeTable:
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"File", "Line", "Kind", "Statement"})
		for _, f := range files {
			for _, s := range f.Statements {
				t.AppendRow(table.Row{f.File, s.Line, s.Kind, s.Text})
			}
		}
		t.Render()
		return nil
	}
	for i, f := range files {
		if len(files) > 1 {
			if i > 0 {
				r.Println()
			}
			r.Println(r.styles.Muted.Render("% " + f.File))
		}
		for _, s := range f.Statements {
			r.Println(s.Text)
		}
	}
	return nil
}

// Model writes the elements of a single model, such as a Herbrand base.
func (r *Renderer) Model(m core.Model) error {
	elems := NewModelView(0, nil, false, m).Elements
	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case ModeYAML:
		return r.encodeYAML(elems)
	case ModeFacts:
		if facts := m.AsFacts(); facts != "" {
			r.Println(facts)
		}
		return nil
	case ModeTable:
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Element"})
		for i, e := range elems {
			t.AppendRow(table.Row{i + 1, e})
		}
		t.Render()
		return nil
	}
	r.Println(strings.TrimSpace(r.styleElements(elems)))
	return nil
}
