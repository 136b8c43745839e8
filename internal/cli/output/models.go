package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapasp/pkg/core"
)

// Solve results as printed in the summary.
const (
	ResultSatisfiable   = "SATISFIABLE"
	ResultUnsatisfiable = "UNSATISFIABLE"
	ResultOptimum       = "OPTIMUM FOUND"
	ResultUnknown       = "UNKNOWN"
)

// summaryWidth aligns the keys of the text summary.
const summaryWidth = 12

// ModelView is one model as rendered by Solve.
type ModelView struct {
	Number   int      `json:"number" yaml:"number"`
	Cost     []int    `json:"cost,omitempty" yaml:"cost,omitempty,flow"`
	Optimal  bool     `json:"optimal,omitempty" yaml:"optimal,omitempty"`
	Elements []string `json:"elements" yaml:"elements,flow"`

	model core.Model
}

// NewModelView builds the view of a model.
func NewModelView(number int, cost []int, optimal bool, m core.Model) ModelView {
	elems := m.Elements()
	text := make([]string, len(elems))
	for i, e := range elems {
		text[i] = e.String()
	}
	return ModelView{Number: number, Cost: cost, Optimal: optimal, Elements: text, model: m}
}

// Summary describes a finished search.
type Summary struct {
	Result    string        `json:"result" yaml:"result"`
	Models    int           `json:"models" yaml:"models"`
	Exhausted bool          `json:"exhausted" yaml:"exhausted"`
	Optimum   bool          `json:"optimum,omitempty" yaml:"optimum,omitempty"`
	Elapsed   time.Duration `json:"-" yaml:"-"`
	RunID     string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// SolveOutput is the machine readable form of a solve run.
type SolveOutput struct {
	Models  []ModelView `json:"models" yaml:"models"`
	Summary Summary     `json:"summary" yaml:"summary"`
}

// Solve writes the models and the summary in the effective mode.
func (r *Renderer) Solve(out SolveOutput) error {
	if out.Models == nil {
		out.Models = []ModelView{}
	}
	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case ModeYAML:
		return r.encodeYAML(out)
	case ModeFacts:
		r.renderFacts(out)
	case ModeTable:
		r.renderTable(out)
	case ModeMarkdown:
		r.renderMarkdown(out)
	default:
		r.renderText(out)
	}
	return nil
}

func (r *Renderer) renderText(out SolveOutput) {
	s := r.styles
	for _, m := range out.Models {
		r.Header(2, fmt.Sprintf("Answer: %d", m.Number))
		r.Println(r.styleElements(m.Elements))
		if len(m.Cost) > 0 {
			r.Println(s.Muted.Render("Optimization: " + joinInts(m.Cost)))
		}
	}
	r.Println(r.resultStyle(out.Summary.Result).Render(out.Summary.Result))
	r.Println()
	r.Println(FormatKeyValue("Models", modelsValue(out.Summary), summaryWidth))
	if out.Summary.Result == ResultOptimum || out.Summary.Optimum {
		r.Println(FormatKeyValue("  Optimum", yesNo(out.Summary.Optimum), summaryWidth))
	}
	if out.Summary.Elapsed > 0 {
		r.Println(FormatKeyValue("Time", fmt.Sprintf("%.3fs", out.Summary.Elapsed.Seconds()), summaryWidth))
	}
}

func (r *Renderer) renderMarkdown(out SolveOutput) {
	r.Println(FormatHeader(1, "Answer Sets"))
	r.Println()
	for _, m := range out.Models {
		r.Println(FormatHeader(2, fmt.Sprintf("Answer %d", m.Number)))
		for _, e := range m.Elements {
			r.Printf("- `%s`\n", e)
		}
		if len(m.Cost) > 0 {
			r.Printf("\nOptimization: %s\n", joinInts(m.Cost))
		}
		r.Println()
	}
	r.Println(FormatHeader(2, "Summary"))
	r.Println(FormatKeyValue("- Result", out.Summary.Result, 0))
	r.Println(FormatKeyValue("- Models", modelsValue(out.Summary), 0))
}

func (r *Renderer) renderFacts(out SolveOutput) {
	for _, m := range out.Models {
		r.Printf("%% Answer: %d\n", m.Number)
		if len(m.Cost) > 0 {
			r.Printf("%% Optimization: %s\n", joinInts(m.Cost))
		}
		if facts := m.model.AsFacts(); facts != "" {
			r.Println(facts)
		}
	}
	r.Printf("%% %s\n", out.Summary.Result)
}

func (r *Renderer) renderTable(out SolveOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Answer", "Cost", "Optimal", "Elements"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Elements", WidthMax: 80},
	})
	for _, m := range out.Models {
		t.AppendRow(table.Row{m.Number, joinInts(m.Cost), yesNo(m.Optimal), strings.Join(m.Elements, " ")})
	}
	t.AppendFooter(table.Row{"", "", "", out.Summary.Result})
	t.Render()
}

func (r *Renderer) styleElements(elems []string) string {
	if !r.styled {
		return strings.Join(elems, " ")
	}
	styled := make([]string, len(elems))
	for i, e := range elems {
		_, numErr := strconv.Atoi(e)
		switch {
		case numErr == nil || strings.HasPrefix(e, `"`):
			styled[i] = r.styles.Literal.Render(e)
		case strings.HasPrefix(e, "-"):
			styled[i] = r.styles.Negated.Render(e)
		default:
			styled[i] = r.styles.Atom.Render(e)
		}
	}
	return strings.Join(styled, " ")
}

func (r *Renderer) resultStyle(result string) lipgloss.Style {
	switch result {
	case ResultUnsatisfiable:
		return r.styles.Error
	case ResultUnknown:
		return r.styles.Warning
	}
	return r.styles.Success
}

func (r *Renderer) encodeYAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func modelsValue(s Summary) string {
	n := strconv.Itoa(s.Models)
	if !s.Exhausted && s.Models > 0 {
		n += "+"
	}
	return n
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
