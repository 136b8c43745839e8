// Package output renders command results for terminals and for machines.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto" // TTY=text, non-TTY=facts
	ModeText     Mode = "text"
	ModeFacts    Mode = "facts"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
	ModeTable    Mode = "table"
	ModeMarkdown Mode = "markdown"
)

// Colour settings accepted by NewRenderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Renderer writes results to an output and messages to an error output.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styled bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode, color string) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode, color)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode, color string) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styled := color == ColorAlways || (color != ColorNever && isTTY && os.Getenv("NO_COLOR") == "")

	profile := termenv.Ascii
	if styled {
		profile = termenv.EnvColorProfile()
		if profile == termenv.Ascii {
			profile = termenv.ANSI
		}
	}
	lr := lipgloss.NewRenderer(out)
	lr.SetColorProfile(profile)

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styled: styled,
		styles: NewStyles(lr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeFacts
}

// IsStyled reports whether output carries ANSI styling.
func (r *Renderer) IsStyled() bool { return r.styled }

// Styles returns the styles of the renderer.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the result output.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the message output.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to the result output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header: styled in text mode, a markdown
// heading in markdown mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(text))
}

// Success writes a success message to the message output.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Success.Render(msg))
}

// Warning writes a warning to the message output.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning: "+msg))
}

// Error writes an error to the message output.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("error: "+msg))
}

// FormatHeader formats text as a markdown heading of the given level.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", max(level, 1)) + " " + text
}

// FormatKeyValue pads key to width and appends value, clingo summary style.
func FormatKeyValue(key, value string, width int) string {
	if pad := width - len(key); pad > 0 {
		key += strings.Repeat(" ", pad)
	}
	return key + ": " + value
}
