package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// Printer writes styled one-line status messages, usually to stderr.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer on w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Progress announces a step ("Loading your chats...").
func (p *Printer) Progress(format string, args ...any) {
	p.line(progressStyle, format, args...)
}

// Success reports a completed step.
func (p *Printer) Success(format string, args ...any) {
	p.line(successStyle, format, args...)
}

// Warn reports a recoverable problem.
func (p *Printer) Warn(format string, args ...any) {
	p.line(warningStyle, format, args...)
}

// Error reports a failure.
func (p *Printer) Error(format string, args ...any) {
	p.line(errorStyle, format, args...)
}

// Prompt writes format without a trailing newline.
func (p *Printer) Prompt(format string, args ...any) {
	if p == nil || p.w == nil {
		return
	}
	_, _ = fmt.Fprint(p.w, warningStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	if p == nil || p.w == nil {
		return
	}
	_, _ = fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, args...)))
}
