package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ava12/rbparse/config"
	"github.com/ava12/rbparse/diag"
)

// renderer is a diagnostics sink printing human readable lines.
type renderer struct {
	w        io.Writer
	warnings bool
	verbose  bool

	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	verboseStyle lipgloss.Style
	posStyle     lipgloss.Style
}

func newRenderer(w io.Writer, o config.Options) *renderer {
	r := &renderer{
		w:            w,
		warnings:     o.Warnings,
		verbose:      o.Verbose,
		warnStyle:    lipgloss.NewStyle(),
		errorStyle:   lipgloss.NewStyle(),
		verboseStyle: lipgloss.NewStyle(),
		posStyle:     lipgloss.NewStyle(),
	}
	if o.Color {
		r.warnStyle = r.warnStyle.Foreground(lipgloss.Color("3"))
		r.errorStyle = r.errorStyle.Foreground(lipgloss.Color("1")).Bold(true)
		r.verboseStyle = r.verboseStyle.Faint(true)
		r.posStyle = r.posStyle.Foreground(lipgloss.Color("6"))
	}
	return r
}

func (r *renderer) Report(d diag.Diagnostic) {
	style := r.warnStyle
	switch d.Severity {
	case diag.Error:
		style = r.errorStyle
	case diag.Verbose:
		if !r.warnings || !r.verbose {
			return
		}
		style = r.verboseStyle
	default:
		if !r.warnings {
			return
		}
	}

	pos := fmt.Sprintf("%s:%d:", d.File, d.Line)
	fmt.Fprintln(r.w, r.posStyle.Render(pos), style.Render(d.Severity.String()+": "+d.Message))
}
