// Package render formats user-facing CLI output. Styling follows the
// terminal behind the writer, so redirected output stays plain text.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kingrea/promptlayers/internal/document"
)

// Printer writes labelled lines to one stream.
type Printer struct {
	w     io.Writer
	warn  lipgloss.Style
	err   lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter returns a printer whose colour profile is detected from w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		warn:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5A623")),
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		label: r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// Warnings prints one "warning: <msg>" line per message.
func (p *Printer) Warnings(msgs []string) {
	for _, msg := range msgs {
		fmt.Fprintf(p.w, "%s %s\n", p.warn.Render("warning:"), msg)
	}
}

// Error prints "error: <err>".
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(p.w, "%s %v\n", p.err.Render("error:"), err)
}

// Field prints "<name>: <value>".
func (p *Printer) Field(name, value string) {
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render(name+":"), value)
}

// Note prints a de-emphasised line.
func (p *Printer) Note(msg string) {
	fmt.Fprintln(p.w, p.muted.Render(msg))
}

// CatalogRow is one displayed catalog entry.
type CatalogRow struct {
	Entry       document.Entry
	LastUpdated time.Time
	Missing     bool
	Unreadable  bool
}

// CatalogTable renders catalog rows with their last-updated date.
func CatalogTable(rows []CatalogRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "ROLE", "PATH", "UPDATED")
	for _, row := range rows {
		var updated string
		switch {
		case row.Missing:
			updated = "missing"
		case row.Unreadable:
			updated = "unreadable"
		default:
			updated = row.LastUpdated.UTC().Format("2006-01-02")
		}
		t.Row(row.Entry.ID, string(row.Entry.Role), row.Entry.Path, updated)
	}
	return t.String()
}
