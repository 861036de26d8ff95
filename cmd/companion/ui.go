package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorAccent  = lipgloss.Color("#E3350D")
	colorLabel   = lipgloss.Color("#30A7D7")
	colorMuted   = lipgloss.Color("#616161")
	colorWarning = lipgloss.Color("#F4D03F")
	colorSuccess = lipgloss.Color("#4DAD5B")
)

// ui writes styled output. Styles are bound to the writer's renderer so
// piped output carries no escape sequences.
type ui struct {
	out     io.Writer
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	header  lipgloss.Style
	box     lipgloss.Style
}

func newUI(out io.Writer) *ui {
	r := lipgloss.NewRenderer(out)
	return &ui{
		out:     out,
		title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		label:   r.NewStyle().Foreground(colorLabel),
		muted:   r.NewStyle().Foreground(colorMuted),
		warning: r.NewStyle().Foreground(colorWarning),
		success: r.NewStyle().Foreground(colorSuccess),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLabel).
			Padding(0, 1),
	}
}

func (u *ui) Title(s string) {
	fmt.Fprintln(u.out, u.title.Render(s))
}

func (u *ui) Field(label string, value any) {
	fmt.Fprintf(u.out, "%s %v\n", u.label.Render(fmt.Sprintf("%-12s", label+":")), value)
}

func (u *ui) Line(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

func (u *ui) Muted(format string, args ...any) {
	fmt.Fprintln(u.out, u.muted.Render(fmt.Sprintf(format, args...)))
}

func (u *ui) Warn(format string, args ...any) {
	fmt.Fprintln(u.out, u.warning.Render("warning: "+fmt.Sprintf(format, args...)))
}

func (u *ui) OK(format string, args ...any) {
	fmt.Fprintln(u.out, u.success.Render(fmt.Sprintf(format, args...)))
}

// Box prints lines inside a rounded border.
func (u *ui) Box(lines ...string) {
	fmt.Fprintln(u.out, u.box.Render(strings.Join(lines, "\n")))
}

// Table prints rows under headers. An empty row set prints a placeholder.
func (u *ui) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		u.Muted("(none)")
		return
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(u.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return u.header
			}
			return cell
		})
	fmt.Fprintln(u.out, t.String())
}
