// Package termview renders the dashboard's value boxes and data preview for
// a terminal.
package termview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dreamware/penguins/internal/api"
	"github.com/dreamware/penguins/internal/filter"
)

// Accent matches the icon color of the web dashboard's value boxes.
var Accent = lipgloss.Color("#43a5be")

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Title  lipgloss.Style
	Box    lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Muted  lipgloss.Style
}

// DefaultStyles returns the standard styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 2).
			MarginRight(1),
		Label:  lipgloss.NewStyle().Faint(true),
		Value:  lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Muted:  lipgloss.NewStyle().Faint(true),
	}
}

// Boxes renders the value boxes side by side.
func Boxes(styles Styles, boxes []api.ValueBox) string {
	rendered := make([]string, 0, len(boxes))
	for _, b := range boxes {
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.Label.Render(b.Title),
			styles.Value.Render(b.Text),
		)
		rendered = append(rendered, styles.Box.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Table renders at most limit rows of the data preview. A limit of zero or
// less renders every row.
func Table(styles Styles, title string, t api.Table, limit int) string {
	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Species, r.Island, cell(r.BillLengthMM, 1), cell(r.BillDepthMM, 1), cell(r.BodyMassG, 0)}
	}

	widths := make([]int, len(t.Columns))
	for i, h := range t.Columns {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if i < len(widths) && lipgloss.Width(c) > widths[i] {
				widths[i] = lipgloss.Width(c)
			}
		}
	}
	// Width includes padding
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(styles.Title.Render(title))
		sb.WriteString("\n")
	}

	sep := styles.Muted.Render("|")
	writeRow := func(style lipgloss.Style, row []string) {
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			sb.WriteString(style.Width(widths[i]).Render(c))
			if i < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(styles.Header, t.Columns)
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)) + "\n")
	for _, row := range cells {
		writeRow(styles.Cell, row)
	}

	if hidden := len(t.Rows) - len(rows); hidden > 0 {
		sb.WriteString(styles.Muted.Render("… " + strconv.Itoa(hidden) + " more rows"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Dashboard renders the page title, value boxes and data preview.
func Dashboard(styles Styles, summary api.Summary, t api.Table, limit int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(api.Title),
		Boxes(styles, summary.Boxes),
		"",
		Table(styles, api.CardTable, t, limit),
	)
}

func cell(m filter.Measure, prec int) string {
	if !m.Valid() {
		return filter.NoData
	}
	return strconv.FormatFloat(float64(m), 'f', prec, 64)
}
