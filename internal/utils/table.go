package utils

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableFormatter helps create formatted tables for CLI output. Widths are
// measured in terminal cells so emoji and styled cells line up.
type TableFormatter struct {
	headers []string
	rows    [][]string
	widths  []int

	// maxCellWidth truncates long cells such as error messages; 0 disables it
	maxCellWidth int
}

// NewTableFormatter creates a new table formatter with headers
func NewTableFormatter(headers ...string) *TableFormatter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &TableFormatter{
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// WithMaxCellWidth truncates cells wider than width
func (t *TableFormatter) WithMaxCellWidth(width int) *TableFormatter {
	t.maxCellWidth = width
	return t
}

// AddRow adds a row to the table. Short rows are padded, long rows truncated.
func (t *TableFormatter) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = t.truncate(cells[i])
		}
	}
	t.rows = append(t.rows, row)

	for i, cell := range row {
		if w := lipgloss.Width(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
}

// Len returns the number of rows
func (t *TableFormatter) Len() int {
	return len(t.rows)
}

func (t *TableFormatter) truncate(cell string) string {
	cell = strings.ReplaceAll(cell, "\n", " ")
	if t.maxCellWidth <= 0 || lipgloss.Width(cell) <= t.maxCellWidth {
		return cell
	}
	runes := []rune(cell)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > t.maxCellWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// String returns the formatted table
func (t *TableFormatter) String() string {
	var sb strings.Builder

	t.writeBorder(&sb, "┌", "┬", "┐")
	t.writeRow(&sb, t.headers)
	t.writeBorder(&sb, "├", "┼", "┤")
	for _, row := range t.rows {
		t.writeRow(&sb, row)
	}
	t.writeBorder(&sb, "└", "┴", "┘")

	return sb.String()
}

func (t *TableFormatter) writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("│")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", t.widths[i]-lipgloss.Width(cell)))
		sb.WriteString(" │")
	}
	sb.WriteString("\n")
}

func (t *TableFormatter) writeBorder(sb *strings.Builder, left, middle, right string) {
	sb.WriteString(left)
	for i, w := range t.widths {
		sb.WriteString(strings.Repeat("─", w+2))
		if i < len(t.widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right)
	sb.WriteString("\n")
}
