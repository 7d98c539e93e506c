package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReportBuilder provides a fluent interface for building plain-text reports
// such as the execution plan
type ReportBuilder struct {
	lines []string
}

// NewReportBuilder creates a new report builder
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{lines: []string{}}
}

// Header adds a header underlined to its own width
func (rb *ReportBuilder) Header(text string) *ReportBuilder {
	rb.lines = append(rb.lines, text, strings.Repeat("=", lipgloss.Width(text)))
	return rb
}

// Section adds a section title preceded by a blank line
func (rb *ReportBuilder) Section(title string) *ReportBuilder {
	rb.lines = append(rb.lines, "", title)
	return rb
}

// AddBullet adds a bulleted line
func (rb *ReportBuilder) AddBullet(text string) *ReportBuilder {
	rb.lines = append(rb.lines, fmt.Sprintf("• %s", text))
	return rb
}

// AddNumbered adds a numbered line
func (rb *ReportBuilder) AddNumbered(number int, text string) *ReportBuilder {
	rb.lines = append(rb.lines, fmt.Sprintf("%d. %s", number, text))
	return rb
}

// AddIndented adds a line indented by two spaces per level
func (rb *ReportBuilder) AddIndented(text string, level int) *ReportBuilder {
	rb.lines = append(rb.lines, strings.Repeat("  ", level)+text)
	return rb
}

// AddTable adds a rendered table, one report line per table line
func (rb *ReportBuilder) AddTable(table *TableFormatter) *ReportBuilder {
	rendered := strings.TrimSuffix(table.String(), "\n")
	rb.lines = append(rb.lines, strings.Split(rendered, "\n")...)
	return rb
}

// Build returns the built report as a string
func (rb *ReportBuilder) Build() string {
	return strings.Join(rb.lines, "\n")
}

// WriteTo writes the report followed by a newline
func (rb *ReportBuilder) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, rb.Build()+"\n")
	return int64(n), err
}
