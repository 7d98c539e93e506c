package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType defines the type of message box to render.
type MessageType int

const (
	// InfoMessage represents an informational message.
	InfoMessage MessageType = iota
	// SuccessMessage represents a success message.
	SuccessMessage
	// WarningMessage represents a warning message.
	WarningMessage
	// ErrorMessage represents an error message.
	ErrorMessage
	// QuestionMessage represents a question or prompt.
	QuestionMessage
)

const (
	infoPrefix     = "ℹ"
	successPrefix  = "✓"
	warningPrefix  = "⚠"
	errorPrefix    = "✗"
	questionPrefix = "?"
)

const (
	topLeft     = "╭"
	topRight    = "╮"
	bottomLeft  = "╰"
	bottomRight = "╯"
	horizontal  = "─"
	vertical    = "│"

	// box chrome: border, space, prefix column and trailing space
	boxChrome = 6
	minWidth  = 20
)

var (
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// Box is a builder for creating formatted message boxes.
type Box struct {
	messageType MessageType
	title       string
	content     []string
	maxWidth    int
}

// NewBox creates a new message box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		content:     []string{},
		maxWidth:    getTerminalWidth() - 8,
	}
}

// WithMaxWidth caps the terminal-derived width. It never widens the box.
func (b *Box) WithMaxWidth(width int) *Box {
	if width < minWidth {
		width = minWidth
	}
	if width < b.maxWidth {
		b.maxWidth = width
	}
	return b
}

// AddLine adds a line of text to the message box content.
func (b *Box) AddLine(text string) *Box {
	b.content = append(b.content, text)
	return b
}

// AddBullet adds a bulleted line to the message box content.
func (b *Box) AddBullet(text string) *Box {
	b.content = append(b.content, fmt.Sprintf("• %s", text))
	return b
}

// AddKeyValue adds a "key: value" line.
func (b *Box) AddKeyValue(key string, value interface{}) *Box {
	b.content = append(b.content, fmt.Sprintf("%s: %v", key, value))
	return b
}

// Render builds and returns the formatted message box as a string.
func (b *Box) Render() string {
	style, prefix := b.getStyleAndPrefix()

	contentWidth := b.maxWidth - boxChrome
	var lines []string
	for _, line := range append([]string{b.title}, b.content...) {
		if lipgloss.Width(line) <= contentWidth {
			lines = append(lines, line)
		} else {
			lines = append(lines, wrapText(line, contentWidth)...)
		}
	}

	boxWidth := boxChrome
	for _, line := range lines {
		if w := lipgloss.Width(line) + boxChrome; w > boxWidth {
			boxWidth = w
		}
	}

	var sb strings.Builder
	sb.WriteString(style.Render(topLeft+strings.Repeat(horizontal, boxWidth-2)+topRight) + "\n")

	for i, line := range lines {
		lead := "  "
		if i == 0 {
			lead = style.Bold(true).Render(prefix) + " "
			line = style.Render(line)
		}
		padding := boxWidth - lipgloss.Width(line) - boxChrome
		if padding < 0 {
			padding = 0
		}
		sb.WriteString(fmt.Sprintf("%s %s%s%s %s\n",
			style.Render(vertical),
			lead,
			line,
			strings.Repeat(" ", padding),
			style.Render(vertical)))
	}

	sb.WriteString(style.Render(bottomLeft + strings.Repeat(horizontal, boxWidth-2) + bottomRight))
	return sb.String()
}

func (b *Box) getStyleAndPrefix() (lipgloss.Style, string) {
	switch b.messageType {
	case SuccessMessage:
		return successStyle, successPrefix
	case WarningMessage:
		return warningStyle, warningPrefix
	case ErrorMessage:
		return errorStyle, errorPrefix
	case QuestionMessage:
		return questionStyle, questionPrefix
	default:
		return infoStyle, infoPrefix
	}
}

// getTerminalWidth returns the terminal width or defaults to 80 if unable to detect.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minWidth+8 {
		return 80
	}
	return width
}

// wrapText wraps text to fit within the specified maximum width.
func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	currentLine := words[0]
	for _, word := range words[1:] {
		if lipgloss.Width(currentLine)+lipgloss.Width(word)+1 <= maxWidth {
			currentLine += " " + word
			continue
		}
		lines = append(lines, currentLine)
		currentLine = word
	}
	return append(lines, currentLine)
}
