package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks yes/no questions on an input/output pair, normally the
// terminal's stdin and stdout
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// AutoApprove answers yes without asking
	AutoApprove bool
}

// NewPrompter creates a prompter
func NewPrompter(in io.Reader, out io.Writer, autoApprove bool) *Prompter {
	return &Prompter{In: in, Out: out, AutoApprove: autoApprove}
}

// ConfirmItems lists the items an action applies to and asks for confirmation.
// Only "y" and "yes" count as approval.
func (p *Prompter) ConfirmItems(action string, items []string) (bool, error) {
	if p.AutoApprove {
		return true, nil
	}

	box := NewBox(QuestionMessage, fmt.Sprintf("About to %s the following %d item(s):", action, len(items)))
	for _, item := range items {
		box.AddBullet(item)
	}
	fmt.Fprintln(p.Out, box.Render())
	fmt.Fprint(p.Out, "Continue? (yes/no): ")

	return p.readAnswer()
}

func (p *Prompter) readAnswer() (bool, error) {
	input, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return false, fmt.Errorf("failed to read user confirmation: %w", err)
	}

	input = strings.ToLower(strings.TrimSpace(input))
	return input == "yes" || input == "y", nil
}
