package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Answers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"yes", "yes\n", true},
		{"y uppercase", "Y\n", true},
		{"no", "no\n", false},
		{"empty line", "\n", false},
		{"no trailing newline", "y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, false)

			ok, err := p.ConfirmItems("run with sudo", []string{"apt"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.Contains(t, out.String(), "Continue? (yes/no): ")
		})
	}
}

func TestPrompter_ClosedInput(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{}, false)

	ok, err := p.ConfirmItems("run with sudo", []string{"apt"})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPrompter_AutoApprove(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out, true)

	ok, err := p.ConfirmItems("run with sudo", []string{"apt", "snap"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}

func TestPrompter_ConfirmItems(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("yes\n"), &out, false)

	ok, err := p.ConfirmItems("run with sudo", []string{"apt", "snap"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "About to run with sudo the following 2 item(s):")
	assert.Contains(t, out.String(), "• apt")
	assert.Contains(t, out.String(), "• snap")
}
