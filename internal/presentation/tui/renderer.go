package tui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column markdown is wrapped at.
const DefaultWordWrap = 100

// NewRenderer returns a function that renders markdown for the terminal.
// The style follows the terminal background. If the renderer cannot be built,
// markdown is returned as is.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return func(md string) (string, error) { return md, nil }
	}
	return r.Render
}
