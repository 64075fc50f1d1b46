package runner

import (
	"context"
)

// ScreenKind tells the handler what a screen asks for.
type ScreenKind string

const (
	ScreenQuestion  ScreenKind = "question"
	ScreenPostcode  ScreenKind = "postcode"
	ScreenAddresses ScreenKind = "addresses"
	ScreenQuote     ScreenKind = "quote"
	ScreenContact   ScreenKind = "contact"
	ScreenLead      ScreenKind = "lead"
)

// Screen is one thing shown to the user. Markdown is the rendered form,
// Data the structured payload for machine consumers.
type Screen struct {
	Kind       ScreenKind `json:"kind"`
	SessionID  string     `json:"session_id"`
	Markdown   string     `json:"markdown,omitempty"`
	Data       any        `json:"data,omitempty"`
	NeedsInput bool       `json:"needs_input"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a screen to the user.
	Output(ctx context.Context, screen Screen) error

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. validation errors, status updates).
	// This is distinct from content rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer turns markdown into terminal output.
type ContentRenderer func(markdown string) (string, error)
