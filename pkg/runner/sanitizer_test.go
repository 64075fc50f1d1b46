package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain choice", "single", "single"},
		{"trimmed", "  36 Months \r\n", "36 Months"},
		{"inner whitespace collapsed", "Active\t/   Passive", "Active / Passive"},
		{"escape sequence dropped", "\x1b[31myes\x1b[0m", "[31myes[0m"},
		{"null and bell dropped", "S\x00W1A\x07 1AA", "SW1A 1AA"},
		{"multi-line paste", "Ada\nLovelace", "Ada Lovelace"},
		{"unicode kept", "Zoë Ångström", "Zoë Ångström"},
		{"blank keeps current answer", " \t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_TooLarge(t *testing.T) {
	_, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := SanitizeInput("12345678901")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", got)

	t.Setenv(EnvMaxInputSize, "not-a-number")
	_, err = SanitizeInput("12345678901")
	assert.NoError(t, err)
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("\xbd\xb2\x3d\xbc")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
