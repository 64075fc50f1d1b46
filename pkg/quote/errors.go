package quote

import (
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the quote API.
type APIError struct {
	Status  int
	Message string
	Issues  []string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Issues) > 0 {
		msg = strings.Join(e.Issues, "; ")
	}
	if msg == "" {
		return fmt.Sprintf("API error: %d", e.Status)
	}
	return fmt.Sprintf("API error: %d %s", e.Status, msg)
}
