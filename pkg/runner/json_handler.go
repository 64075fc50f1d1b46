package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder

	lines     chan inputResult
	startOnce sync.Once
}

// systemMessage is the JSON form of SystemOutput.
type systemMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, screen Screen) error {
	return h.Encoder.Encode(screen)
}

func (h *JSONHandler) pump() {
	defer close(h.lines)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.lines <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.lines <- inputResult{err: err}
			}
			return
		}
	}
}

// Input reads one line. A JSON string is unquoted; anything else is taken verbatim.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	h.startOnce.Do(func() {
		h.lines = make(chan inputResult)
		go h.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		text := strings.TrimSpace(res.text)
		var val string
		if err := json.Unmarshal([]byte(text), &val); err == nil {
			text = val
		}
		return SanitizeInput(text)
	}
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(systemMessage{Kind: "system", Message: msg})
}
