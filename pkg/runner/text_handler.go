package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	interactive bool // stdin is a terminal; EOF from Ctrl+C must not end the pump
	Reader      *bufio.Reader
	Writer      io.Writer
	Renderer    ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:      bufio.NewReader(r),
		Writer:      w,
		interactive: isTerminal(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err == nil {
			continue
		}
		if err == io.EOF && !h.interactive {
			close(h.inputChan)
			return
		}
		h.inputChan <- inputResult{err: err}
		time.Sleep(50 * time.Millisecond)
	}
}

// FeedInput pushes a line as if it had been typed. Used by bridges and tests.
func (h *TextHandler) FeedInput(text string, err error) {
	h.initPump()
	h.inputChan <- inputResult{text: text, err: err}
}

func (h *TextHandler) Output(ctx context.Context, screen Screen) error {
	if screen.Markdown == "" {
		return nil
	}
	out := screen.Markdown
	if h.Renderer != nil {
		if rendered, err := h.Renderer(out); err == nil {
			out = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(out))
	return err
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}
