package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Event types published to session subscribers.
const (
	EventTransition = "transition"
	EventQuote      = "quote"
	EventReset      = "reset"
)

// Event is one server-sent event.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // session ID -> channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Publish encodes payload and broadcasts it to the session's subscribers.
func (sm *StreamManager) Publish(sessionID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "type", eventType, "error", err)
		return
	}
	sm.Broadcast(sessionID, Event{Type: eventType, Data: data})
}

func (sm *StreamManager) Broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[sessionID]
	if !ok {
		return
	}
	sm.logger.Debug("SSE: broadcasting", "session_id", sessionID, "type", ev.Type, "subscribers", len(subs))
	for ch := range subs {
		select {
		case ch <- ev:
		default:
			// Slow client: drop rather than block the request.
			sm.logger.Warn("SSE: client buffer full, dropping event", "session_id", sessionID)
		}
	}
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// ?watch=transition,quote limits the stream to the listed event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.Service.Resume(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	watch := make(map[string]bool)
	if list := r.URL.Query().Get("watch"); list != "" {
		for _, t := range strings.Split(list, ",") {
			watch[strings.TrimSpace(t)] = true
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[ev.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
			flusher.Flush()
		}
	}
}
