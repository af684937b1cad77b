package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProgressEvent is one progress update from an improve run.
type ProgressEvent struct {
	AttemptID     string    `json:"attemptId"`
	Phase         string    `json:"phase"` // "running" or "done"
	Iterations    int       `json:"iterations"`
	BestObjective float64   `json:"bestObjective"`
	Improved      bool      `json:"improved,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventBroadcaster manages SSE connections per attempt.
type EventBroadcaster struct {
	mu        sync.RWMutex
	clients   map[string]map[chan ProgressEvent]bool // attemptID -> set of client channels
	lastEvent map[string]ProgressEvent               // attemptID -> last event for new clients
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients:   make(map[string]map[chan ProgressEvent]bool),
		lastEvent: make(map[string]ProgressEvent),
	}
}

// Subscribe adds a client to receive events for an attempt.
func (eb *EventBroadcaster) Subscribe(attemptID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 10) // Buffered to prevent blocking

	if eb.clients[attemptID] == nil {
		eb.clients[attemptID] = make(map[chan ProgressEvent]bool)
	}
	eb.clients[attemptID][ch] = true

	// Send last event if available (for reconnecting clients)
	if lastEvent, ok := eb.lastEvent[attemptID]; ok {
		select {
		case ch <- lastEvent:
		default:
		}
	}

	slog.Debug("SSE client subscribed", "attemptID", attemptID, "total_clients", len(eb.clients[attemptID]))
	return ch
}

// Unsubscribe removes a client from receiving events.
func (eb *EventBroadcaster) Unsubscribe(attemptID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if clients, ok := eb.clients[attemptID]; ok {
		delete(clients, ch)
		close(ch)

		if len(clients) == 0 {
			delete(eb.clients, attemptID)
		}
	}

	slog.Debug("SSE client unsubscribed", "attemptID", attemptID)
}

// Broadcast sends an event to all subscribed clients for an attempt.
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.lastEvent[event.AttemptID] = event

	clients, ok := eb.clients[event.AttemptID]
	if !ok || len(clients) == 0 {
		return
	}

	for ch := range clients {
		select {
		case ch <- event:
		default:
			// Channel full, skip this client (prevents blocking)
			slog.Warn("SSE channel full, skipping event", "attemptID", event.AttemptID)
		}
	}
}

// Cleanup removes all clients and cached events for an attempt.
func (eb *EventBroadcaster) Cleanup(attemptID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if clients, ok := eb.clients[attemptID]; ok {
		for ch := range clients {
			close(ch)
		}
		delete(eb.clients, attemptID)
	}

	delete(eb.lastEvent, attemptID)
}

// handleAttemptStream handles SSE connections for improve progress on one
// attempt.
func (s *Server) handleAttemptStream(w http.ResponseWriter, r *http.Request, attemptID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := s.manager.Get(r.Context(), attemptID); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	eventChan := s.broadcaster.Subscribe(attemptID)
	defer s.broadcaster.Unsubscribe(attemptID, eventChan)

	flusher.Flush()

	// Ping keeps intermediaries from closing an idle stream.
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected", "attemptID", attemptID)
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes an event in SSE format.
func writeSSEEvent(w http.ResponseWriter, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
