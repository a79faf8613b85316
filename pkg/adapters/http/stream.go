package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/session"
	"github.com/go-chi/chi/v5"
)

// StreamManager fans progress of each run out to its SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Progress]struct{} // RunID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan domain.Progress]struct{}),
	}
}

func (sm *StreamManager) Subscribe(runID string) (<-chan domain.Progress, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan domain.Progress, 10)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan domain.Progress]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[runID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, runID)
			}
		}
	}
}

// Broadcast never blocks.
func (sm *StreamManager) Broadcast(runID string, p domain.Progress) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[runID] {
		select {
		case ch <- p:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping progress", "run_id", runID, "loop", p.LoopIndex)
		}
	}
}

// Hooks publishes every completed loop to the run's subscribers.
func (sm *StreamManager) Hooks() domain.Hooks {
	return domain.Hooks{
		OnLoop: func(_ context.Context, e *domain.LoopEvent) {
			sm.Broadcast(e.RunID, e.Progress)
		},
	}
}

// SubscribeEvents handles the GET /cascades/{id}/events request (SSE).
// It emits "progress" events while the run is live and a single "final"
// event carrying the run's status before closing.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")

	// Subscribe before looking the run up so no loop falls in between.
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	run, live := s.Manager.Get(id)
	if !live {
		st, err := s.Manager.Status(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		startSSE(w)
		writeEvent(w, "final", st)
		flusher.Flush()
		return
	}

	startSSE(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	// The snapshot and the broadcast can both carry the same loop: keep loop indices increasing.
	last := -1
	progress := func(p domain.Progress) {
		if p.LoopIndex <= last {
			return
		}
		last = p.LoopIndex
		writeEvent(w, "progress", p)
	}
	if p, ok := run.Progress(); ok {
		progress(p)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "run_id", id)
			return
		case p := <-ch:
			progress(p)
			flusher.Flush()
		case <-run.Done():
			// Loop hooks fire before Done closes, so whatever is buffered precedes the final event.
			for drained := false; !drained; {
				select {
				case p := <-ch:
					progress(p)
				default:
					drained = true
				}
			}
			result, err := run.Wait()
			st := &session.Status{ID: id, State: session.StateDone, Result: result}
			if err != nil {
				st.Error = err.Error()
			}
			writeEvent(w, "final", st)
			flusher.Flush()
			return
		}
	}
}

func startSSE(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("SSE: encode failed", "event", event, "err", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
