// Package apitest provides an in-process fake of the telemetry server for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Server is a fake telemetry server speaking the SignalR long-polling subset
// the dashboard uses.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	snapshot  json.RawMessage
	skins     []map[string]any
	pushes    chan json.RawMessage
	requests  map[string]int
	failures  map[string]int
	tokens    int
	pollDelay time.Duration
}

// NewServer starts a fake server serving snapshot. It is closed on test cleanup.
func NewServer(t testing.TB, snapshot any) *Server {
	t.Helper()

	s := &Server{
		pushes:    make(chan json.RawMessage, 16),
		requests:  make(map[string]int),
		failures:  make(map[string]int),
		pollDelay: 100 * time.Millisecond,
		skins: []map[string]any{
			{"name": "t-dashboard-4x", "title": "T Dashboard 4x", "author": "tdashboard", "width": 2048, "height": 1152},
		},
	}
	s.SetSnapshot(snapshot)
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetSnapshot replaces the document returned by RequestData.
func (s *Server) SetSnapshot(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("apitest: marshal snapshot: %v", err))
	}
	s.mu.Lock()
	s.snapshot = data
	s.mu.Unlock()
}

// Push queues v for delivery on the next poll.
func (s *Server) Push(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("apitest: marshal push: %v", err))
	}
	s.pushes <- data
}

// FailNext makes the next n requests to path answer 500.
func (s *Server) FailNext(path string, n int) {
	s.mu.Lock()
	s.failures[path] += n
	s.mu.Unlock()
}

// Requests returns how many requests hit path.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	s.mu.Lock()
	s.requests[path]++
	fail := s.failures[path] > 0
	if fail {
		s.failures[path]--
	}
	s.mu.Unlock()

	if fail {
		http.Error(w, "injected failure", http.StatusInternalServerError)
		return
	}

	switch {
	case path == "/config.json":
		s.writeJSON(w, map[string]any{"skins": s.skins})
	case path == "/signalr/negotiate":
		s.mu.Lock()
		s.tokens++
		token := fmt.Sprint(s.tokens)
		s.mu.Unlock()
		s.writeJSON(w, map[string]any{
			"Url":             "/signalr",
			"ConnectionToken": token,
			"ProtocolVersion": "1.5",
		})
	case path == "/signalr/connect":
		s.writeJSON(w, map[string]any{"C": "s-0,1", "S": 1, "M": []any{}})
	case path == "/signalr/start":
		s.writeJSON(w, map[string]string{"Response": "started"})
	case path == "/signalr/ping":
		s.writeJSON(w, map[string]string{"Response": "pong"})
	case path == "/signalr/abort":
		w.WriteHeader(http.StatusOK)
	case path == "/signalr/send":
		s.send(w, r)
	case path == "/signalr/poll":
		s.poll(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("connectionToken") == "" {
		http.Error(w, "missing connection token", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var inv struct {
		H string `json:"H"`
		M string `json:"M"`
		I string `json:"I"`
	}
	if err := json.Unmarshal([]byte(r.PostForm.Get("data")), &inv); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	s.writeJSON(w, map[string]any{"I": inv.I, "R": snap})
}

func (s *Server) poll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	messageID := r.PostForm.Get("messageId")

	select {
	case data := <-s.pushes:
		s.writeJSON(w, map[string]any{
			"C": messageID + "1",
			"M": []any{map[string]any{
				"H": "ets2telemetryhub",
				"M": "UpdateData",
				"A": []string{string(data)},
			}},
		})
	case <-time.After(s.pollDelay):
		s.writeJSON(w, map[string]any{})
	case <-r.Context().Done():
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(v)
}
