package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// AgentServer is an in-process fake of the agent service.
type AgentServer struct {
	*httptest.Server

	// Handlers may be swapped by tests to inject failures. They default to
	// a well-behaved service.
	CreateSessionHandler http.HandlerFunc
	QueryHandler         http.HandlerFunc

	mu       sync.Mutex
	sessions int
	requests []map[string]any
}

func NewAgentServer() *AgentServer {
	s := &AgentServer{}
	s.CreateSessionHandler = s.defaultCreateSession
	s.QueryHandler = s.defaultQuery

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/agent/create_session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.CreateSessionHandler(w, r)
	})
	mux.HandleFunc("/api/v1/agent/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, body)
		s.mu.Unlock()
		s.QueryHandler(w, r)
	})

	s.Server = httptest.NewServer(mux)
	return s
}

func (s *AgentServer) defaultCreateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.sessions++
	id := fmt.Sprintf("srv-session-%d", s.sessions)
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

func (s *AgentServer) defaultQuery(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	last := s.requests[len(s.requests)-1]
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, map[string]string{"response": fmt.Sprintf("answer to %v", last["query"])})
}

// QueryRequests returns the decoded bodies of every query request.
func (s *AgentServer) QueryRequests() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.requests))
	copy(out, s.requests)
	return out
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
