package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/session"
)

// SessionEvent is broadcast to /events subscribers of a session after every change.
type SessionEvent struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Graph     graph.Document `json:"graph"`
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.Logger.Error("ListSessions failed", "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, s.Logger, http.StatusOK, ids)
}

// GetSession handles the GET /sessions/{sessionId} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	g, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, graph.ToDocument(g))
}

// StartSession handles the PUT /sessions/{sessionId} request.
// An existing session is returned unchanged.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	data, format, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	var initial *graph.Graph
	if len(bytes.TrimSpace(data)) > 0 {
		if initial, ok = s.parseGraph(w, data, format); !ok {
			return
		}
	}

	g, err := s.Sessions.LoadOrStart(r.Context(), id, initial)
	if err != nil {
		s.Logger.Error("StartSession failed", "session_id", id, "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	s.publish("start", id, g)
	writeJSON(w, s.Logger, http.StatusOK, graph.ToDocument(g))
}

// DeleteSession handles the DELETE /sessions/{sessionId} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditSession handles the POST /sessions/{sessionId}/edits request.
// The edits are applied as a single undo step.
func (s *Server) EditSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var edits []session.Edit
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.Logger.Warn("EditSession: invalid request body", "err", err)
		return
	}
	fn, err := session.Edits(s.Service.Resolver(), edits...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	g, err := s.Sessions.Apply(r.Context(), id, fn)
	if err != nil {
		s.Logger.Debug("EditSession rejected", "session_id", id, "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	s.publish("edit", id, g)
	writeJSON(w, s.Logger, http.StatusOK, graph.ToDocument(g))
}

// UndoSession handles the POST /sessions/{sessionId}/undo request.
func (s *Server) UndoSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	g, err := s.Sessions.Undo(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.publish("undo", id, g)
	writeJSON(w, s.Logger, http.StatusOK, graph.ToDocument(g))
}

func (s *Server) publish(kind, id string, g *graph.Graph) {
	payload, err := json.Marshal(SessionEvent{Type: kind, SessionID: id, Graph: graph.ToDocument(g)})
	if err != nil {
		s.Logger.Warn("session event encode failed", "session_id", id, "err", err)
		return
	}
	s.Streams.Broadcast(id, string(payload))
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	if err := bindPath(r, "sessionId", &id); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return id, true
}
