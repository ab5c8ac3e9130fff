package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/docask/internal/agent"
	"github.com/dgallion1/docask/internal/docstore"
	"github.com/dgallion1/docask/internal/provider"
)

type askRequest struct {
	Question    string             `json:"question"`
	ChatHistory []provider.Message `json:"chat_history"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	// Capture the snapshot before streaming starts; the whole turn runs
	// against this consistent generation even if an ingest lands mid-answer.
	snap, err := s.store.Snapshot()
	if errors.Is(err, docstore.ErrNoDocument) {
		jsonError(w, "no active document: ingest one first", http.StatusPreconditionFailed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := &ndjsonSink{enc: json.NewEncoder(w), flusher: flusher}

	turn, err := s.orchestrator.Ask(r.Context(), snap, agent.Request{
		Question: req.Question,
		History:  req.ChatHistory,
	}, sink)
	if err != nil {
		// Already surfaced to the stream as a terminal error event.
		s.log.Error("ask failed", "error", err)
		return
	}
	s.log.Info("ask completed",
		"state", turn.State,
		"retrieved", len(turn.Retrieved),
		"citations", len(turn.Citations),
	)
}

// ndjsonSink writes one JSON event per line, flushing after each so tokens
// reach the client as they are produced.
type ndjsonSink struct {
	enc     *json.Encoder
	flusher http.Flusher
}

func (s *ndjsonSink) Send(ev agent.Event) error {
	if err := s.enc.Encode(ev); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
