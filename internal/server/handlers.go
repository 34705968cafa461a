package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"adforge/internal/creative"
	"adforge/internal/progress"
	"adforge/internal/pruning"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateResponse struct {
	AdSetID      string                 `json:"adsetId"`
	Count        int                    `json:"count"`
	Combinations []creative.Combination `json:"combinations"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	adsetID := r.PathValue("id")

	var req creative.SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	combos, err := s.generator.Generate(r.Context(), adsetID, req.Normalize())
	if err != nil {
		s.logger.Warn("generate failed", zap.String("adset", adsetID), zap.Error(err))
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, generateResponse{
		AdSetID:      adsetID,
		Count:        len(combos),
		Combinations: combos,
	})
}

func (s *Server) handleListCombinations(w http.ResponseWriter, r *http.Request) {
	adsetID := r.PathValue("id")

	combos, err := s.store.ListByAdSet(r.Context(), adsetID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if combos == nil {
		combos = []creative.Combination{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"adsetId":      adsetID,
		"count":        len(combos),
		"combinations": combos,
	})
}

// handlePrune runs the pruning pipeline and streams its events as SSE.
// The run is bound to the request context, so a dropped client stops
// the pipeline at the next item boundary.
func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	adsetID := r.PathValue("id")

	minScore := s.minScore
	if raw := r.URL.Query().Get("minScore"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 100 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "minScore must be an integer in [0,100]"})
			return
		}
		minScore = parsed
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	pipeline := pruning.New(s.store, s.store, s.oracle, pruning.WithItemTimeout(s.itemTO))
	ch := progress.NewChannel(s.eventBuf)

	pruneDone := make(chan error, 1)
	go func() {
		_, err := pipeline.Prune(r.Context(), adsetID, minScore, ch)
		pruneDone <- err
	}()

	for ev := range ch.Events() {
		if err := progress.WriteSSE(w, ev); err != nil {
			s.logger.Debug("sse client gone", zap.String("adset", adsetID), zap.Error(err))
			break
		}
		flusher.Flush()
	}

	// Drain whatever is still buffered so the pipeline never blocks on a
	// dead client; cancellation stops it at the next item boundary.
	for range ch.Events() {
	}

	if err := <-pruneDone; err != nil {
		s.logger.Warn("prune failed", zap.String("adset", adsetID), zap.Error(err))
	}
}

func (s *Server) handleDeleteCombination(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids must not be empty"})
		return
	}

	count, err := s.store.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"requested":    len(req.IDs),
		"deletedCount": count,
	})
}
