package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pogen/internal/history"
)

// handleListHistory lists recent conversions, newest first.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.History()
	if store == nil {
		jsonError(w, "history is not enabled", http.StatusNotFound)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := store.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	// Field values are bulky; the list view keeps the summary columns.
	for i := range records {
		records[i].Fields = nil
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"conversions": records})
}

// handleGetHistory returns one conversion record with its field values.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.History()
	if store == nil {
		jsonError(w, "history is not enabled", http.StatusNotFound)
		return
	}

	rec, err := store.Get(r.Context(), chi.URLParam(r, "convID"))
	if errors.Is(err, history.ErrNotFound) {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load conversion: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// handleDeleteHistory removes one conversion record.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.History()
	if store == nil {
		jsonError(w, "history is not enabled", http.StatusNotFound)
		return
	}

	err := store.Delete(r.Context(), chi.URLParam(r, "convID"))
	if errors.Is(err, history.ErrNotFound) {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete conversion: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": true})
}
