package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/database"
	"github.com/coursekit/go-media-search/models"
	"github.com/coursekit/go-media-search/queue"
	"github.com/coursekit/go-media-search/search"
)

type apiHandlers struct {
	tasks  *queue.TaskQueue
	store  *database.Store
	engine *search.Engine
}

// ingestMediaRecord enqueues an ingestion task and returns immediately.
// Ingestion is fire-and-forget: a job failure is only visible in the log,
// never through this endpoint.
func (h *apiHandlers) ingestMediaRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid media record id", http.StatusBadRequest)
		return
	}

	priority := 0
	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid priority", http.StatusBadRequest)
			return
		}
	}

	h.tasks.Enqueue(queue.Task{
		Kind:          queue.TaskKindIngestMediaRecord,
		MediaRecordID: id,
		Priority:      priority,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"message":       "ingestion enqueued",
		"mediaRecordId": id.String(),
	})
}

// deleteMediaRecord synchronously removes all embedding rows for the record
// from both tables. Idempotent: deleting an unknown id succeeds.
func (h *apiHandlers) deleteMediaRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid media record id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteByMediaRecord(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete entries: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	Query     string      `json:"query"`
	Count     int         `json:"count"`
	Whitelist []uuid.UUID `json:"whitelist"`
	Blacklist []uuid.UUID `json:"blacklist"`
}

func (h *apiHandlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	hits, err := h.engine.Search(r.Context(), req.Query, req.Count, req.Whitelist, req.Blacklist)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if hits == nil {
		hits = []models.SearchHit{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": hits})
}
