package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

// NearbySearcher finds records around a point.
type NearbySearcher interface {
	Search(ctx context.Context, q entities.NearbyQuery) (*entities.NearbyResult, error)
}

// NearbyHandler serves proximity search.
type NearbyHandler struct {
	searcher NearbySearcher
}

// NewNearbyHandler creates a new nearby handler
func NewNearbyHandler(searcher NearbySearcher) *NearbyHandler {
	return &NearbyHandler{searcher: searcher}
}

// Search handles POST /api/nearby/search. An unusable origin or radius
// yields an empty result rather than an error.
func (h *NearbyHandler) Search(w http.ResponseWriter, r *http.Request) {
	var q entities.NearbyQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
