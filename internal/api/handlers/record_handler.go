package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

const maxSearchLimit = 50

// RecordLookup serves single records and title search.
type RecordLookup interface {
	Festival(ctx context.Context, title string) (*entities.Festival, error)
	Facility(ctx context.Context, title string) (*entities.Facility, error)
	Course(ctx context.Context, title string) (*entities.Course, error)
	Search(ctx context.Context, query string, kind entities.CandidateKind, limit int) ([]entities.RecordHit, error)
}

// RecordHandler serves record detail and search endpoints.
type RecordHandler struct {
	lookup RecordLookup
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(lookup RecordLookup) *RecordHandler {
	return &RecordHandler{lookup: lookup}
}

// GetFestival handles GET /api/festivals/{name}
func (h *RecordHandler) GetFestival(w http.ResponseWriter, r *http.Request) {
	respondWithRecord(w, r, "name", h.lookup.Festival)
}

// GetFacility handles GET /api/facilities/{title}
func (h *RecordHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	respondWithRecord(w, r, "title", h.lookup.Facility)
}

// GetCourse handles GET /api/courses/{title}
func (h *RecordHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	respondWithRecord(w, r, "title", h.lookup.Course)
}

func respondWithRecord[T any](w http.ResponseWriter, r *http.Request, param string, get func(context.Context, string) (T, error)) {
	title := strings.TrimSpace(r.PathValue(param))
	if title == "" {
		respondWithError(w, http.StatusBadRequest, param+" is required")
		return
	}
	record, err := get(r.Context(), title)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

type searchResponse struct {
	Hits  []entities.RecordHit `json:"hits"`
	Count int                  `json:"count"`
}

// Search handles GET /api/search?q=&kind=&limit=
func (h *RecordHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10, 1, maxSearchLimit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	kind := entities.CandidateKind(strings.TrimSpace(r.URL.Query().Get("kind")))

	hits, err := h.lookup.Search(r.Context(), query, kind, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if hits == nil {
		hits = []entities.RecordHit{}
	}
	respondWithJSON(w, http.StatusOK, searchResponse{Hits: hits, Count: len(hits)})
}
