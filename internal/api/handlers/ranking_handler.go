package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ericyum/tour-agent-backend/internal/application/services"
	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

const (
	defaultReviewCount = 10
	maxReviewCount     = 50
	defaultTopN        = 3
	maxTopN            = 10
)

// CandidateLookup resolves request titles into candidates.
type CandidateLookup interface {
	FestivalsByTitles(ctx context.Context, titles []string) ([]*entities.Festival, error)
	Places(ctx context.Context, refs []services.PlaceRef, isCourse bool) ([]entities.Candidate, error)
}

// Ranker scores and orders candidates.
type Ranker interface {
	RankFestivals(ctx context.Context, festivals []*entities.Festival, reviewCount, topN int) *entities.RankingResult
	RankPlaces(ctx context.Context, places []entities.Candidate, reviewCount, topN int, isCourse bool) *entities.RankingResult
}

// RankingHandler serves the festival and place ranking endpoints.
type RankingHandler struct {
	lookup CandidateLookup
	ranker Ranker
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(lookup CandidateLookup, ranker Ranker) *RankingHandler {
	return &RankingHandler{lookup: lookup, ranker: ranker}
}

type festivalRankingRequest struct {
	Festivals  []string `json:"festivals"`
	NumReviews *int     `json:"num_reviews"`
	TopN       *int     `json:"top_n"`
}

type placeRankingRequest struct {
	Places     []services.PlaceRef `json:"places"`
	NumReviews *int                `json:"num_reviews"`
	TopN       *int                `json:"top_n"`
	IsCourse   bool                `json:"is_course"`
}

func rankingBounds(numReviews, topN *int) (int, int, error) {
	reviews, err := boundedInt("num_reviews", numReviews, defaultReviewCount, 1, maxReviewCount)
	if err != nil {
		return 0, 0, err
	}
	n, err := boundedInt("top_n", topN, defaultTopN, 1, maxTopN)
	if err != nil {
		return 0, 0, err
	}
	return reviews, n, nil
}

// RankFestivals handles POST /api/festivals/ranking
func (h *RankingHandler) RankFestivals(w http.ResponseWriter, r *http.Request) {
	var req festivalRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	reviews, topN, err := rankingBounds(req.NumReviews, req.TopN)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	festivals, err := h.lookup.FestivalsByTitles(r.Context(), req.Festivals)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if len(req.Festivals) > 0 && len(festivals) == 0 {
		respondWithError(w, http.StatusNotFound, "선택한 축제를 찾을 수 없습니다")
		return
	}

	respondWithJSON(w, http.StatusOK, h.ranker.RankFestivals(r.Context(), festivals, reviews, topN))
}

// RankPlaces handles POST /api/places/ranking
func (h *RankingHandler) RankPlaces(w http.ResponseWriter, r *http.Request) {
	var req placeRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	reviews, topN, err := rankingBounds(req.NumReviews, req.TopN)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	places, err := h.lookup.Places(r.Context(), req.Places, req.IsCourse)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if len(req.Places) > 0 && len(places) == 0 {
		respondWithError(w, http.StatusNotFound, "선택한 장소를 찾을 수 없습니다")
		return
	}

	respondWithJSON(w, http.StatusOK, h.ranker.RankPlaces(r.Context(), places, reviews, topN, req.IsCourse))
}
