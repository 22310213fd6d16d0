package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

// SentimentAnalyzer builds the satisfaction distribution of a topic.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, topic string, reviewCount int) *entities.SentimentAnalysis
}

// SentimentHandler serves festival sentiment analysis.
type SentimentHandler struct {
	analyzer SentimentAnalyzer
}

// NewSentimentHandler creates a new sentiment handler
func NewSentimentHandler(analyzer SentimentAnalyzer) *SentimentHandler {
	return &SentimentHandler{analyzer: analyzer}
}

// GetSentiment handles GET /api/festivals/{name}/sentiment
func (h *SentimentHandler) GetSentiment(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "festival name is required")
		return
	}
	reviews, err := intQuery(r, "num_reviews", defaultReviewCount, 1, maxReviewCount)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.analyzer.Analyze(r.Context(), name, reviews))
}
