package providers

import (
	"context"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

// RelevanceJudge decides whether a post is a genuine review of the keyword.
type RelevanceJudge interface {
	IsRelevant(ctx context.Context, keyword, title, text string) (bool, error)
}

// SentimentJudge splits a review into scored sentiment judgments.
type SentimentJudge interface {
	Judge(ctx context.Context, text, keyword, title string) (*entities.JudgmentResult, error)
}

// ScoreExplanationInput carries one ranked item into the explanation prompt.
type ScoreExplanationInput struct {
	Item       *entities.RankedCandidate
	IsFestival bool
	Today      string
}

// DistributionInput carries the classified distribution into the
// interpretation prompt.
type DistributionInput struct {
	Counts         []entities.LevelCount
	TotalSentences int
	Boundaries     entities.SatisfactionBoundaries
	AverageLevel   float64
}

// NarrativeProvider writes the human-readable parts of reports.
type NarrativeProvider interface {
	TrendReason(ctx context.Context, keyword string, series []entities.TrendPoint) (string, error)
	PraiseReason(ctx context.Context, keyword string, sentences []string) (string, error)
	ScoreExplanation(ctx context.Context, in ScoreExplanationInput) (string, error)
	ComparativeSummary(ctx context.Context, items []*entities.RankedCandidate, isFestival bool) (string, error)
	ComplaintSummary(ctx context.Context, sentences []string) (string, error)
	PositiveKeywords(ctx context.Context, pairs []entities.AspectPair) ([]entities.KeywordCount, error)
	DistributionInterpretation(ctx context.Context, in DistributionInput) (string, error)
}
