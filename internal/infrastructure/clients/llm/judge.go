package llm

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

const maxJudgmentScore = 5.0

// Judge implements RelevanceJudge and SentimentJudge on a Completer.
type Judge struct {
	completer Completer
	metrics   *observability.Metrics
}

var (
	_ providers.RelevanceJudge = (*Judge)(nil)
	_ providers.SentimentJudge = (*Judge)(nil)
)

// NewJudge creates a judge. metrics may be nil.
func NewJudge(completer Completer, metrics *observability.Metrics) *Judge {
	return &Judge{completer: completer, metrics: metrics}
}

// IsRelevant asks whether the post is a genuine review of keyword. Any answer
// containing "예" counts as yes.
func (j *Judge) IsRelevant(ctx context.Context, keyword, title, text string) (bool, error) {
	answer, err := j.complete(ctx, "relevance", Request{
		System:      relevanceSystemPrompt,
		Prompt:      buildRelevancePrompt(keyword, title, text),
		Temperature: 0,
	})
	if err != nil {
		return false, err
	}
	return strings.Contains(answer, "예"), nil
}

type judgmentPayload struct {
	IsRelevant bool `json:"is_relevant"`
	Judgments  []struct {
		Sentence string  `json:"sentence"`
		Score    float64 `json:"score"`
		Verdict  string  `json:"verdict"`
	} `json:"final_judgments"`
	AspectPairs []entities.AspectPair `json:"aspect_sentiment_pairs"`
}

// Judge splits text into scored sentence judgments.
func (j *Judge) Judge(ctx context.Context, text, keyword, title string) (*entities.JudgmentResult, error) {
	raw, err := j.complete(ctx, "judgment", Request{
		System:      judgmentSystemPrompt,
		Prompt:      buildJudgmentPrompt(keyword, title, text),
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	var payload judgmentPayload
	if err := decodeJSON(raw, '{', '}', &payload); err != nil {
		return nil, err
	}
	return normalizeJudgment(payload), nil
}

// normalizeJudgment clamps scores to [-5, 5], drops empty sentences and
// pairs, and derives a missing verdict from the score sign.
func normalizeJudgment(p judgmentPayload) *entities.JudgmentResult {
	res := &entities.JudgmentResult{
		IsRelevant:  p.IsRelevant,
		Judgments:   make([]entities.ReviewJudgment, 0, len(p.Judgments)),
		AspectPairs: make([]entities.AspectPair, 0, len(p.AspectPairs)),
	}
	for _, raw := range p.Judgments {
		sentence := strings.TrimSpace(raw.Sentence)
		if sentence == "" {
			continue
		}
		score := math.Max(-maxJudgmentScore, math.Min(maxJudgmentScore, raw.Score))
		verdict := entities.Verdict(strings.ToLower(strings.TrimSpace(raw.Verdict)))
		if verdict != entities.VerdictPositive && verdict != entities.VerdictNegative {
			verdict = entities.VerdictPositive
			if score < 0 {
				verdict = entities.VerdictNegative
			}
		}
		res.Judgments = append(res.Judgments, entities.ReviewJudgment{Sentence: sentence, Score: score, Verdict: verdict})
	}
	for _, pair := range p.AspectPairs {
		if strings.TrimSpace(pair.Aspect) == "" || strings.TrimSpace(pair.Sentiment) == "" {
			continue
		}
		res.AspectPairs = append(res.AspectPairs, pair)
	}
	return res
}

func (j *Judge) complete(ctx context.Context, op string, req Request) (string, error) {
	return completeTraced(ctx, j.completer, j.metrics, op, req)
}

func completeTraced(ctx context.Context, c Completer, m *observability.Metrics, op string, req Request) (string, error) {
	ctx, span := observability.StartSpan(ctx, "llm."+op)
	defer span.End()

	start := time.Now()
	out, err := c.Complete(ctx, req)
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyResponse
	}
	observability.RecordCollaboratorCall(ctx, m, c.Name()+"."+op, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}
