package llm

import (
	"context"
	"strings"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

// Narrator writes report prose with a Completer.
type Narrator struct {
	completer Completer
	metrics   *observability.Metrics
}

var _ providers.NarrativeProvider = (*Narrator)(nil)

// NewNarrator creates a narrator. metrics may be nil.
func NewNarrator(completer Completer, metrics *observability.Metrics) *Narrator {
	return &Narrator{completer: completer, metrics: metrics}
}

func (n *Narrator) text(ctx context.Context, op, prompt string, temperature float32) (string, error) {
	return completeTraced(ctx, n.completer, n.metrics, op, Request{Prompt: prompt, Temperature: temperature})
}

func (n *Narrator) TrendReason(ctx context.Context, keyword string, series []entities.TrendPoint) (string, error) {
	return n.text(ctx, "trend_reason", buildTrendReasonPrompt(keyword, series), 0.2)
}

func (n *Narrator) PraiseReason(ctx context.Context, keyword string, sentences []string) (string, error) {
	return n.text(ctx, "praise_reason", buildPraiseReasonPrompt(keyword, sentences), 0.2)
}

func (n *Narrator) ScoreExplanation(ctx context.Context, in providers.ScoreExplanationInput) (string, error) {
	return n.text(ctx, "score_explanation", buildScoreExplanationPrompt(in), 0.3)
}

func (n *Narrator) ComparativeSummary(ctx context.Context, items []*entities.RankedCandidate, isFestival bool) (string, error) {
	return n.text(ctx, "comparative_summary", buildComparativeSummaryPrompt(items, isFestival), 0.3)
}

func (n *Narrator) ComplaintSummary(ctx context.Context, sentences []string) (string, error) {
	return n.text(ctx, "complaint_summary", buildComplaintSummaryPrompt(sentences), 0.1)
}

// PositiveKeywords groups positive aspect pairs into counted phrases.
// Entries with an empty keyword or a non-positive count are dropped.
func (n *Narrator) PositiveKeywords(ctx context.Context, pairs []entities.AspectPair) ([]entities.KeywordCount, error) {
	raw, err := completeTraced(ctx, n.completer, n.metrics, "positive_keywords", Request{
		Prompt:      buildPositiveKeywordsPrompt(pairs),
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	var parsed []entities.KeywordCount
	if err := decodeJSON(raw, '[', ']', &parsed); err != nil {
		return nil, err
	}
	out := parsed[:0]
	for _, k := range parsed {
		k.Keyword = strings.TrimSpace(k.Keyword)
		if k.Keyword == "" || k.Count <= 0 {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

// DistributionInterpretation returns markdown, unwrapped from a ```markdown
// fence when the model adds one.
func (n *Narrator) DistributionInterpretation(ctx context.Context, in providers.DistributionInput) (string, error) {
	raw, err := n.text(ctx, "distribution", buildDistributionPrompt(in), 0.1)
	if err != nil {
		return "", err
	}
	return unwrapMarkdown(raw), nil
}
