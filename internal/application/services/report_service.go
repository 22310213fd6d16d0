package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

const (
	NoScoredItemsMessage    = "스코어링된 항목이 없습니다."
	summaryErrorText        = "최종 분석 요약 생성 중 오류가 발생했습니다."
	explanationErrorText    = "점수 설명 생성 중 오류가 발생했습니다."
	reportHeading           = "## 🏆 최종 순위 분석"
	reportSeparator         = "---"
	DefaultPlaceholderImage = "https://via.placeholder.com/300x200.png?text=No+Image"
)

var medals = []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}

// ReportService assembles the markdown ranking report.
type ReportService struct {
	narratives       providers.NarrativeProvider
	placeholderImage string
	timeout          time.Duration
	now              func() time.Time
}

// NewReportService creates a new report service
func NewReportService(narratives providers.NarrativeProvider, placeholderImage string, timeout time.Duration) *ReportService {
	if placeholderImage == "" {
		placeholderImage = DefaultPlaceholderImage
	}
	return &ReportService{
		narratives:       narratives,
		placeholderImage: placeholderImage,
		timeout:          timeout,
		now:              time.Now,
	}
}

// WithClock replaces the clock used for the date in explanations.
func (r *ReportService) WithClock(now func() time.Time) *ReportService {
	r.now = now
	return r
}

// Build renders the report for the first topN of items, which must already
// be sorted. Narrative failures fall back to fixed text.
func (r *ReportService) Build(ctx context.Context, items []*entities.RankedCandidate, topN int, isFestival bool) string {
	if topN > len(items) {
		topN = len(items)
	}
	if topN < 0 {
		topN = 0
	}
	top := items[:topN]

	scored := false
	for _, item := range top {
		if item.Scores.RankingScore > 0 {
			scored = true
			break
		}
	}
	if !scored {
		return NoScoredItemsMessage
	}

	var summary string
	explanations := make([]string, len(top))
	today := r.now().Format("2006년 01월 02일")

	var g errgroup.Group
	g.Go(func() error {
		summary = r.comparativeSummary(ctx, top, isFestival)
		return nil
	})
	for i, item := range top {
		g.Go(func() error {
			explanations[i] = r.explanation(ctx, item, isFestival, today)
			return nil
		})
	}
	_ = g.Wait()

	parts := []string{reportHeading + "\n" + summary, reportSeparator}
	for i, item := range top {
		rank := fmt.Sprintf("%d위", i+1)
		indicator := rank
		if i < len(medals) {
			indicator = medals[i]
		}
		title := item.Title()
		image := item.Candidate.Base().FirstImage
		if image == "" {
			image = r.placeholderImage
		}
		parts = append(parts,
			fmt.Sprintf("### %s %s: %s (종합 점수: %s)", indicator, rank, title, FormatScore(item.Scores.RankingScore)),
			fmt.Sprintf("![%s](%s)\n", title, image),
			explanations[i],
			reportSeparator,
		)
	}
	return strings.Join(parts, "\n\n")
}

// FormatScore prints a score with at least one decimal place.
func FormatScore(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *ReportService) comparativeSummary(ctx context.Context, top []*entities.RankedCandidate, isFestival bool) string {
	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	summary, err := r.narratives.ComparativeSummary(callCtx, top, isFestival)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("comparative summary failed")
		return summaryErrorText
	}
	return summary
}

func (r *ReportService) explanation(ctx context.Context, item *entities.RankedCandidate, isFestival bool, today string) string {
	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	text, err := r.narratives.ScoreExplanation(callCtx, providers.ScoreExplanationInput{
		Item:       item,
		IsFestival: isFestival,
		Today:      today,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("title", item.Title()).Msg("score explanation failed")
		return explanationErrorText
	}
	return text
}
