package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

const (
	complaintErrorText      = "부정적 의견을 요약하는 데 실패했습니다."
	noSentencesText         = "분석할 문장이 없습니다."
	distributionErrorText   = "자동 분석 생성 중 오류가 발생했습니다."
	maxComplaintSentences   = 50
	neutralAverageLevel     = 3.0
	noValidReviewsMsgFormat = "'%s'에 대한 유효한 후기 블로그를 찾지 못했습니다."
)

// SentimentAnalysisService builds the satisfaction distribution of a topic
// from its blog reviews.
type SentimentAnalysisService struct {
	acquisition *ReviewAcquisitionService
	judge       providers.SentimentJudge
	classifier  *SatisfactionClassifier
	narratives  providers.NarrativeProvider
	timeout     time.Duration
}

// NewSentimentAnalysisService creates a new sentiment analysis service
func NewSentimentAnalysisService(
	acquisition *ReviewAcquisitionService,
	judge providers.SentimentJudge,
	classifier *SatisfactionClassifier,
	narratives providers.NarrativeProvider,
	narrativeTimeout time.Duration,
) *SentimentAnalysisService {
	return &SentimentAnalysisService{
		acquisition: acquisition,
		judge:       judge,
		classifier:  classifier,
		narratives:  narratives,
		timeout:     narrativeTimeout,
	}
}

// Analyze acquires up to reviewCount judged reviews for topic and
// classifies every judged sentence. A topic without any acceptable review
// yields an empty analysis.
func (s *SentimentAnalysisService) Analyze(ctx context.Context, topic string, reviewCount int) *entities.SentimentAnalysis {
	runID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, "SentimentAnalysisService.Analyze")
	defer span.End()

	out := &entities.SentimentAnalysis{
		RunID:            runID,
		Topic:            topic,
		PositiveKeywords: []entities.KeywordCount{},
	}

	res := s.acquisition.Acquire(ctx, topic, reviewCount, JudgmentGate(s.judge))
	if len(res.Reviews) == 0 {
		out.Empty = true
		out.Message = fmt.Sprintf(noValidReviewsMsgFormat, topic)
		return out
	}

	var scores []float64
	var pairs []entities.AspectPair
	for _, review := range res.Reviews {
		for _, j := range review.Judgment.Judgments {
			scores = append(scores, j.Score)
		}
		pairs = append(pairs, review.Judgment.AspectPairs...)
	}

	classification := s.classifier.Classify(scores)
	out.Classification = classification
	out.TotalScoreCount = len(scores)
	out.OutlierCount = len(classification.Outliers)
	out.AspectPairs = pairs

	var allLevels []int
	var negatives []string
	for _, review := range res.Reviews {
		blog := entities.BlogSentiment{
			Title:    review.Title,
			Link:     review.Link,
			PostDate: review.PostDate,
		}
		levels := make([]int, 0, len(review.Judgment.Judgments))
		for _, j := range review.Judgment.Judgments {
			j.Level = classification.LevelFor(j.Score)
			levels = append(levels, j.Level)
			if j.Verdict == entities.VerdictPositive {
				blog.PositiveCount++
			} else {
				blog.NegativeCount++
				negatives = append(negatives, j.Sentence)
			}
			blog.Judgments = append(blog.Judgments, j)
		}
		blog.SentenceCount = len(levels)
		blog.AverageLevel = averageLevel(levels)
		if total := blog.PositiveCount + blog.NegativeCount; total > 0 {
			blog.PositivePercentage = round1(float64(blog.PositiveCount) / float64(total) * 100)
			blog.NegativePercentage = round1(float64(blog.NegativeCount) / float64(total) * 100)
		}
		out.PositiveTotal += blog.PositiveCount
		out.NegativeTotal += blog.NegativeCount
		allLevels = append(allLevels, levels...)
		out.Blogs = append(out.Blogs, blog)
	}

	out.AverageLevel = averageLevel(allLevels)
	out.LevelCounts = LevelCounts(allLevels)
	out.OverallSummary = fmt.Sprintf(
		"- **총 분석 블로그**: %d개\n- **전체 평균 만족도**: %.2f / 5.0 점\n- **긍정 문장 수**: %d개\n- **부정 문장 수**: %d개",
		len(out.Blogs), out.AverageLevel, out.PositiveTotal, out.NegativeTotal,
	)

	var g errgroup.Group
	g.Go(func() error {
		out.NegativeSummary = s.complaintSummary(ctx, negatives)
		return nil
	})
	g.Go(func() error {
		out.PositiveKeywords = s.positiveKeywords(ctx, pairs)
		return nil
	})
	g.Go(func() error {
		out.DistributionSummary = s.distribution(ctx, classification, out.LevelCounts, len(allLevels), out.AverageLevel)
		return nil
	})
	_ = g.Wait()

	observability.LoggerFromContext(ctx).Info().
		Str("run_id", runID).
		Str("topic", topic).
		Int("blogs", len(out.Blogs)).
		Int("sentences", len(scores)).
		Int("outliers", out.OutlierCount).
		Str("acquisition_state", res.State.String()).
		Msg("sentiment analysis completed")

	return out
}

func averageLevel(levels []int) float64 {
	if len(levels) == 0 {
		return neutralAverageLevel
	}
	sum := 0
	for _, l := range levels {
		sum += l
	}
	return float64(sum) / float64(len(levels))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComplaintSentences deduplicates negative sentences, longest first, and
// keeps at most 50.
func ComplaintSentences(sentences []string) []string {
	seen := make(map[string]struct{}, len(sentences))
	unique := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(unique[i]), utf8.RuneCountInString(unique[j])
		if li != lj {
			return li > lj
		}
		return unique[i] < unique[j]
	})
	if len(unique) > maxComplaintSentences {
		unique = unique[:maxComplaintSentences]
	}
	return unique
}

func (s *SentimentAnalysisService) complaintSummary(ctx context.Context, negatives []string) string {
	sentences := ComplaintSentences(negatives)
	if len(sentences) == 0 {
		return ""
	}
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	summary, err := s.narratives.ComplaintSummary(callCtx, sentences)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("complaint summary failed")
		return complaintErrorText
	}
	return summary
}

func (s *SentimentAnalysisService) positiveKeywords(ctx context.Context, pairs []entities.AspectPair) []entities.KeywordCount {
	if len(pairs) == 0 {
		return []entities.KeywordCount{}
	}
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	keywords, err := s.narratives.PositiveKeywords(callCtx, pairs)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("positive keyword grouping failed")
		return []entities.KeywordCount{}
	}
	if keywords == nil {
		return []entities.KeywordCount{}
	}
	sort.SliceStable(keywords, func(i, j int) bool { return keywords[i].Count > keywords[j].Count })
	return keywords
}

func (s *SentimentAnalysisService) distribution(ctx context.Context, c *entities.Classification, counts []entities.LevelCount, total int, avg float64) string {
	if total == 0 {
		return noSentencesText
	}
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.narratives.DistributionInterpretation(callCtx, providers.DistributionInput{
		Counts:         counts,
		TotalSentences: total,
		Boundaries:     c.Boundaries,
		AverageLevel:   avg,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("distribution interpretation failed")
		return distributionErrorText
	}
	return text
}
