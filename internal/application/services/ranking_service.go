package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

// Fixed narrative fallbacks.
const (
	EmptyCandidatesMessage  = "목록이 비어있습니다."
	trendNoKeywordReason    = "키워드가 없어 트렌드 분석 불가"
	trendNoDataReason       = "트렌드 데이터 없음"
	trendErrorReason        = "트렌드 분석 중 오류 발생"
	praiseNoPositiveReason  = "긍정 리뷰가 없어 분석 불가"
	praiseErrorReason       = "감성 분석 이유 요약 중 오류 발생"
	maxPraiseSentences      = 20
	quarterlyTrendWindowDay = 90
	yearlyTrendWindowDay    = 365
	trendDateLayout         = "2006-01-02"
)

// RankingOptions bound ranking fan-out and collaborator calls.
type RankingOptions struct {
	MaxConcurrency   int
	JudgeTimeout     time.Duration
	TrendTimeout     time.Duration
	NarrativeTimeout time.Duration
}

// NewRankingOptions builds options from configuration.
func NewRankingOptions(r config.RankingConfig) RankingOptions {
	return RankingOptions{
		MaxConcurrency:   r.MaxConcurrency,
		JudgeTimeout:     r.JudgeTimeout,
		TrendTimeout:     r.TrendTimeout,
		NarrativeTimeout: r.NarrativeTimeout,
	}
}

// RankingService scores candidates concurrently and orders them by a
// weighted combination of distance or timeliness, review sentiment and
// search trend.
type RankingService struct {
	acquisition *ReviewAcquisitionService
	relevance   providers.RelevanceJudge
	judge       providers.SentimentJudge
	trends      providers.TrendProvider
	narratives  providers.NarrativeProvider
	reports     *ReportService
	opts        RankingOptions
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewRankingService creates a new ranking service. When relevance is nil
// the sentiment judge doubles as the acquisition gate.
func NewRankingService(
	acquisition *ReviewAcquisitionService,
	relevance providers.RelevanceJudge,
	judge providers.SentimentJudge,
	trends providers.TrendProvider,
	narratives providers.NarrativeProvider,
	reports *ReportService,
	opts RankingOptions,
	metrics *observability.Metrics,
) *RankingService {
	return &RankingService{
		acquisition: acquisition,
		relevance:   relevance,
		judge:       judge,
		trends:      trends,
		narratives:  narratives,
		reports:     reports,
		opts:        opts,
		metrics:     metrics,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for time scores and trend windows.
func (s *RankingService) WithClock(now func() time.Time) *RankingService {
	s.now = now
	return s
}

// RankFestivals ranks festivals by timeliness, sentiment and trend.
func (s *RankingService) RankFestivals(ctx context.Context, festivals []*entities.Festival, reviewCount, topN int) *entities.RankingResult {
	candidates := make([]entities.Candidate, len(festivals))
	for i, f := range festivals {
		candidates[i] = f
	}
	return s.rank(ctx, candidates, reviewCount, topN, true, false)
}

// RankPlaces ranks facilities or courses by distance, sentiment and trend.
// Course candidates are scored per sub-point when isCourse is set.
func (s *RankingService) RankPlaces(ctx context.Context, places []entities.Candidate, reviewCount, topN int, isCourse bool) *entities.RankingResult {
	return s.rank(ctx, places, reviewCount, topN, false, isCourse)
}

func (s *RankingService) rank(ctx context.Context, candidates []entities.Candidate, reviewCount, topN int, isFestival, isCourse bool) *entities.RankingResult {
	runID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, "RankingService.rank")
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().
		Str("run_id", runID).
		Int("candidates", len(candidates)).
		Bool("festival", isFestival).
		Bool("course", isCourse).
		Logger()

	if len(candidates) == 0 {
		return &entities.RankingResult{
			RunID:  runID,
			Items:  []*entities.RankedCandidate{},
			Report: EmptyCandidatesMessage,
			Empty:  true,
		}
	}

	maxDistance := distanceSpan(candidates)

	today := s.now()
	ranked := make([]*entities.RankedCandidate, len(candidates))

	var g errgroup.Group
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}
	for i, c := range candidates {
		g.Go(func() error {
			if isFestival {
				ranked[i] = s.scoreFestival(ctx, c, reviewCount, today)
			} else {
				ranked[i] = s.scorePlace(ctx, c, reviewCount, maxDistance, isCourse, today)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.RankingScore > ranked[j].Scores.RankingScore
	})
	observability.RecordRanking(ctx, s.metrics, kindLabel(isFestival, isCourse), len(ranked))
	logger.Info().Msg("ranking completed")

	return &entities.RankingResult{
		RunID:  runID,
		Items:  ranked,
		Report: s.reports.Build(ctx, ranked, topN, isFestival),
	}
}

// distanceSpan returns the farthest distance among located candidates, or 0
// when they all sit at the same distance. A singleton or co-located set
// therefore scores 100 on distance.
func distanceSpan(candidates []entities.Candidate) float64 {
	located := false
	var lo, hi float64
	for _, c := range candidates {
		d := c.Base().Distance
		if d == nil {
			continue
		}
		if !located {
			lo, hi, located = *d, *d, true
			continue
		}
		lo = math.Min(lo, *d)
		hi = math.Max(hi, *d)
	}
	if !located || hi == lo {
		return 0
	}
	return hi
}

func kindLabel(isFestival, isCourse bool) string {
	switch {
	case isFestival:
		return string(entities.KindFestival)
	case isCourse:
		return string(entities.KindCourse)
	default:
		return "place"
	}
}

type keywordSignals struct {
	quarterly float64
	yearly    float64
	series90  []entities.TrendPoint
	trendErr  error
	sentiment float64
	positives []entities.ReviewJudgment
}

// signalsFor gathers trend and sentiment signals for one keyword. Trend
// lookups and review acquisition run side by side.
func (s *RankingService) signalsFor(ctx context.Context, keyword string, reviewCount int, today time.Time) keywordSignals {
	var sig keywordSignals
	var g errgroup.Group
	g.Go(func() error {
		sig.series90, sig.trendErr = s.trendSeries(ctx, keyword, quarterlyTrendWindowDay, today)
		sig.quarterly = meanRatio(sig.series90)
		yearly, _ := s.trendSeries(ctx, keyword, yearlyTrendWindowDay, today)
		sig.yearly = meanRatio(yearly)
		return nil
	})
	g.Go(func() error {
		sig.sentiment, sig.positives = s.sentimentFor(ctx, keyword, reviewCount)
		return nil
	})
	_ = g.Wait()
	return sig
}

func (s *RankingService) scoreFestival(ctx context.Context, c entities.Candidate, reviewCount int, today time.Time) *entities.RankedCandidate {
	title := c.Base().Title
	out := &entities.RankedCandidate{Kind: c.Kind(), Candidate: c}
	if f, ok := c.(*entities.Festival); ok {
		out.Scores.TimeScore = round2(TimeScore(f.Period, today) * 100)
	}

	sig := s.signalsFor(ctx, title, reviewCount, today)
	out.Scores.QuarterlyTrendScore = round2(sig.quarterly)
	out.Scores.YearlyTrendScore = round2(sig.yearly)
	out.Scores.SentimentScore = round2(sig.sentiment)
	out.PositiveJudgments = sig.positives
	out.Scores.RankingScore = festivalRankingScore(out.Scores)

	out.Scores.TrendReason, out.Scores.SentimentReason = s.reasons(ctx, title, sig.series90, sig.trendErr, sig.positives)
	return out
}

func (s *RankingService) scorePlace(ctx context.Context, c entities.Candidate, reviewCount int, maxDistance float64, isCourse bool, today time.Time) *entities.RankedCandidate {
	title := c.Base().Title
	out := &entities.RankedCandidate{Kind: c.Kind(), Candidate: c}
	out.Scores.DistanceScore = DistanceScore(c.Base().Distance, maxDistance)

	if !isCourse {
		sig := s.signalsFor(ctx, title, reviewCount, today)
		out.Scores.QuarterlyTrendScore = round2(sig.quarterly)
		out.Scores.YearlyTrendScore = round2(sig.yearly)
		out.Scores.SentimentScore = round2(sig.sentiment)
		out.PositiveJudgments = sig.positives
		out.Scores.RankingScore = placeRankingScore(out.Scores)
		out.Scores.TrendReason, out.Scores.SentimentReason = s.reasons(ctx, title, sig.series90, sig.trendErr, sig.positives)
		return out
	}

	course, ok := c.(*entities.Course)
	if !ok || len(course.SubPoints) == 0 {
		return out
	}

	// Each sub-point gets its own acquisition run with no shared budget.
	names := course.SubPointNames()
	signals := make([]keywordSignals, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			signals[i] = s.signalsFor(ctx, name, reviewCount, today)
			return nil
		})
	}
	_ = g.Wait()

	var quarterly, yearly, sentiment []float64
	for _, sig := range signals {
		quarterly = append(quarterly, sig.quarterly)
		yearly = append(yearly, sig.yearly)
		sentiment = append(sentiment, sig.sentiment)
		out.PositiveJudgments = append(out.PositiveJudgments, sig.positives...)
	}
	if len(quarterly) > 0 {
		out.Scores.QuarterlyTrendScore = round2(mean(quarterly))
		out.Scores.YearlyTrendScore = round2(mean(yearly))
		out.Scores.SentimentScore = round2(mean(sentiment))
	} else {
		out.Scores.SentimentScore = neutralSentimentScore
	}
	out.Scores.RankingScore = placeRankingScore(out.Scores)

	series, err := s.trendSeries(ctx, title, quarterlyTrendWindowDay, today)
	out.Scores.TrendReason, out.Scores.SentimentReason = s.reasons(ctx, title, series, err, out.PositiveJudgments)
	return out
}

// sentimentFor acquires reviews for keyword and aggregates their
// judgments. Any failure degrades to the neutral score.
func (s *RankingService) sentimentFor(ctx context.Context, keyword string, reviewCount int) (float64, []entities.ReviewJudgment) {
	if keyword == "" || s.acquisition == nil {
		return neutralSentimentScore, nil
	}
	gate := JudgmentGate(s.judge)
	if s.relevance != nil {
		gate = RelevanceGate(s.relevance)
	}
	res := s.acquisition.Acquire(ctx, keyword, reviewCount, gate)

	logger := observability.LoggerFromContext(ctx)
	var all, positives []entities.ReviewJudgment
	for _, review := range res.Reviews {
		judgment := review.Judgment
		if judgment == nil {
			judgeCtx, cancel := withTimeout(ctx, s.opts.JudgeTimeout)
			begin := time.Now()
			var err error
			judgment, err = s.judge.Judge(judgeCtx, review.Text, NormalizeTopic(keyword), review.Title)
			cancel()
			observability.RecordCollaboratorCall(ctx, s.metrics, "sentiment_judge", time.Since(begin), err)
			if err != nil {
				logger.Warn().Err(err).Str("link", review.Link).Msg("sentiment judgment failed")
				continue
			}
		}
		if !judgment.Accepted() {
			continue
		}
		all = append(all, judgment.Judgments...)
		for _, j := range judgment.Judgments {
			if j.Verdict == entities.VerdictPositive {
				positives = append(positives, j)
			}
		}
	}
	return SentimentScore(all), positives
}

func (s *RankingService) trendSeries(ctx context.Context, keyword string, days int, today time.Time) ([]entities.TrendPoint, error) {
	if keyword == "" || s.trends == nil {
		return nil, nil
	}
	callCtx, cancel := withTimeout(ctx, s.opts.TrendTimeout)
	defer cancel()
	start := today.AddDate(0, 0, -days).Format(trendDateLayout)
	end := today.Format(trendDateLayout)

	begin := time.Now()
	series, err := s.trends.Series(callCtx, keyword, start, end)
	observability.RecordCollaboratorCall(ctx, s.metrics, "trend", time.Since(begin), err)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("keyword", keyword).Msg("trend lookup failed")
		return nil, err
	}
	return series, nil
}

// reasons produces the trend and praise narratives concurrently.
func (s *RankingService) reasons(ctx context.Context, keyword string, series []entities.TrendPoint, trendErr error, positives []entities.ReviewJudgment) (string, string) {
	var trendReason, praiseReason string
	var g errgroup.Group
	g.Go(func() error {
		trendReason = s.trendReason(ctx, keyword, series, trendErr)
		return nil
	})
	g.Go(func() error {
		praiseReason = s.praiseReason(ctx, keyword, positives)
		return nil
	})
	_ = g.Wait()
	return trendReason, praiseReason
}

func (s *RankingService) trendReason(ctx context.Context, keyword string, series []entities.TrendPoint, trendErr error) string {
	switch {
	case keyword == "":
		return trendNoKeywordReason
	case trendErr != nil || len(series) == 0:
		return trendNoDataReason
	}
	callCtx, cancel := withTimeout(ctx, s.opts.NarrativeTimeout)
	defer cancel()
	reason, err := s.narratives.TrendReason(callCtx, keyword, series)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("keyword", keyword).Msg("trend narrative failed")
		return trendErrorReason
	}
	return reason
}

func (s *RankingService) praiseReason(ctx context.Context, keyword string, positives []entities.ReviewJudgment) string {
	if len(positives) == 0 {
		return praiseNoPositiveReason
	}
	sentences := make([]string, 0, maxPraiseSentences)
	for _, j := range positives {
		if len(sentences) == maxPraiseSentences {
			break
		}
		sentences = append(sentences, j.Sentence)
	}
	callCtx, cancel := withTimeout(ctx, s.opts.NarrativeTimeout)
	defer cancel()
	reason, err := s.narratives.PraiseReason(callCtx, keyword, sentences)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("keyword", keyword).Msg("praise narrative failed")
		return praiseErrorReason
	}
	return reason
}
