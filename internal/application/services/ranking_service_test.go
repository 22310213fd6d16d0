package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ericyum/tour-agent-backend/internal/application/services"
	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
)

var fixedToday = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func emptyTrends() *MockTrendProvider {
	trends := new(MockTrendProvider)
	trends.On("Series", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]entities.TrendPoint{}, nil)
	return trends
}

type rankingDeps struct {
	search     providers.ReviewSearchProvider
	relevance  providers.RelevanceJudge
	judge      providers.SentimentJudge
	trends     providers.TrendProvider
	narratives providers.NarrativeProvider
}

func newRanking(d rankingDeps) *services.RankingService {
	if d.search == nil {
		d.search = &pagedSearch{}
	}
	if d.trends == nil {
		d.trends = emptyTrends()
	}
	if d.narratives == nil {
		d.narratives = stubNarratives()
	}
	if d.judge == nil {
		d.judge = new(MockSentimentJudge)
	}
	acq := services.NewReviewAcquisitionService(d.search, &staticFetcher{}, services.DefaultAcquisitionOptions(), nil)
	reports := services.NewReportService(d.narratives, "", 0).WithClock(func() time.Time { return fixedToday })
	return services.NewRankingService(acq, d.relevance, d.judge, d.trends, d.narratives, reports, services.RankingOptions{}, nil).
		WithClock(func() time.Time { return fixedToday })
}

func facilityAt(title string, distance float64) *entities.Facility {
	d := distance
	return &entities.Facility{LocatedRecord: entities.LocatedRecord{ContentID: title, Title: title, Distance: &d}}
}

func TestRankPlaces_DistanceAndNeutralSentimentScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})
	places := []entities.Candidate{facilityAt("B", 1000), facilityAt("A", 0)}

	res := svc.RankPlaces(context.Background(), places, 3, 2, false)

	require.False(t, res.Empty)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "A", res.Items[0].Title())
	assert.Equal(t, "B", res.Items[1].Title())
	assert.Equal(t, 100.0, res.Items[0].Scores.DistanceScore)
	assert.Equal(t, 0.0, res.Items[1].Scores.DistanceScore)
	assert.Equal(t, 50.0, res.Items[0].Scores.SentimentScore)
	assert.Equal(t, 50.0, res.Items[0].Scores.RankingScore)
	assert.Equal(t, 20.0, res.Items[1].Scores.RankingScore)
	assert.NotEmpty(t, res.RunID)
	assert.Contains(t, res.Report, "## 🏆 최종 순위 분석")
}

func TestRankFestivals_ProjectedTimeScoreScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})
	festival := &entities.Festival{
		LocatedRecord: entities.LocatedRecord{Title: "단오제"},
		Period:        entities.Period{Start: "20240620", End: "20240625"},
	}

	res := svc.RankFestivals(context.Background(), []*entities.Festival{festival}, 3, 1)

	require.Len(t, res.Items, 1)
	assert.Equal(t, 72.0, res.Items[0].Scores.TimeScore)
	assert.Equal(t, 50.0, res.Items[0].Scores.SentimentScore)
	assert.InDelta(t, 0.6*72+0.2*50, res.Items[0].Scores.RankingScore, 1e-9)
}

func TestRankPlaces_SentimentFromJudgments(t *testing.T) {
	defer goleak.VerifyNone(t)

	search := &keywordSearch{byQuery: map[string][]entities.BlogPost{
		"전시관 후기": posts("good-1", "good-2"),
	}}
	judge := new(MockSentimentJudge)
	judge.On("Judge", mock.Anything, mock.Anything, "전시관", "good-1").Return(&entities.JudgmentResult{
		IsRelevant: true,
		Judgments: []entities.ReviewJudgment{
			{Sentence: "정말 좋아요", Score: 3, Verdict: entities.VerdictPositive},
			{Sentence: "괜찮아요", Score: 1, Verdict: entities.VerdictPositive},
		},
	}, nil)
	judge.On("Judge", mock.Anything, mock.Anything, "전시관", "good-2").Return(&entities.JudgmentResult{
		IsRelevant: true,
		Judgments:  []entities.ReviewJudgment{{Sentence: "조금 붐벼요", Score: -0.5, Verdict: entities.VerdictNegative}},
	}, nil)

	narratives := new(MockNarrativeProvider)
	narratives.On("PraiseReason", mock.Anything, "전시관", []string{"정말 좋아요", "괜찮아요"}).Return("전시가 좋아요", nil)
	narratives.On("ComparativeSummary", mock.Anything, mock.Anything, false).Return("summary", nil)
	narratives.On("ScoreExplanation", mock.Anything, mock.Anything).Return("- why", nil)

	svc := newRanking(rankingDeps{search: search, relevance: titleRelevance(isGood), judge: judge, narratives: narratives})

	res := svc.RankPlaces(context.Background(), []entities.Candidate{facilityAt("전시관", 0)}, 2, 1, false)

	require.Len(t, res.Items, 1)
	scores := res.Items[0].Scores
	assert.Equal(t, 83.33, scores.SentimentScore)
	assert.Equal(t, "전시가 좋아요", scores.SentimentReason)
	assert.Equal(t, "트렌드 데이터 없음", scores.TrendReason)
	assert.Equal(t, round2(0.3*100+0.4*83.33), scores.RankingScore)
	judge.AssertNumberOfCalls(t, "Judge", 2)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func TestRankPlaces_CourseAveragesSubPoints(t *testing.T) {
	defer goleak.VerifyNone(t)

	search := &keywordSearch{byQuery: map[string][]entities.BlogPost{
		"첫 정류장 후기": posts("good-1"),
	}}
	judge := new(MockSentimentJudge)
	judge.On("Judge", mock.Anything, mock.Anything, "첫 정류장", "good-1").Return(&entities.JudgmentResult{
		IsRelevant: true,
		Judgments:  []entities.ReviewJudgment{{Sentence: "최고", Score: 4, Verdict: entities.VerdictPositive}},
	}, nil)

	trends := new(MockTrendProvider)
	trends.On("Series", mock.Anything, "첫 정류장", mock.Anything, mock.Anything).
		Return([]entities.TrendPoint{{Period: "2025-06-01", Ratio: 40}, {Period: "2025-06-02", Ratio: 60}}, nil)
	trends.On("Series", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]entities.TrendPoint{}, nil)

	d := 0.0
	course := &entities.Course{
		LocatedRecord: entities.LocatedRecord{Title: "남산 코스", Distance: &d},
		SubPoints: []entities.SubPoint{
			{Seq: 1, Name: "첫 정류장"},
			{Seq: 2, Name: ""},
			{Seq: 3, Name: "둘째 정류장"},
		},
	}
	svc := newRanking(rankingDeps{search: search, relevance: titleRelevance(isGood), judge: judge, trends: trends})

	res := svc.RankPlaces(context.Background(), []entities.Candidate{course}, 1, 1, true)

	require.Len(t, res.Items, 1)
	scores := res.Items[0].Scores
	assert.Equal(t, 75.0, scores.SentimentScore)
	assert.Equal(t, 25.0, scores.QuarterlyTrendScore)
	assert.Equal(t, 25.0, scores.YearlyTrendScore)
	assert.Equal(t, round2(30+0.4*75+0.2*25+0.1*25), scores.RankingScore)
}

// rendezvousSearch blocks each search until want distinct calls are in
// flight, so it only completes promptly when callers run concurrently.
type rendezvousSearch struct {
	mu      sync.Mutex
	want    int
	arrived int
	all     chan struct{}
	met     bool
}

func newRendezvousSearch(want int) *rendezvousSearch {
	return &rendezvousSearch{want: want, all: make(chan struct{})}
}

func (r *rendezvousSearch) SearchReviews(ctx context.Context, _ string, _, _ int) ([]entities.BlogPost, error) {
	r.mu.Lock()
	r.arrived++
	if r.arrived == r.want {
		close(r.all)
	}
	r.mu.Unlock()

	select {
	case <-r.all:
		r.mu.Lock()
		r.met = true
		r.mu.Unlock()
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
	}
	return nil, nil
}

func TestRankPlaces_CourseSubPointsRunConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t)

	search := newRendezvousSearch(3)
	d := 0.0
	course := &entities.Course{
		LocatedRecord: entities.LocatedRecord{Title: "한강 코스", Distance: &d},
		SubPoints: []entities.SubPoint{
			{Seq: 1, Name: "여의도"},
			{Seq: 2, Name: "반포"},
			{Seq: 3, Name: "뚝섬"},
		},
	}
	svc := newRanking(rankingDeps{search: search, relevance: titleRelevance(isGood)})

	res := svc.RankPlaces(context.Background(), []entities.Candidate{course}, 1, 1, true)

	require.Len(t, res.Items, 1)
	assert.Equal(t, 50.0, res.Items[0].Scores.SentimentScore)
	search.mu.Lock()
	defer search.mu.Unlock()
	assert.True(t, search.met, "every sub-point search should be in flight at once")
}

func TestRankPlaces_SingletonScoresFullDistance(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})

	res := svc.RankPlaces(context.Background(), []entities.Candidate{facilityAt("only", 1200)}, 1, 1, false)

	require.Len(t, res.Items, 1)
	assert.Equal(t, 100.0, res.Items[0].Scores.DistanceScore)
	assert.Equal(t, 50.0, res.Items[0].Scores.RankingScore)
}

func TestRankPlaces_CoLocatedScoreFullDistance(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})
	places := []entities.Candidate{facilityAt("east", 500), facilityAt("west", 500)}

	res := svc.RankPlaces(context.Background(), places, 1, 2, false)

	require.Len(t, res.Items, 2)
	for _, item := range res.Items {
		assert.Equal(t, 100.0, item.Scores.DistanceScore, item.Title())
	}
}

func TestRankPlaces_UnlocatedCandidateIgnoredForSpread(t *testing.T) {
	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})
	unlocated := &entities.Facility{LocatedRecord: entities.LocatedRecord{ContentID: "none", Title: "none"}}

	res := svc.RankPlaces(context.Background(), []entities.Candidate{facilityAt("near", 300), unlocated}, 1, 2, false)

	require.Len(t, res.Items, 2)
	byTitle := map[string]float64{}
	for _, item := range res.Items {
		byTitle[item.Title()] = item.Scores.DistanceScore
	}
	assert.Equal(t, 100.0, byTitle["near"])
	assert.Equal(t, 0.0, byTitle["none"])
}

func TestRankPlaces_CourseWithoutSubPointsScoresZero(t *testing.T) {
	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})
	d := 10.0
	course := &entities.Course{LocatedRecord: entities.LocatedRecord{Title: "빈 코스", Distance: &d}}

	res := svc.RankPlaces(context.Background(), []entities.Candidate{course}, 1, 1, true)

	require.Len(t, res.Items, 1)
	assert.Zero(t, res.Items[0].Scores.RankingScore)
	assert.Equal(t, 100.0, res.Items[0].Scores.DistanceScore)
	assert.Equal(t, services.NoScoredItemsMessage, res.Report)
}

func TestRank_EmptyCandidates(t *testing.T) {
	svc := newRanking(rankingDeps{})

	res := svc.RankFestivals(context.Background(), nil, 3, 3)

	assert.True(t, res.Empty)
	assert.Empty(t, res.Items)
	assert.Equal(t, services.EmptyCandidatesMessage, res.Report)
}

func TestRank_CollaboratorFailuresDegrade(t *testing.T) {
	defer goleak.VerifyNone(t)

	trends := new(MockTrendProvider)
	trends.On("Series", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("datalab down"))
	narratives := new(MockNarrativeProvider)
	narratives.On("ComparativeSummary", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("llm down"))
	narratives.On("ScoreExplanation", mock.Anything, mock.Anything).Return("", errors.New("llm down"))

	svc := newRanking(rankingDeps{
		search:     &pagedSearch{err: errors.New("search down")},
		relevance:  titleRelevance(isGood),
		trends:     trends,
		narratives: narratives,
	})

	res := svc.RankPlaces(context.Background(), []entities.Candidate{facilityAt("A", 0)}, 3, 1, false)

	require.Len(t, res.Items, 1)
	scores := res.Items[0].Scores
	assert.Equal(t, 50.0, scores.SentimentScore)
	assert.Zero(t, scores.QuarterlyTrendScore)
	assert.Equal(t, "트렌드 데이터 없음", scores.TrendReason)
	assert.Equal(t, "긍정 리뷰가 없어 분석 불가", scores.SentimentReason)
	assert.Contains(t, res.Report, "최종 분석 요약 생성 중 오류가 발생했습니다.")
	assert.Contains(t, res.Report, "점수 설명 생성 중 오류가 발생했습니다.")
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	svc := newRanking(rankingDeps{relevance: titleRelevance(isGood)})
	places := []entities.Candidate{facilityAt("first", 5), facilityAt("second", 5), facilityAt("third", 5)}

	res := svc.RankPlaces(context.Background(), places, 1, 3, false)

	titles := []string{res.Items[0].Title(), res.Items[1].Title(), res.Items[2].Title()}
	assert.Equal(t, []string{"first", "second", "third"}, titles)
}

func TestRank_ConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	acq := services.NewReviewAcquisitionService(&pagedSearch{}, &staticFetcher{}, services.DefaultAcquisitionOptions(), nil)
	narratives := stubNarratives()
	svc := services.NewRankingService(acq, titleRelevance(isGood), new(MockSentimentJudge), emptyTrends(), narratives,
		services.NewReportService(narratives, "", 0), services.RankingOptions{MaxConcurrency: 1}, nil)

	places := make([]entities.Candidate, 5)
	for i := range places {
		places[i] = facilityAt(string(rune('A'+i)), float64(i*100))
	}
	res := svc.RankPlaces(context.Background(), places, 1, 5, false)

	require.Len(t, res.Items, 5)
	assert.Equal(t, "A", res.Items[0].Title())
	assert.Equal(t, "E", res.Items[4].Title())
}

func TestDistanceScore(t *testing.T) {
	zero, half, full := 0.0, 500.0, 1000.0
	assert.Equal(t, 100.0, services.DistanceScore(&zero, 1000))
	assert.Equal(t, 50.0, services.DistanceScore(&half, 1000))
	assert.Equal(t, 0.0, services.DistanceScore(&full, 1000))
	assert.Equal(t, 100.0, services.DistanceScore(&zero, 0))
	assert.Equal(t, 0.0, services.DistanceScore(nil, 1000))
}

func TestSentimentScore(t *testing.T) {
	assert.Equal(t, 50.0, services.SentimentScore(nil))

	balanced := []entities.ReviewJudgment{
		{Score: 2, Verdict: entities.VerdictPositive},
		{Score: 0.5, Verdict: entities.VerdictPositive},
		{Score: -1, Verdict: entities.VerdictNegative},
		{Score: -0.5, Verdict: entities.VerdictNegative},
	}
	assert.Equal(t, 50.0, services.SentimentScore(balanced))

	allStrongNegative := []entities.ReviewJudgment{
		{Score: -3, Verdict: entities.VerdictNegative},
		{Score: -1.5, Verdict: entities.VerdictNegative},
	}
	assert.Equal(t, 0.0, services.SentimentScore(allStrongNegative))

	inconsistent := []entities.ReviewJudgment{{Score: -2, Verdict: entities.VerdictPositive}}
	assert.Equal(t, 50.0, services.SentimentScore(inconsistent))
}

func TestTimeScore(t *testing.T) {
	tests := []struct {
		name   string
		period entities.Period
		want   float64
	}{
		{"ongoing", entities.Period{Start: "20250610", End: "20250620"}, 1.0},
		{"ongoing float-formatted", entities.Period{Start: "20250610.0", End: "20250620.0"}, 1.0},
		{"starts in 3 days", entities.Period{Start: "20250618", End: "20250620"}, 0.9},
		{"starts in 16 days", entities.Period{Start: "20250701", End: "20250705"}, 0.6},
		{"starts in 47 days", entities.Period{Start: "20250801", End: "20250805"}, 0.3},
		{"far future", entities.Period{Start: "20251201", End: "20251205"}, 0.1},
		{"ended, next in 5 days", entities.Period{Start: "20240620", End: "20240625"}, 0.72},
		{"ended, next far away", entities.Period{Start: "20240101", End: "20240105"}, 0.08},
		{"ended, anniversary is today", entities.Period{Start: "20240615", End: "20240616"}, 0.72},
		{"missing", entities.Period{}, 0},
		{"garbage", entities.Period{Start: "soon", End: "later"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, services.TimeScore(tt.period, fixedToday), 1e-9)
		})
	}
}

func TestTimeScore_LeapDayProjection(t *testing.T) {
	today := time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)
	got := services.TimeScore(entities.Period{Start: "20240229", End: "20240301"}, today)
	assert.InDelta(t, 0.6*0.8, got, 1e-9)
}
