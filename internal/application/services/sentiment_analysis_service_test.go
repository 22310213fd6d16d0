package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ericyum/tour-agent-backend/internal/application/services"
	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

func judged(pairs ...any) *entities.JudgmentResult {
	res := &entities.JudgmentResult{IsRelevant: true}
	for i := 0; i+1 < len(pairs); i += 2 {
		score := pairs[i+1].(float64)
		verdict := entities.VerdictPositive
		if score < 0 {
			verdict = entities.VerdictNegative
		}
		res.Judgments = append(res.Judgments, entities.ReviewJudgment{
			Sentence: pairs[i].(string),
			Score:    score,
			Verdict:  verdict,
		})
	}
	return res
}

func newSentimentService(search *pagedSearch, judge *MockSentimentJudge, narratives *MockNarrativeProvider) *services.SentimentAnalysisService {
	opts := services.DefaultAcquisitionOptions()
	opts.PageSize = 10
	acq := services.NewReviewAcquisitionService(search, &staticFetcher{}, opts, nil)
	return services.NewSentimentAnalysisService(acq, judge, services.NewSatisfactionClassifier(), narratives, 0)
}

func TestAnalyze_NoReviews(t *testing.T) {
	search := &pagedSearch{}
	judge := new(MockSentimentJudge)

	out := newSentimentService(search, judge, stubNarratives()).Analyze(context.Background(), "2025년 진해 군항제", 5)

	assert.True(t, out.Empty)
	assert.Equal(t, "'2025년 진해 군항제'에 대한 유효한 후기 블로그를 찾지 못했습니다.", out.Message)
	assert.NotNil(t, out.PositiveKeywords)
	assert.NotEmpty(t, out.RunID)
	judge.AssertNotCalled(t, "Judge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_PerBlogAndOverallStats(t *testing.T) {
	search := &pagedSearch{pages: [][]entities.BlogPost{posts("a", "b")}}
	judge := new(MockSentimentJudge)
	judge.On("Judge", mock.Anything, mock.Anything, "군항제", "a").
		Return(judged("벚꽃이 아름다웠다", 2.0, "사람이 많았다", -1.0, "좋았다", 1.0), nil)
	judge.On("Judge", mock.Anything, mock.Anything, "군항제", "b").
		Return(judged("주차가 불편했다", -2.0), nil)
	narratives := stubNarratives()

	out := newSentimentService(search, judge, narratives).Analyze(context.Background(), "군항제", 5)

	require.False(t, out.Empty)
	require.Len(t, out.Blogs, 2)
	a := out.Blogs[0]
	assert.Equal(t, "a", a.Title)
	assert.Equal(t, 3, a.SentenceCount)
	assert.Equal(t, 2, a.PositiveCount)
	assert.Equal(t, 1, a.NegativeCount)
	assert.Equal(t, 66.7, a.PositivePercentage)
	assert.Equal(t, 33.3, a.NegativePercentage)
	for _, j := range a.Judgments {
		assert.GreaterOrEqual(t, j.Level, entities.LevelVeryDissatisfied)
		assert.LessOrEqual(t, j.Level, entities.LevelVerySatisfied)
	}

	assert.Equal(t, 2, out.PositiveTotal)
	assert.Equal(t, 2, out.NegativeTotal)
	assert.Equal(t, 4, out.TotalScoreCount)
	require.Len(t, out.LevelCounts, 5)
	total := 0
	for _, lc := range out.LevelCounts {
		total += lc.Count
	}
	assert.Equal(t, 4, total)
	assert.True(t, strings.HasPrefix(out.OverallSummary, "- **총 분석 블로그**: 2개\n"))
	assert.Contains(t, out.OverallSummary, "- **긍정 문장 수**: 2개")
	assert.Contains(t, out.OverallSummary, "- **부정 문장 수**: 2개")
	assert.Equal(t, "complaints", out.NegativeSummary)
	assert.Equal(t, "distribution", out.DistributionSummary)

	narratives.AssertCalled(t, "ComplaintSummary", mock.Anything, []string{"주차가 불편했다", "사람이 많았다"})
}

func TestAnalyze_NarrativeFailuresFallBack(t *testing.T) {
	search := &pagedSearch{pages: [][]entities.BlogPost{posts("a")}}
	judge := new(MockSentimentJudge)
	res := judged("별로였다", -1.5)
	res.AspectPairs = []entities.AspectPair{{Aspect: "음식", Sentiment: "맛있다"}}
	judge.On("Judge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(res, nil)

	narratives := new(MockNarrativeProvider)
	boom := errors.New("llm down")
	narratives.On("ComplaintSummary", mock.Anything, mock.Anything).Return("", boom)
	narratives.On("PositiveKeywords", mock.Anything, mock.Anything).Return(nil, boom)
	narratives.On("DistributionInterpretation", mock.Anything, mock.Anything).Return("", boom)

	out := newSentimentService(search, judge, narratives).Analyze(context.Background(), "축제", 1)

	assert.Equal(t, "부정적 의견을 요약하는 데 실패했습니다.", out.NegativeSummary)
	assert.Equal(t, "자동 분석 생성 중 오류가 발생했습니다.", out.DistributionSummary)
	assert.Equal(t, []entities.KeywordCount{}, out.PositiveKeywords)
	assert.Equal(t, []entities.AspectPair{{Aspect: "음식", Sentiment: "맛있다"}}, out.AspectPairs)
}

func TestAnalyze_PositiveKeywordsSortedByCount(t *testing.T) {
	search := &pagedSearch{pages: [][]entities.BlogPost{posts("a")}}
	judge := new(MockSentimentJudge)
	res := judged("좋았다", 1.0)
	res.AspectPairs = []entities.AspectPair{{Aspect: "경치", Sentiment: "예쁘다"}}
	judge.On("Judge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(res, nil)

	narratives := new(MockNarrativeProvider)
	narratives.On("ComplaintSummary", mock.Anything, mock.Anything).Return("", nil).Maybe()
	narratives.On("PositiveKeywords", mock.Anything, mock.Anything).Return([]entities.KeywordCount{
		{Keyword: "분위기", Count: 1},
		{Keyword: "경치", Count: 4},
		{Keyword: "음식", Count: 2},
	}, nil)
	narratives.On("DistributionInterpretation", mock.Anything, mock.Anything).Return("ok", nil)

	out := newSentimentService(search, judge, narratives).Analyze(context.Background(), "축제", 1)

	require.Len(t, out.PositiveKeywords, 3)
	assert.Equal(t, "경치", out.PositiveKeywords[0].Keyword)
	assert.Equal(t, "음식", out.PositiveKeywords[1].Keyword)
	assert.Equal(t, "", out.NegativeSummary)
	narratives.AssertNotCalled(t, "ComplaintSummary", mock.Anything, mock.Anything)
}

func TestComplaintSentences(t *testing.T) {
	in := []string{"짧다", "", "아주 길고 긴 불만", "짧다", "중간 불만"}
	assert.Equal(t, []string{"아주 길고 긴 불만", "중간 불만", "짧다"}, services.ComplaintSentences(in))

	many := make([]string, 80)
	for i := range many {
		many[i] = fmt.Sprintf("불만 %03d", i)
	}
	assert.Len(t, services.ComplaintSentences(many), 50)
}
