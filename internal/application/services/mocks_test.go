package services_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
)

// pagedSearch serves fixed pages; the page index is derived from the offset.
type pagedSearch struct {
	mu       sync.Mutex
	pages    [][]entities.BlogPost
	pageSize int
	offsets  []int
	err      error
}

func (p *pagedSearch) SearchReviews(_ context.Context, _ string, pageSize, offset int) ([]entities.BlogPost, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offsets = append(p.offsets, offset)
	if p.err != nil {
		return nil, p.err
	}
	size := p.pageSize
	if size == 0 {
		size = pageSize
	}
	idx := (offset - 1) / size
	if idx < 0 || idx >= len(p.pages) {
		return nil, nil
	}
	return p.pages[idx], nil
}

// keywordSearch returns posts per query keyword, each page identical.
type keywordSearch struct {
	byQuery map[string][]entities.BlogPost
}

func (k *keywordSearch) SearchReviews(_ context.Context, keyword string, _ int, offset int) ([]entities.BlogPost, error) {
	if offset > 1 {
		return nil, nil
	}
	return k.byQuery[keyword], nil
}

func posts(titles ...string) []entities.BlogPost {
	out := make([]entities.BlogPost, len(titles))
	for i, t := range titles {
		out[i] = entities.BlogPost{
			Title: "<b>" + t + "</b>",
			Link:  fmt.Sprintf("https://blog.naver.com/user/%s", t),
		}
	}
	return out
}

// staticFetcher returns a body per link, or a default body.
type staticFetcher struct {
	bodies map[string]string
}

func (f *staticFetcher) Fetch(_ context.Context, link string) (string, []string) {
	if body, ok := f.bodies[link]; ok {
		return body, nil
	}
	return "리뷰 본문 " + link, []string{"https://img.example/" + link}
}

// titleRelevance marks posts relevant when the predicate accepts the title.
type titleRelevance func(title string) bool

func (f titleRelevance) IsRelevant(_ context.Context, _, title, _ string) (bool, error) {
	return f(title), nil
}

var _ providers.RelevanceJudge = titleRelevance(nil)

type MockSentimentJudge struct {
	mock.Mock
}

func (m *MockSentimentJudge) Judge(ctx context.Context, text, keyword, title string) (*entities.JudgmentResult, error) {
	args := m.Called(ctx, text, keyword, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.JudgmentResult), args.Error(1)
}

type MockTrendProvider struct {
	mock.Mock
}

func (m *MockTrendProvider) Series(ctx context.Context, keyword, startDate, endDate string) ([]entities.TrendPoint, error) {
	args := m.Called(ctx, keyword, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TrendPoint), args.Error(1)
}

type MockNarrativeProvider struct {
	mock.Mock
}

func (m *MockNarrativeProvider) TrendReason(ctx context.Context, keyword string, series []entities.TrendPoint) (string, error) {
	args := m.Called(ctx, keyword, series)
	return args.String(0), args.Error(1)
}

func (m *MockNarrativeProvider) PraiseReason(ctx context.Context, keyword string, sentences []string) (string, error) {
	args := m.Called(ctx, keyword, sentences)
	return args.String(0), args.Error(1)
}

func (m *MockNarrativeProvider) ScoreExplanation(ctx context.Context, in providers.ScoreExplanationInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockNarrativeProvider) ComparativeSummary(ctx context.Context, items []*entities.RankedCandidate, isFestival bool) (string, error) {
	args := m.Called(ctx, items, isFestival)
	return args.String(0), args.Error(1)
}

func (m *MockNarrativeProvider) ComplaintSummary(ctx context.Context, sentences []string) (string, error) {
	args := m.Called(ctx, sentences)
	return args.String(0), args.Error(1)
}

func (m *MockNarrativeProvider) PositiveKeywords(ctx context.Context, pairs []entities.AspectPair) ([]entities.KeywordCount, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.KeywordCount), args.Error(1)
}

func (m *MockNarrativeProvider) DistributionInterpretation(ctx context.Context, in providers.DistributionInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// stubNarratives answers every narrative call with a fixed string.
func stubNarratives() *MockNarrativeProvider {
	n := new(MockNarrativeProvider)
	n.On("TrendReason", mock.Anything, mock.Anything, mock.Anything).Return("trend", nil).Maybe()
	n.On("PraiseReason", mock.Anything, mock.Anything, mock.Anything).Return("praise", nil).Maybe()
	n.On("ScoreExplanation", mock.Anything, mock.Anything).Return("- explanation", nil).Maybe()
	n.On("ComparativeSummary", mock.Anything, mock.Anything, mock.Anything).Return("summary", nil).Maybe()
	n.On("ComplaintSummary", mock.Anything, mock.Anything).Return("complaints", nil).Maybe()
	n.On("PositiveKeywords", mock.Anything, mock.Anything).Return([]entities.KeywordCount{}, nil).Maybe()
	n.On("DistributionInterpretation", mock.Anything, mock.Anything).Return("distribution", nil).Maybe()
	return n
}

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FestivalByTitle(ctx context.Context, title string) (*entities.Festival, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Festival), args.Error(1)
}

func (m *MockRecordRepository) FestivalsByTitles(ctx context.Context, titles []string) ([]*entities.Festival, error) {
	args := m.Called(ctx, titles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Festival), args.Error(1)
}

func (m *MockRecordRepository) FacilityByTitle(ctx context.Context, title string) (*entities.Facility, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockRecordRepository) CourseByTitle(ctx context.Context, title string) (*entities.Course, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Course), args.Error(1)
}

func (m *MockRecordRepository) ListLocatedFestivals(ctx context.Context) ([]*entities.Festival, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Festival), args.Error(1)
}

func (m *MockRecordRepository) ListLocatedFacilities(ctx context.Context) ([]*entities.Facility, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockRecordRepository) ListLocatedCourseRows(ctx context.Context) ([]*entities.CourseRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CourseRow), args.Error(1)
}
