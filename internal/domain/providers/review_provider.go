package providers

import (
	"context"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

// ReviewSearchProvider pages through blog posts for a keyword. An empty
// page signals exhaustion.
type ReviewSearchProvider interface {
	SearchReviews(ctx context.Context, keyword string, pageSize, offset int) ([]entities.BlogPost, error)
}

// ContentFetcher reads the body text and image URLs of a blog post. On
// failure it returns an unreadable sentinel text rather than an error.
type ContentFetcher interface {
	Fetch(ctx context.Context, link string) (string, []string)
}

// TrendProvider returns the daily search-interest series for a keyword.
type TrendProvider interface {
	Series(ctx context.Context, keyword, startDate, endDate string) ([]entities.TrendPoint, error)
}

// Sentinel texts returned by ContentFetcher when a post cannot be read.
const (
	UnreadableNoBody      = "본문 내용을 찾을 수 없습니다"
	UnreadableAccessError = "페이지에 접근하는 중 오류가 발생했습니다"
)
