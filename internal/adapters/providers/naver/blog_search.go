package naver

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
)

// Naver blog search limits.
const (
	maxDisplay = 100
	maxStart   = 1000
)

// BlogSearch searches Naver blogs by relevance.
type BlogSearch struct {
	client *Client
}

var _ providers.ReviewSearchProvider = (*BlogSearch)(nil)

// NewBlogSearch creates a blog search provider on client.
func NewBlogSearch(client *Client) *BlogSearch {
	return &BlogSearch{client: client}
}

type blogResponse struct {
	Total int                 `json:"total"`
	Start int                 `json:"start"`
	Items []entities.BlogPost `json:"items"`
}

// SearchReviews returns one page of posts. offset is 1-based; offsets past
// the API's last start position yield an empty page.
func (s *BlogSearch) SearchReviews(ctx context.Context, keyword string, pageSize, offset int) ([]entities.BlogPost, error) {
	if offset < 1 {
		offset = 1
	}
	if offset > maxStart {
		return nil, nil
	}
	if pageSize <= 0 || pageSize > maxDisplay {
		pageSize = maxDisplay
	}

	query := url.Values{}
	query.Set("query", keyword)
	query.Set("display", strconv.Itoa(pageSize))
	query.Set("start", strconv.Itoa(offset))
	query.Set("sort", "sim")

	var resp blogResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/v1/search/blog.json", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
