package naver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	apperrors "github.com/ericyum/tour-agent-backend/pkg/errors"
)

const trendCacheNamespace = "trend"

// TrendSearch reads daily search-interest ratios from Naver DataLab. Series
// are cached when a cache is configured.
type TrendSearch struct {
	client  *Client
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

var _ providers.TrendProvider = (*TrendSearch)(nil)

// NewTrendSearch creates a trend provider. cache may be nil.
func NewTrendSearch(client *Client, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *TrendSearch {
	return &TrendSearch{client: client, cache: cache, ttl: ttl, metrics: metrics}
}

type keywordGroup struct {
	GroupName string   `json:"groupName"`
	Keywords  []string `json:"keywords"`
}

type trendRequest struct {
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	TimeUnit      string         `json:"timeUnit"`
	KeywordGroups []keywordGroup `json:"keywordGroups"`
}

type trendResponse struct {
	Results []struct {
		Title string                `json:"title"`
		Data  []entities.TrendPoint `json:"data"`
	} `json:"results"`
}

// Series returns the daily ratios for keyword between startDate and endDate
// (YYYY-MM-DD, inclusive). A keyword with no search volume yields an empty
// series.
func (t *TrendSearch) Series(ctx context.Context, keyword, startDate, endDate string) ([]entities.TrendPoint, error) {
	key := trendCacheKey(keyword, startDate, endDate)
	if t.cache != nil {
		if cached, err := t.cache.Get(ctx, key); err == nil {
			var series []entities.TrendPoint
			if json.Unmarshal(cached, &series) == nil {
				observability.RecordCacheHit(ctx, t.metrics, trendCacheNamespace)
				return series, nil
			}
		}
		observability.RecordCacheMiss(ctx, t.metrics, trendCacheNamespace)
	}

	req := trendRequest{
		StartDate:     startDate,
		EndDate:       endDate,
		TimeUnit:      "date",
		KeywordGroups: []keywordGroup{{GroupName: keyword, Keywords: []string{keyword}}},
	}
	var resp trendResponse
	if err := t.client.doJSON(ctx, http.MethodPost, "/v1/datalab/search", nil, req, &resp); err != nil {
		return nil, err
	}

	series := []entities.TrendPoint{}
	if len(resp.Results) > 0 && resp.Results[0].Data != nil {
		series = resp.Results[0].Data
	}

	if t.cache != nil {
		if payload, err := json.Marshal(series); err == nil {
			if err := t.cache.Set(context.WithoutCancel(ctx), key, payload, t.ttl); err != nil {
				observability.LoggerFromContext(ctx).Debug().Err(err).Msg("failed to cache trend series")
			}
		}
	}
	return series, nil
}

func trendCacheKey(keyword, start, end string) string {
	return "naver:trend:v1:" + hashKey(keyword+"|"+start+"|"+end)
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// DisabledTrend is used when no DataLab credentials are configured. Every
// call fails, which the ranking treats as a neutral trend.
type DisabledTrend struct{}

// Series always returns an UNAVAILABLE error.
func (DisabledTrend) Series(context.Context, string, string, string) ([]entities.TrendPoint, error) {
	return nil, apperrors.NewUnavailableError("naver datalab credentials are not configured")
}
