package scraper

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

const contentCacheNamespace = "content"

// PageLoader reads the text and images of one post.
type PageLoader interface {
	Load(ctx context.Context, link string) (string, []string, error)
}

// Fetcher implements ContentFetcher. Failures become the unreadable sentinel
// texts; successful reads are cached per link when a cache is configured.
type Fetcher struct {
	loader  PageLoader
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

var _ providers.ContentFetcher = (*Fetcher)(nil)

// NewFetcher creates a content fetcher. cache may be nil.
func NewFetcher(loader PageLoader, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{loader: loader, cache: cache, ttl: ttl, metrics: metrics}
}

type cachedContent struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// Fetch returns the post text and image URLs of link.
func (f *Fetcher) Fetch(ctx context.Context, link string) (string, []string) {
	key := "post:" + link
	if f.cache != nil {
		if data, err := f.cache.Get(ctx, key); err == nil {
			var c cachedContent
			if json.Unmarshal(data, &c) == nil {
				observability.RecordCacheHit(ctx, f.metrics, contentCacheNamespace)
				return c.Text, c.Images
			}
		}
		observability.RecordCacheMiss(ctx, f.metrics, contentCacheNamespace)
	}

	text, images, err := f.loader.Load(ctx, link)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("link", link).Msg("failed to read post")
		return providers.UnreadableAccessError, nil
	}
	if strings.TrimSpace(text) == "" {
		return providers.UnreadableNoBody, nil
	}

	if f.cache != nil {
		if data, err := json.Marshal(cachedContent{Text: text, Images: images}); err == nil {
			_ = f.cache.Set(context.WithoutCancel(ctx), key, data, f.ttl)
		}
	}
	return text, images
}
