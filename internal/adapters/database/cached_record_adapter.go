package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

const recordCacheNamespace = "records"

// CachedRecordAdapter wraps a RecordRepository with a read-through cache.
// Misses are not cached.
type CachedRecordAdapter struct {
	adapter repositories.RecordRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedRecordAdapter creates a new cached record adapter
func NewCachedRecordAdapter(adapter repositories.RecordRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedRecordAdapter {
	return &CachedRecordAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

var _ repositories.RecordRepository = (*CachedRecordAdapter)(nil)

// Cache key generators
func festivalCacheKey(title string) string { return "festival:" + title }
func facilityCacheKey(title string) string { return "facility:" + title }
func courseCacheKey(title string) string   { return "course:" + title }

const (
	locatedFestivalsKey  = "located:festivals"
	locatedFacilitiesKey = "located:facilities"
	locatedCourseRowsKey = "located:courses"
)

func readThrough[T any](ctx context.Context, a *CachedRecordAdapter, op, key string, load func(context.Context) (T, error)) (T, error) {
	logger := observability.LoggerFromContext(ctx)

	if data, err := a.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, recordCacheNamespace)
			return v, nil
		}
		logger.Warn().Str("key", key).Msg("failed to unmarshal cached record")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		logger.Warn().Err(err).Str("key", key).Msg("record cache read failed")
	}
	observability.RecordCacheMiss(ctx, a.metrics, recordCacheNamespace)

	start := time.Now()
	v, err := load(ctx)
	observability.RecordDBMetric(ctx, a.metrics, op, time.Since(start))
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := a.cache.Set(context.WithoutCancel(ctx), key, data, a.ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to cache record")
		}
	}
	return v, nil
}

// FestivalByTitle retrieves a festival by title with caching
func (a *CachedRecordAdapter) FestivalByTitle(ctx context.Context, title string) (*entities.Festival, error) {
	return readThrough(ctx, a, "festival_by_title", festivalCacheKey(title), func(ctx context.Context) (*entities.Festival, error) {
		return a.adapter.FestivalByTitle(ctx, title)
	})
}

// FestivalsByTitles serves cached titles and loads the rest in one batch.
func (a *CachedRecordAdapter) FestivalsByTitles(ctx context.Context, titles []string) ([]*entities.Festival, error) {
	var out []*entities.Festival
	var missing []string
	for _, t := range titles {
		data, err := a.cache.Get(ctx, festivalCacheKey(t))
		if err == nil {
			var f entities.Festival
			if json.Unmarshal(data, &f) == nil {
				observability.RecordCacheHit(ctx, a.metrics, recordCacheNamespace)
				out = append(out, &f)
				continue
			}
		}
		observability.RecordCacheMiss(ctx, a.metrics, recordCacheNamespace)
		missing = append(missing, t)
	}
	if len(missing) == 0 {
		return out, nil
	}

	start := time.Now()
	loaded, err := a.adapter.FestivalsByTitles(ctx, missing)
	observability.RecordDBMetric(ctx, a.metrics, "festivals_by_titles", time.Since(start))
	if err != nil {
		return nil, err
	}
	for _, f := range loaded {
		if data, err := json.Marshal(f); err == nil {
			_ = a.cache.Set(context.WithoutCancel(ctx), festivalCacheKey(f.Title), data, a.ttl)
		}
	}
	return append(out, loaded...), nil
}

// FacilityByTitle retrieves a facility by title with caching
func (a *CachedRecordAdapter) FacilityByTitle(ctx context.Context, title string) (*entities.Facility, error) {
	return readThrough(ctx, a, "facility_by_title", facilityCacheKey(title), func(ctx context.Context) (*entities.Facility, error) {
		return a.adapter.FacilityByTitle(ctx, title)
	})
}

// CourseByTitle retrieves a course by title with caching
func (a *CachedRecordAdapter) CourseByTitle(ctx context.Context, title string) (*entities.Course, error) {
	return readThrough(ctx, a, "course_by_title", courseCacheKey(title), func(ctx context.Context) (*entities.Course, error) {
		return a.adapter.CourseByTitle(ctx, title)
	})
}

func (a *CachedRecordAdapter) ListLocatedFestivals(ctx context.Context) ([]*entities.Festival, error) {
	return readThrough(ctx, a, "list_festivals", locatedFestivalsKey, a.adapter.ListLocatedFestivals)
}

func (a *CachedRecordAdapter) ListLocatedFacilities(ctx context.Context) ([]*entities.Facility, error) {
	return readThrough(ctx, a, "list_facilities", locatedFacilitiesKey, a.adapter.ListLocatedFacilities)
}

func (a *CachedRecordAdapter) ListLocatedCourseRows(ctx context.Context) ([]*entities.CourseRow, error) {
	return readThrough(ctx, a, "list_courses", locatedCourseRowsKey, a.adapter.ListLocatedCourseRows)
}

// Invalidate drops the list caches, typically after a reload.
func (a *CachedRecordAdapter) Invalidate(ctx context.Context) error {
	var errs []error
	for _, key := range []string{locatedFestivalsKey, locatedFacilitiesKey, locatedCourseRowsKey} {
		if err := a.cache.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
