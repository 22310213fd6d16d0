package routes

import (
	"context"
	"net/http"

	"github.com/ericyum/tour-agent-backend/internal/api/handlers"
	"github.com/ericyum/tour-agent-backend/internal/api/middleware"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	rankingHandler   *handlers.RankingHandler
	sentimentHandler *handlers.SentimentHandler
	nearbyHandler    *handlers.NearbyHandler
	recordHandler    *handlers.RecordHandler

	repo           repositories.RecordRepository
	health         HealthChecker
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	rankingHandler *handlers.RankingHandler,
	sentimentHandler *handlers.SentimentHandler,
	nearbyHandler *handlers.NearbyHandler,
	recordHandler *handlers.RecordHandler,
	repo repositories.RecordRepository,
	health HealthChecker,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		rankingHandler:   rankingHandler,
		sentimentHandler: sentimentHandler,
		nearbyHandler:    nearbyHandler,
		recordHandler:    recordHandler,
		repo:             repo,
		health:           health,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthCheck)

	// Ranking
	r.mux.HandleFunc("POST /api/festivals/ranking", r.rankingHandler.RankFestivals)
	r.mux.HandleFunc("POST /api/places/ranking", r.rankingHandler.RankPlaces)

	// Sentiment
	r.mux.HandleFunc("GET /api/festivals/{name}/sentiment", r.sentimentHandler.GetSentiment)

	// Proximity
	r.mux.HandleFunc("POST /api/nearby/search", r.nearbyHandler.Search)

	// Records
	r.mux.HandleFunc("GET /api/festivals/{name}", r.recordHandler.GetFestival)
	r.mux.HandleFunc("GET /api/facilities/{title}", r.recordHandler.GetFacility)
	r.mux.HandleFunc("GET /api/courses/{title}", r.recordHandler.GetCourse)
	r.mux.HandleFunc("GET /api/search", r.recordHandler.Search)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoadersMiddleware(r.repo)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	if r.health != nil {
		if err := r.health.Ping(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		return
	}
}
