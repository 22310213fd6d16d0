package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ericyum/tour-agent-backend/internal/adapters/cache"
	"github.com/ericyum/tour-agent-backend/internal/adapters/database"
	"github.com/ericyum/tour-agent-backend/internal/adapters/providers/naver"
	"github.com/ericyum/tour-agent-backend/internal/adapters/providers/scraper"
	"github.com/ericyum/tour-agent-backend/internal/adapters/search"
	"github.com/ericyum/tour-agent-backend/internal/api/handlers"
	"github.com/ericyum/tour-agent-backend/internal/api/routes"
	"github.com/ericyum/tour-agent-backend/internal/application/services"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/gemini"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/llm"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/openai"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/postgres"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/redis"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/typesense"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelEnabled := cfg.OTEL.Enabled && cfg.OTEL.Endpoint != ""
	if otelEnabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
			otelEnabled = false
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, otelEnabled)

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	health := healthChecks{pgClient}
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient.Client(), cache.DefaultPrefix)
		health = append(health, redisClient)
	}

	var recordRepo repositories.RecordRepository = database.NewRecordAdapter(pgClient)
	if cacheProvider != nil {
		recordRepo = database.NewCachedRecordAdapter(recordRepo, cacheProvider, cfg.Cache.RecordTTL, metrics)
	}

	var searchIndex repositories.RecordSearchIndex
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("typesense unavailable, title search disabled")
		} else {
			searchIndex = search.NewTypesenseAdapter(tsClient)
		}
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM backend")
	}
	judge := llm.NewJudge(completer, metrics)
	narrator := llm.NewNarrator(completer, metrics)

	blogSearch := naver.NewBlogSearch(naver.NewClient("naver-search", cfg.Naver))

	var trends providers.TrendProvider = naver.DisabledTrend{}
	if cfg.NaverTrend.ClientID != "" && cfg.NaverTrend.ClientSecret != "" {
		trends = naver.NewTrendSearch(naver.NewClient("naver-datalab", cfg.NaverTrend), cacheProvider, cfg.Cache.TrendTTL, metrics)
	} else {
		log.Warn().Msg("naver datalab credentials missing, trend scores will be 0")
	}

	browser := scraper.NewRodLoader(cfg.Browser)
	defer browser.Close()
	fetcher := scraper.NewFetcher(browser, cacheProvider, cfg.Cache.ContentTTL, metrics)

	acquisition := services.NewReviewAcquisitionService(
		blogSearch,
		fetcher,
		services.NewAcquisitionOptions(cfg.Acquisition, cfg.Ranking),
		metrics,
	)
	reports := services.NewReportService(narrator, cfg.Ranking.PlaceholderImage, cfg.Ranking.NarrativeTimeout)
	ranking := services.NewRankingService(
		acquisition,
		judge,
		judge,
		trends,
		narrator,
		reports,
		services.NewRankingOptions(cfg.Ranking),
		metrics,
	)
	sentiment := services.NewSentimentAnalysisService(
		acquisition,
		judge,
		services.NewSatisfactionClassifier(),
		narrator,
		cfg.Ranking.NarrativeTimeout,
	)
	candidates := services.NewCandidateService(recordRepo, searchIndex)
	proximity := services.NewProximitySearchService(recordRepo)

	router := routes.NewRouter(
		handlers.NewRankingHandler(candidates, ranking),
		handlers.NewSentimentHandler(sentiment),
		handlers.NewNearbyHandler(proximity),
		handlers.NewRecordHandler(candidates),
		recordRepo,
		health,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		// ranking runs scrape and judge many posts
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server stopped")
}

// healthChecks reports the first failing backing store.
type healthChecks []routes.HealthChecker

func (h healthChecks) Ping(ctx context.Context) error {
	for _, c := range h {
		if err := c.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func newCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return openai.NewClient(&cfg.OpenAI)
	default:
		return gemini.NewClient(ctx, &cfg.LLM)
	}
}
