package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ericyum/tour-agent-backend/internal/adapters/cache"
	"github.com/ericyum/tour-agent-backend/internal/adapters/database"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/postgres"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/redis"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

func main() {
	var table, path, encoding string
	var batch int
	flag.StringVar(&table, "table", "", "target table (festivals, facilities, courses)")
	flag.StringVar(&path, "file", "", "CSV file to load")
	flag.StringVar(&encoding, "encoding", "cp949", "source encoding (cp949 or utf8)")
	flag.IntVar(&batch, "batch", 500, "rows per insert statement")
	flag.Parse()

	if table == "" || path == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("tour-loader", cfg.Env, false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("failed to open CSV")
	}
	defer f.Close()

	rows, err := readRows(f, encoding)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("failed to read CSV")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	records := database.NewRecordAdapter(pgClient)
	n, err := records.ReplaceTable(ctx, table, rows, batch)
	if err != nil {
		log.Fatal().Err(err).Str("table", table).Msg("load failed")
	}
	log.Info().Str("table", table).Int("rows", n).Int("skipped", len(rows)-n).Msg("load complete")

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, record caches not invalidated")
		return
	}
	defer redisClient.Close()
	cached := database.NewCachedRecordAdapter(records, cache.NewRedisAdapter(redisClient.Client(), cache.DefaultPrefix), cfg.Cache.RecordTTL, nil)
	if err := cached.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate record caches")
	}
}
