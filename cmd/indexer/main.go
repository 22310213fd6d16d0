package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ericyum/tour-agent-backend/internal/adapters/database"
	"github.com/ericyum/tour-agent-backend/internal/adapters/search"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/postgres"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/typesense"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("tour-indexer", cfg.Env, false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset || os.Getenv("RESET_TYPESENSE") == "true"); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}
	index := search.NewTypesenseAdapter(tsClient)

	if reset {
		log.Info().Str("collection", search.CollectionName).Msg("deleting collection before reindex")
		if _, err := tsClient.Client().Collection(search.CollectionName).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	if err := index.InitSchema(ctx); err != nil {
		return err
	}

	docs, err := database.NewRecordAdapter(pgClient).ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	log.Info().Int("records", len(docs)).Msg("indexing records")
	if err := index.Index(ctx, docs); err != nil {
		return err
	}
	log.Info().Int("records", len(docs)).Msg("indexing complete")
	return nil
}
