package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"placereview/internal/adapters/naver"
	"placereview/internal/adapters/observability"
	"placereview/internal/app"
	"placereview/internal/shared"
	mysqlrepo "placereview/internal/storage/mysql"
)

// importer registers places straight from search results, one search per
// query given on the command line or in IMPORT_QUERIES.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	queries := os.Args[1:]
	if len(queries) == 0 {
		queries = cfg.ImportQueries
	}
	if len(queries) == 0 {
		log.Fatal().Msg("no queries: pass them as arguments or set IMPORT_QUERIES")
	}
	workers := cfg.ImportWorkers
	if workers <= 0 {
		workers = 1
	}

	log.Info().Int("queries", len(queries)).Int("workers", workers).Msg("importer starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := mysqlrepo.Migrate(db.DB); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
	}

	client, err := naver.New(naver.Config{
		BaseURL:      cfg.NaverBaseURL,
		ClientID:     cfg.NaverClientID,
		ClientSecret: cfg.NaverClientSecret,
		Timeout:      cfg.NaverTimeout,
		RPS:          cfg.NaverRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize search client")
	}

	repo := mysqlrepo.New(db)
	svcs := app.NewServices(app.Deps{Places: repo, Reviews: repo, Search: client})

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var imported, failed atomic.Int64

	for _, q := range queries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("import interrupted")
			break
		}

		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			defer sem.Release(1)

			rep, f := svcs.ImportSearchResults(ctx, query).Unwrap()
			if f != nil {
				failed.Add(1)
				log.Warn().Str("query", query).Str("code", string(f.Code)).Msg(f.Message)
				return
			}
			imported.Add(int64(rep.Imported))
			if rep.Failed > 0 {
				failed.Add(1)
			}
			log.Info().Str("query", query).Int("places", rep.Imported).Int("failed", rep.Failed).Msg("query imported")
		}(q)
	}

	wg.Wait()
	log.Info().Int64("places", imported.Load()).Int64("failed_queries", failed.Load()).Msg("import completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
