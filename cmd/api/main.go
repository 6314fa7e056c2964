package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "placereview/internal/adapters/http_server"
	kafkaad "placereview/internal/adapters/kafka"
	"placereview/internal/adapters/naver"
	"placereview/internal/adapters/observability"
	redisad "placereview/internal/adapters/redis"
	"placereview/internal/app"
	"placereview/internal/shared"
	mysqlrepo "placereview/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer db.Close()
	log.Info().Msg("database connection ok")

	if cfg.MigrateOnStart {
		if err := mysqlrepo.Migrate(db.DB); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		log.Info().Msg("schema up to date")
	}

	// deps; optional adapters are only assigned when configured so the
	// interfaces stay nil otherwise
	repo := mysqlrepo.New(db)
	deps := app.Deps{
		Places:  repo,
		Reviews: repo,
		Hasher:  app.NewBcryptHasher(cfg.BcryptCost),
	}

	if nc, err := naver.New(naver.Config{
		BaseURL:      cfg.NaverBaseURL,
		ClientID:     cfg.NaverClientID,
		ClientSecret: cfg.NaverClientSecret,
		Timeout:      cfg.NaverTimeout,
		RPS:          cfg.NaverRPS,
	}); err == nil {
		deps.Search = nc
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkaad.NewPublisher(kafkaad.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer pub.Close()
		deps.Publisher = pub
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("review events enabled")
	}

	handlers := &server.Handlers{S: app.NewServices(deps), PublicBaseURL: cfg.PublicBaseURL}
	if cfg.RedisAddr != "" {
		rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		handlers.Limiter = redisad.NewLimiter(rc, "reviews", cfg.ReviewRateLimit, cfg.ReviewRateWindow)
		log.Info().Int("limit", cfg.ReviewRateLimit).Dur("window", cfg.ReviewRateWindow).Msg("review rate limit enabled")
	}

	// http
	srv := server.New(server.Options{AllowedOrigins: cfg.AllowedOrigins, TrustProxyHeaders: cfg.TrustProxy})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
