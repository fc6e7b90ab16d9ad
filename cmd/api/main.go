package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-product-search/internal/auth"
	"github.com/ariefcatur/go-product-search/internal/catalog"
	"github.com/ariefcatur/go-product-search/internal/config"
	"github.com/ariefcatur/go-product-search/internal/httpx"
	kafkax "github.com/ariefcatur/go-product-search/internal/kafka"
	"github.com/ariefcatur/go-product-search/internal/logx"
	"github.com/ariefcatur/go-product-search/internal/postgres"
	"github.com/ariefcatur/go-product-search/internal/redisx"
	"github.com/ariefcatur/go-product-search/internal/search"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.ServiceName, cfg.LogLevel, cfg.LogPretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.SearchTopic, 1024, log)
	prod.Start(ctx)

	revocations := &redisx.Revocations{R: rdb}
	h := &httpx.CatalogHandler{
		Store:        &catalog.Repo{DB: db},
		Verifier:     auth.NewJWTVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, revocations),
		Revocations:  revocations,
		Normalizer:   search.Normalizer{MaxLen: cfg.MaxQueryLen},
		Producer:     prod,
		Popular:      &redisx.PopularTerms{R: rdb},
		Service:      cfg.ServiceName,
		MaxBodyBytes: cfg.MaxBodyBytes,
		DebugErrors:  cfg.DebugErrors,
	}
	router := httpx.NewRouter(log)
	h.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
}
