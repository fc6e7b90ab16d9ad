package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-product-search/internal/config"
	kafkax "github.com/ariefcatur/go-product-search/internal/kafka"
	"github.com/ariefcatur/go-product-search/internal/logx"
	"github.com/ariefcatur/go-product-search/internal/redisx"
	"github.com/ariefcatur/go-product-search/internal/searchstats"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	name := cfg.ServiceName + "-stats"
	log := logx.New(name, cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &searchstats.Service{
		Dedup: &searchstats.RedisDeduper{R: rdb, Service: "searchstats"},
		Terms: &redisx.PopularTerms{R: rdb},
		Log:   log,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.StatsGroup, cfg.SearchTopic, cfg.StatsWorkers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().Str("group", cfg.StatsGroup).Str("topic", cfg.SearchTopic).Int("workers", cfg.StatsWorkers).Msg("search stats consumer started")
		if err := cons.Start(ctx, svc.HandleSearchPerformed); err != nil {
			log.Error().Err(err).Msg("consumer exit")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info().Msg("shutting down consumer")
	case <-done:
	}
	cancel()
	<-done
}
