package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/livefire2015/ez-amortifier/src/api"
	"github.com/livefire2015/ez-amortifier/src/cache"
	"github.com/livefire2015/ez-amortifier/src/config"
	"github.com/livefire2015/ez-amortifier/src/events"
	"github.com/livefire2015/ez-amortifier/src/logger"
	"github.com/livefire2015/ez-amortifier/src/repository"
	"github.com/livefire2015/ez-amortifier/src/services"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New("amortifier", cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, repository.Config{
		Backend:     repository.Backend(cfg.Storage.Backend),
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open loan repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			baseLogger.Error("failed to close loan repository", zap.Error(err))
		}
	}()

	scheduleCache, closeCache := cache.Open(ctx, cache.Config{
		RedisAddr:   cfg.Cache.RedisAddr,
		TTL:         cfg.Cache.TTL,
		Size:        cfg.Cache.Size,
		CleanupCron: cfg.Cache.CleanupCron,
	}, baseLogger.Named("cache"))
	defer func() {
		if err := closeCache(); err != nil {
			baseLogger.Error("failed to close schedule cache", zap.Error(err))
		}
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, baseLogger.Named("events.amqp"))
		if err != nil {
			baseLogger.Fatal("failed to connect to amqp broker", zap.Error(err))
		}
		publisher = amqpPublisher
	} else {
		baseLogger.Warn("AMQP_URL missing, loan events disabled")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			baseLogger.Error("failed to close event publisher", zap.Error(err))
		}
	}()

	engine := services.NewAmortizationEngine(services.AmortizationConfig{
		Precision:  cfg.Engine.Precision,
		MaxPeriods: cfg.Engine.MaxPeriods,
	})
	loanSvc := services.NewLoanService(repo, engine, scheduleCache, publisher, baseLogger.Named("svc.loans"))
	portfolioSvc := services.NewPortfolioService(loanSvc, cfg.Portfolio.Workers, baseLogger.Named("svc.portfolio"))

	handler := api.NewLoanHandler(loanSvc, portfolioSvc, baseLogger.Named("handlers.loans"))
	router := api.NewRouter(handler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
