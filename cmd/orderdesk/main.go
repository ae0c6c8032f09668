package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"orderdesk/internal/channel"
	"orderdesk/internal/config"
	"orderdesk/internal/handler"
	"orderdesk/internal/mw"
	"orderdesk/internal/service"
	"orderdesk/internal/sheets"
	"orderdesk/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.Open(context.Background(), cfg.StoreDSN)
	if err != nil {
		logger.Fatal("failed to open dispatch store", zap.Error(err))
	}
	defer st.Close()

	// Services
	tokens := sheets.NewTokenProvider(cfg.Sheets.CredentialsPath, logger, sheets.WithTokenURL(cfg.Sheets.TokenURL))
	sheetsClient := sheets.NewClient(tokens, logger, sheets.WithEndpoint(cfg.Sheets.APIEndpoint))
	resolver := channel.NewResolver(cfg.Sheets.DefaultChannel, cfg.Sheets.Channels, cfg.Sheets.Legacy)
	mock := service.NewMockRepository(cfg.MockCompletedPath, cfg.MockAbandonedPath, logger)

	orderSvc := service.NewOrderService(resolver, sheetsClient, mock, st, logger, service.WithLocation(cfg.Location))
	dispatchSvc := service.NewDispatchService(st, service.NewWebhookClient(), cfg.WebhookURL, logger)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", handler.HealthHandler())

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/completed", handler.CompletedOrdersHandler(orderSvc, logger))
		r.Get("/abandoned", handler.AbandonedOrdersHandler(orderSvc, logger))

		r.With(httprate.LimitByIP(cfg.DispatchRateLimit, time.Minute)).
			Post("/{orderId}/dispatch", handler.DispatchOrderHandler(dispatchSvc, logger))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("starting server",
		zap.String("addr", cfg.RunAddress),
		zap.String("environment", cfg.Environment),
		zap.String("default_channel", resolver.DefaultKey()),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(environment, level string) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if environment == "production" {
		zcfg = zap.NewProductionConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl

	return zcfg.Build()
}
