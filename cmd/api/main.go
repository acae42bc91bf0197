package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/analysis"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/app"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/approval"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/config"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/lifecycle"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/negotiation"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/risk"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/session"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/stream"
)

func main() {
	cfg := config.Load()

	var store session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for session storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Printf("Using in-memory session storage")
		store = session.NewMemoryStore()
	}

	bus := stream.New()
	machine := lifecycle.New(
		store,
		bus,
		analysis.NewAnalyst(),
		risk.NewAssessor(),
		negotiation.NewStrategist(),
		approval.NewPolicy(),
		lifecycle.Config{
			AutoApproveThreshold: lifecycle.ParseThreshold(cfg.AutoApproveThreshold),
			ProviderTimeout:      cfg.ProviderTimeout,
			MaxNegotiationRounds: cfg.MaxNegotiationRounds,
		},
	)
	service := app.NewService(store, bus, machine)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: SSE streams stay open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Contract lifecycle API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
