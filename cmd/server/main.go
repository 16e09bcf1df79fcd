// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/friendgraph/internal/config"
	"github.com/jason-s-yu/friendgraph/internal/friends"
	"github.com/jason-s-yu/friendgraph/internal/handlers"
	"github.com/jason-s-yu/friendgraph/internal/kv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer closeStore()

	hub := handlers.NewSnapshotHub()
	p := friends.New(ctx, kv.Prefixed(store, cfg.KeyPrefix),
		friends.WithLogger(logger),
		friends.WithOnChange(hub.Publish),
	)
	defer p.Close()

	server := &http.Server{
		Handler:     handlers.NewRouter(logger, p, hub),
		ReadTimeout: 10 * time.Second,
	}

	l, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"addr":    l.Addr().String(),
		"backend": cfg.StoreBackend,
	}).Info("Running")

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("failed to serve: %v", err)
		}
	case <-ctx.Done():
		logger.Info("terminating")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}

// openStore connects the configured durable store backend.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		r, err := kv.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	case config.BackendPostgres:
		pg, err := kv.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return kv.NewMemory(), func() {}, nil
	}
}
