package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/internal/config"
	"MiniCart/pkg/kit"
)

func main() {
	service := "catalog"

	opts, err := config.Load(service, "8082", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := kit.NewLogger(service, opts.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, opts, log)
	if err != nil {
		log.Fatal("open catalog store failed", zap.Error(err))
	}
	defer closeStore()

	s := &catalog.Server{Store: store, Log: log}
	h := catalog.NewHandler(s, kit.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   opts.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, opts.Addr(), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore uses Postgres when DATABASE_URL is set and seeds it with the
// default desserts; otherwise it serves the built-in catalog from memory.
func openStore(ctx context.Context, opts *config.Options, log *zap.Logger) (catalog.Store, func(), error) {
	if opts.DatabaseURL == "" {
		log.Info("using in-memory catalog")
		return catalog.NewMemStore(), func() {}, nil
	}

	db, err := catalog.OpenPostgres(opts.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	store := catalog.NewPostgresStore(db)
	if err := store.Migrate(ctx, catalog.Desserts()); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("using postgres catalog")
	return store, func() { _ = db.Close() }, nil
}
