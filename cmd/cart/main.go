package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCart/internal/cartsvc"
	"MiniCart/internal/catalog"
	"MiniCart/internal/config"
	"MiniCart/internal/presenter"
	"MiniCart/internal/session"
	"MiniCart/internal/view"
	"MiniCart/pkg/kit"
)

func main() {
	service := "cart"

	opts, err := config.Load(service, "8083", os.Args[1:])
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

	if err := opts.CheckSessionSecret(); err != nil {
		log.Fatal("bad config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store catalog.Store
	if opts.CatalogURL != "" {
		store = catalog.NewClient(opts.CatalogURL)
		log.Info("using remote catalog", zap.String("url", opts.CatalogURL))
	} else {
		store = catalog.NewMemStore()
		log.Info("using in-memory catalog")
	}

	reg := prometheus.NewRegistry()
	sessions := session.NewRegistry(store, session.Config{
		IdleTTL: opts.SessionTTL,
		Presenter: presenter.Options{
			View:                  view.Options{ShowCategory: opts.ShowCategory},
			ResetSelectorAfterAdd: opts.ResetSelector,
		},
	}, log, session.NewMetrics(reg))

	go sessions.Run(ctx, session.DefaultSweepInterval)

	s := &cartsvc.Server{
		Sessions: sessions,
		Tokens:   session.NewTokenMaker(opts.SessionSecret),
		Catalog:  store,
		Log:      log,
		TokenTTL: opts.TokenTTL,
	}

	h := cartsvc.NewHandler(s, cartsvc.HTTPDeps{
		HTTPDeps: kit.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: true,
			MetricsToken:   opts.MetricsToken,
		},
		SessionsPerMinute: opts.SessionRateLimit,
		TrustedProxies:    opts.TrustedProxies,
	})

	if err := kit.RunHTTPServer(ctx, opts.Addr(), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
