package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCart/internal/config"
	"MiniCart/internal/gateway"
	"MiniCart/internal/session"
	"MiniCart/pkg/kit"
)

func main() {
	service := "gateway"

	opts, err := config.Load(service, "8080", os.Args[1:])
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

	catalogURL := opts.CatalogURL
	if catalogURL == "" {
		catalogURL = "http://catalog:8082"
	}

	deps := gateway.Deps{
		CatalogURL: catalogURL,
		CartURL:    opts.CartURL,
	}
	// Without the secret the gateway still proxies; the cart service checks tokens itself.
	if opts.CheckSessionSecret() == nil {
		deps.Tokens = session.NewTokenMaker(opts.SessionSecret)
	} else {
		log.Warn("SESSION_SECRET not set, session tokens are checked by the cart service only")
	}

	h, err := gateway.NewHandler(deps, kit.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   opts.MetricsToken,
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := kit.RunHTTPServer(ctx, opts.Addr(), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
