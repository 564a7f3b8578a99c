// Package main boots the real-time catalog and cart HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecomm-labs/realtime-catalog/internal/broadcast"
	"github.com/ecomm-labs/realtime-catalog/internal/cart"
	"github.com/ecomm-labs/realtime-catalog/internal/catalog"
	"github.com/ecomm-labs/realtime-catalog/internal/config"
	httpapi "github.com/ecomm-labs/realtime-catalog/internal/http"
	"github.com/ecomm-labs/realtime-catalog/internal/idgen"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
	"github.com/ecomm-labs/realtime-catalog/internal/watch"
	"github.com/ecomm-labs/realtime-catalog/internal/ws"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		obs.Logger.Error("data_dir_create_failed", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	ids := idgen.New(cfg.ProductIDMax)
	bus := broadcast.New()

	cat := catalog.New(cfg.ProductsPath(), ids, bus)
	if err := cat.Load(); err != nil {
		obs.Logger.Error("catalog_load_failed", "error", err)
		os.Exit(1)
	}
	carts := cart.New(cfg.CartsPath(), ids, cat)
	if err := carts.Load(); err != nil {
		obs.Logger.Error("carts_load_failed", "error", err)
		os.Exit(1)
	}

	watcher, err := watch.New(cfg.ProductsPath(), cat, bus, cfg.WatchDebounce)
	if err != nil {
		obs.Logger.Error("watcher_start_failed", "error", err)
		os.Exit(1)
	}

	app := httpapi.NewApp(cfg, cat, carts, ws.NewHub(bus))
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	if err := watcher.Close(); err != nil {
		obs.Logger.Warn("watcher_close_error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
