package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/resto-pos/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/resto-pos/internal/catalog/infra/httpapi"
	checkoutapp "github.com/dwikikusuma/resto-pos/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/resto-pos/internal/checkout/infra/httpapi"
	"github.com/dwikikusuma/resto-pos/internal/pricing"
	"github.com/dwikikusuma/resto-pos/internal/server"
	shiftapp "github.com/dwikikusuma/resto-pos/internal/shift/app"
	shifthttp "github.com/dwikikusuma/resto-pos/internal/shift/infra/httpapi"
	"github.com/dwikikusuma/resto-pos/pkg/config"
	"github.com/dwikikusuma/resto-pos/pkg/logger"
	"github.com/dwikikusuma/resto-pos/pkg/shutdown"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service:   "pos",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	mode, err := pricing.ParseMode(cfg.TaxMode)
	if err != nil {
		log.Error("bad tax mode", slog.Any("err", err))
		os.Exit(1)
	}
	params := pricing.Params{Mode: mode, Rate: decimal.NewFromFloat(cfg.VATRate)}

	backendHTTP := &http.Client{Timeout: 15 * time.Second}
	catalogClient := cataloghttp.NewClient(cfg.BackendURL, cfg.BackendToken, backendHTTP)
	orderClient := checkouthttp.NewClient(cfg.BackendURL, cfg.BackendToken, backendHTTP)
	shiftClient := shifthttp.NewClient(cfg.BackendURL, cfg.BackendToken, backendHTTP)

	snapshot := catalogapp.NewSnapshot(catalogClient)
	cart := cartdomain.NewCart()
	checkoutSvc := checkoutapp.NewService(cart, snapshot, orderClient, params, log)
	tracker := shiftapp.NewTracker(shiftClient, time.Now, log)

	// Best-effort warmup; both are retriable through the facade.
	warmCtx, warmCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := snapshot.Load(warmCtx); err != nil {
		log.Warn("initial catalog load failed, reload via POST /catalog/reload", slog.Any("err", err))
	}
	if _, err := tracker.Init(warmCtx); err != nil {
		log.Warn("shift init failed, start via POST /shift/start", slog.Any("err", err))
	}
	warmCancel()

	srv := server.New(log, snapshot, cart, checkoutSvc, tracker, cfg.Currency)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("pos server starting", slog.String("addr", addr), slog.String("tax_mode", cfg.TaxMode))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}
