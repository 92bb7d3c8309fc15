package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/quoteflowhq/quoteflow/internal/adapters/http"
	"github.com/quoteflowhq/quoteflow/internal/bootstrap"
	"github.com/quoteflowhq/quoteflow/internal/config"
	"github.com/quoteflowhq/quoteflow/internal/observability/logging"
	"github.com/quoteflowhq/quoteflow/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	app.LLM.SetFailureHook(func(operation string) {
		httpMetrics.RecordLLMFailure("api", operation)
	})

	router := httpadapter.NewRouter(httpadapter.RouterConfig{
		Drafter:       app.DraftUC,
		Finalizer:     app.FinalizeUC,
		Reader:        app.ReadUC,
		Verifier:      app.Verifier,
		Storage:       app.Storage,
		Subscriptions: app.Subscriptions,
		Metrics:       httpMetrics,
		Service:       "api",
		FreeTierRPS:   cfg.FreeTierRPS,
		ProTierRPS:    cfg.ProTierRPS,
		RateBurst:     cfg.RateBurst,
	})

	server := &http.Server{
		Addr:        ":" + cfg.APIPort,
		Handler:     router.Handler(),
		ReadTimeout: 30 * time.Second,
		// Finalization streams stay open for minutes; no write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
}
