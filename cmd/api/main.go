package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/digitalfte/taskvault/internal/adapters/http"
	"github.com/digitalfte/taskvault/internal/bootstrap"
	"github.com/digitalfte/taskvault/internal/config"
	"github.com/digitalfte/taskvault/internal/observability/logging"
	"github.com/digitalfte/taskvault/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("taskvault-api", cfg.LogLevel)
	httpMetrics := metrics.NewHTTPServerMetrics("taskvault-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	limiter := httpadapter.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, httpMetrics.RateLimited)
	router := httpadapter.NewRouter(
		app.TriageUC,
		app.LifecycleUC,
		app.SummarizeUC,
		app.Journal,
		app.Vault,
		limiter,
	).Handler()

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", router)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
