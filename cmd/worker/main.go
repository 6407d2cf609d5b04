package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/digitalfte/taskvault/internal/bootstrap"
	"github.com/digitalfte/taskvault/internal/config"
	"github.com/digitalfte/taskvault/internal/core/domain"
	"github.com/digitalfte/taskvault/internal/infrastructure/watcher"
	"github.com/digitalfte/taskvault/internal/observability/logging"
	"github.com/digitalfte/taskvault/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("taskvault-worker", cfg.LogLevel)
	pipeline := metrics.NewPipelineMetrics("taskvault-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Completed: pipeline})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", pipeline.Handler())
		logger.Info("metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, mux); err != nil {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()

	inboxWatcher := watcher.New(app.Vault.Root(), app.Vault, app.Queue, logger,
		time.Duration(cfg.WatchDebounceMS)*time.Millisecond)
	go func() {
		if err := inboxWatcher.Run(ctx); err != nil {
			logger.Error("inbox_watcher_failed", "error", err)
		}
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeTaskArrived(ctx, func(handlerCtx context.Context, rel string) error {
		triageCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		pipeline.StartTriage()
		start := time.Now()
		report, err := app.TriageUC.Triage(triageCtx, rel)

		if err != nil && domain.IsKind(err, domain.ErrAlreadyProcessed) {
			// Another worker won the race; benign.
			pipeline.FinishTriage("", time.Since(start), nil)
			logger.Info("triage_skipped", "path", rel)
			return nil
		}
		if err != nil {
			pipeline.FinishTriage("", time.Since(start), err)
			return err
		}

		pipeline.FinishTriage(report.Result.Status, time.Since(start), nil)
		pipeline.DocumentMoved(moveReason(report.Result.Status))
		logger.Info("triage_done",
			"identity", report.Identity,
			"status", report.Result.Status,
			"priority", report.Result.Priority,
			"moved_to", report.MovedTo,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func moveReason(status domain.Status) domain.Reason {
	switch status {
	case domain.StatusBlocked:
		return domain.ReasonBlocked
	case domain.StatusNeedsClarification:
		return domain.ReasonClarification
	default:
		return domain.ReasonTriage
	}
}
