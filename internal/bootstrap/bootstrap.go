package bootstrap

import (
	"context"
	"fmt"

	"github.com/digitalfte/taskvault/internal/config"
	"github.com/digitalfte/taskvault/internal/core/ports"
	"github.com/digitalfte/taskvault/internal/core/usecase"
	"github.com/digitalfte/taskvault/internal/infrastructure/journal/localfs"
	"github.com/digitalfte/taskvault/internal/infrastructure/journal/postgres"
	natsqueue "github.com/digitalfte/taskvault/internal/infrastructure/queue/nats"
	"github.com/digitalfte/taskvault/internal/infrastructure/resilience"
	"github.com/digitalfte/taskvault/internal/infrastructure/vault"
)

type App struct {
	Config config.Config

	Vault   *vault.Vault
	Queue   ports.MessageQueue
	Journal ports.ActivityJournal

	TriageUC    ports.InboxTriager
	LifecycleUC ports.TaskLifecycle
	SummarizeUC ports.TaskSummarizer

	closeFn func()
}

// Options carries process-specific collaborators into the shared wiring.
type Options struct {
	// Completed receives outcome metrics from the summarizer; nil in the
	// api process.
	Completed usecase.CompletionRecorder
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	v, err := vault.New(cfg.VaultPath)
	if err != nil {
		return nil, fmt.Errorf("init vault: %w", err)
	}

	journal, closeJournal, err := newJournal(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeJournal()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	triageUC := usecase.NewTriageUseCase(v, v, journal, cfg.WorkerName)
	lifecycleUC := usecase.NewLifecycleUseCase(v, v, journal, cfg.WorkerName)
	summarizeUC := usecase.NewSummarizeUseCase(v, v, journal, opts.Completed)

	return &App{
		Config:  cfg,
		Vault:   v,
		Queue:   queue,
		Journal: journal,

		TriageUC:    triageUC,
		LifecycleUC: lifecycleUC,
		SummarizeUC: summarizeUC,

		closeFn: func() {
			queue.Close()
			closeJournal()
		},
	}, nil
}

func newJournal(ctx context.Context, cfg config.Config) (ports.ActivityJournal, func(), error) {
	switch cfg.JournalBackend {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		journal := postgres.NewJournal(db)
		if err := journal.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return journal, func() { _ = db.Close() }, nil
	default:
		journal, err := localfs.New(cfg.JournalPath)
		if err != nil {
			return nil, nil, err
		}
		return journal, func() { _ = journal.Close() }, nil
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
