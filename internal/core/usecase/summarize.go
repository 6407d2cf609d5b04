package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/digitalfte/taskvault/internal/core/domain"
	"github.com/digitalfte/taskvault/internal/core/ports"
)

// CompletionRecorder feeds completion metrics once a summary is written.
type CompletionRecorder interface {
	TaskCompleted(outcome domain.Outcome, duration time.Duration)
}

// SummarizeUseCase appends the structured outcome summary to a document in
// the terminal folder. It is idempotent: a document that already carries a
// summary section is left untouched and the existing extraction is
// returned.
type SummarizeUseCase struct {
	store     ports.DocumentStore
	mover     ports.DocumentMover
	journal   ports.ActivityJournal
	completed CompletionRecorder
	now       func() time.Time
}

func NewSummarizeUseCase(
	store ports.DocumentStore,
	mover ports.DocumentMover,
	journal ports.ActivityJournal,
	completed CompletionRecorder,
) *SummarizeUseCase {
	return &SummarizeUseCase{
		store:     store,
		mover:     mover,
		journal:   journal,
		completed: completed,
		now:       time.Now,
	}
}

func (uc *SummarizeUseCase) Summarize(ctx context.Context, identity string) (*domain.Summary, error) {
	rel, folder, err := uc.store.Locate(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if folder != domain.FolderDone {
		return nil, domain.WrapError(domain.ErrTransitionRejected, "summarize",
			fmt.Errorf("document %s is in %s, not %s", identity, folder, domain.FolderDone))
	}

	doc, err := uc.store.Read(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	startedAt, completedAt := uc.boundaries(doc)
	summary := domain.ExtractSummary(doc.Body, startedAt, completedAt)

	// Second invocation is a no-op, never a duplicate section.
	if domain.HasSummary(doc.Body) {
		return &summary, nil
	}

	now := uc.now().UTC()
	doc.Body = doc.Body + "\n" + summary.Render(now)
	doc.Meta.Set(domain.MetaSummarizedAt, now.Format(time.RFC3339))
	if err := uc.mover.Rewrite(ctx, rel, doc); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	recordEntry(ctx, uc.journal, domain.ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Action:    domain.ActionSummarize,
		Identity:  identity,
		Status:    doc.Status(),
		Outcome:   summary.Outcome,
		Duration:  summary.Duration,
	})
	if uc.completed != nil {
		uc.completed.TaskCompleted(summary.Outcome, summary.Duration)
	}
	return &summary, nil
}

// boundaries derives the work interval: started_at falls back to the triage
// timestamp, completed_at to now.
func (uc *SummarizeUseCase) boundaries(doc *domain.TaskDocument) (time.Time, time.Time) {
	startedAt, ok := doc.MetaTime(domain.MetaStartedAt)
	if !ok {
		startedAt, _ = doc.MetaTime(domain.MetaTriagedAt)
	}
	completedAt, ok := doc.MetaTime(domain.MetaCompletedAt)
	if !ok {
		completedAt = uc.now().UTC()
	}
	return startedAt, completedAt
}
