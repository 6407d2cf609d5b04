package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/digitalfte/taskvault/internal/core/domain"
	"github.com/digitalfte/taskvault/internal/core/ports"
)

// LifecycleUseCase is the handback surface for the external execution
// layer: it performs every post-triage transition of the legal-move table.
type LifecycleUseCase struct {
	store   ports.DocumentStore
	mover   ports.DocumentMover
	journal ports.ActivityJournal
	actor   string
	now     func() time.Time
}

func NewLifecycleUseCase(
	store ports.DocumentStore,
	mover ports.DocumentMover,
	journal ports.ActivityJournal,
	actor string,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		store:   store,
		mover:   mover,
		journal: journal,
		actor:   actor,
		now:     time.Now,
	}
}

// Start moves an Inbox document straight to Needs_Action when the execution
// layer picks it up directly.
func (uc *LifecycleUseCase) Start(ctx context.Context, identity string) error {
	now := uc.now().UTC()
	extra := []domain.Field{{Key: domain.MetaStartedAt, Value: now.Format(time.RFC3339)}}
	return uc.transition(ctx, identity, domain.FolderNeedsAction, domain.ReasonStarted,
		domain.StatusInProgress, extra)
}

// HandBack returns a Needs_Action document to the Inbox because work
// stalled. Only clarification and blocked are legal handback reasons.
func (uc *LifecycleUseCase) HandBack(ctx context.Context, identity string, reason domain.Reason) error {
	status := domain.StatusNeedsClarification
	if reason == domain.ReasonBlocked {
		status = domain.StatusBlocked
	}
	return uc.transition(ctx, identity, domain.FolderInbox, reason, status, nil)
}

// Complete moves a worked document into the terminal folder.
func (uc *LifecycleUseCase) Complete(ctx context.Context, identity string) error {
	now := uc.now().UTC()
	extra := []domain.Field{{Key: domain.MetaCompletedAt, Value: now.Format(time.RFC3339)}}
	return uc.transition(ctx, identity, domain.FolderDone, domain.ReasonCompleted,
		domain.StatusDone, extra)
}

// Reopen pulls a Done document back into Needs_Action.
func (uc *LifecycleUseCase) Reopen(ctx context.Context, identity string) error {
	return uc.transition(ctx, identity, domain.FolderNeedsAction, domain.ReasonReopened,
		domain.StatusNeedsAction, nil)
}

func (uc *LifecycleUseCase) transition(
	ctx context.Context,
	identity string,
	to domain.Folder,
	reason domain.Reason,
	status domain.Status,
	extra []domain.Field,
) error {
	src, from, err := uc.store.Locate(ctx, identity)
	if err != nil {
		return fmt.Errorf("transition %s: %w", reason, err)
	}

	if err := domain.ValidateTransition(from, to, reason); err != nil {
		return fmt.Errorf("transition %s: %w", reason, err)
	}

	now := uc.now().UTC()
	name := domain.StatusPrefix(status) + identity + domain.DocumentExt
	dst := filepath.Join(string(to), name)

	fields := []domain.Field{{Key: domain.MetaStatus, Value: string(status)}}
	fields = append(fields, extra...)
	fields = append(fields, moveFields(src, dst, reason, uc.actor, now)...)

	if err := uc.mover.Move(ctx, src, dst, fields, false); err != nil {
		return fmt.Errorf("transition %s: %w", reason, err)
	}

	recordEntry(ctx, uc.journal, domain.ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Action:    domain.ActionMove,
		Identity:  identity,
		Status:    status,
		Reason:    reason,
		MovedFrom: src,
		MovedTo:   dst,
	})
	return nil
}
