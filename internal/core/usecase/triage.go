package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/digitalfte/taskvault/internal/core/domain"
	"github.com/digitalfte/taskvault/internal/core/ports"
)

// TriageUseCase classifies a freshly arrived Inbox document, records the
// triage metadata, and performs the move or rename the classification
// implies.
type TriageUseCase struct {
	store   ports.DocumentStore
	mover   ports.DocumentMover
	journal ports.ActivityJournal
	actor   string
	now     func() time.Time
}

func NewTriageUseCase(
	store ports.DocumentStore,
	mover ports.DocumentMover,
	journal ports.ActivityJournal,
	actor string,
) *TriageUseCase {
	return &TriageUseCase{
		store:   store,
		mover:   mover,
		journal: journal,
		actor:   actor,
		now:     time.Now,
	}
}

func (uc *TriageUseCase) Triage(ctx context.Context, rel string) (*domain.TriageReport, error) {
	doc, err := uc.store.Read(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("triage: %w", err)
	}
	if doc.Status() != domain.StatusNeedsTriage {
		return nil, domain.WrapError(domain.ErrAlreadyProcessed, "triage",
			fmt.Errorf("document %s already has status %s", doc.Identity, doc.Status()))
	}

	now := uc.now().UTC()
	result := domain.Classify(doc.Body, now)

	dst, reason := triageDestination(doc.Identity, result.Status)
	if err := domain.ValidateTransition(domain.FolderInbox, domain.FolderFor(result.Status), reason); err != nil {
		return nil, fmt.Errorf("triage: %w", err)
	}

	fields := triageFields(result, now)
	fields = append(fields, moveFields(rel, dst, reason, uc.actor, now)...)
	if err := uc.mover.Move(ctx, rel, dst, fields, false); err != nil {
		return nil, fmt.Errorf("triage: %w", err)
	}

	uc.record(ctx, domain.ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Action:    domain.ActionTriage,
		Identity:  doc.Identity,
		Status:    result.Status,
		Priority:  result.Priority,
		Detail:    fmt.Sprintf("completeness=%d complexity=%s", result.CompletenessScore, result.Complexity),
	})
	uc.record(ctx, domain.ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Action:    domain.ActionMove,
		Identity:  doc.Identity,
		Status:    result.Status,
		Reason:    reason,
		MovedFrom: rel,
		MovedTo:   dst,
	})

	return &domain.TriageReport{Identity: doc.Identity, Result: result, MovedTo: dst}, nil
}

// triageDestination projects a triage status onto the implied destination
// path and move reason. Clarification and blocked outcomes stay in Inbox
// under a renamed prefix.
func triageDestination(identity string, status domain.Status) (string, domain.Reason) {
	name := domain.StatusPrefix(status) + identity + domain.DocumentExt
	switch status {
	case domain.StatusNeedsAction:
		return filepath.Join(string(domain.FolderNeedsAction), name), domain.ReasonTriage
	case domain.StatusBlocked:
		return filepath.Join(string(domain.FolderInbox), name), domain.ReasonBlocked
	default:
		return filepath.Join(string(domain.FolderInbox), name), domain.ReasonClarification
	}
}

func triageFields(result domain.TriageResult, now time.Time) []domain.Field {
	return []domain.Field{
		{Key: domain.MetaTriagedAt, Value: now.Format(time.RFC3339)},
		{Key: domain.MetaStatus, Value: string(result.Status)},
		{Key: domain.MetaPriority, Value: string(result.Priority)},
		{Key: domain.MetaComplexity, Value: string(result.Complexity)},
		{Key: domain.MetaEstimatedEffort, Value: result.EstimatedEffort},
		{Key: domain.MetaCompleteness, Value: strconv.Itoa(result.CompletenessScore)},
		{Key: domain.MetaSLADeadline, Value: result.SLADeadline.Format(time.RFC3339)},
	}
}

func moveFields(from, to string, reason domain.Reason, actor string, now time.Time) []domain.Field {
	return []domain.Field{
		{Key: domain.MetaMovedAt, Value: now.Format(time.RFC3339)},
		{Key: domain.MetaMovedFrom, Value: from},
		{Key: domain.MetaMovedTo, Value: to},
		{Key: domain.MetaMovedBy, Value: actor},
		{Key: domain.MetaMoveReason, Value: string(reason)},
	}
}

// record appends to the journal. Journal failure never rolls back the
// already-committed operation; it only degrades audit completeness.
func (uc *TriageUseCase) record(ctx context.Context, entry domain.ActivityEntry) {
	recordEntry(ctx, uc.journal, entry)
}

func recordEntry(ctx context.Context, journal ports.ActivityJournal, entry domain.ActivityEntry) {
	if journal == nil {
		return
	}
	if err := journal.Append(ctx, entry); err != nil {
		slog.Warn("activity_journal_append_failed",
			"action", entry.Action,
			"identity", entry.Identity,
			"error", err,
		)
	}
}
