package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

const actionableBody = `# Fix Broken Link

Priority: P1

## Description

The docs page footer link returns 404 and must point home.

## Acceptance Criteria

- [ ] Locate the broken link
- [ ] Update the target URL
`

func inboxDoc(identity, body string) *domain.TaskDocument {
	return &domain.TaskDocument{Identity: identity, Meta: domain.NewMetadata(), Body: body}
}

func TestTriageActionableDocumentMovesToNeedsAction(t *testing.T) {
	store := newFakeStore()
	mover := &fakeMover{}
	journal := &fakeJournal{}
	rel := "Inbox/20260310-0900-fix-broken-link.md"
	store.docs[rel] = inboxDoc("20260310-0900-fix-broken-link", actionableBody)

	uc := NewTriageUseCase(store, mover, journal, "taskvault-worker")
	uc.now = func() time.Time { return fixedNow }

	report, err := uc.Triage(context.Background(), rel)
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if report.MovedTo != "Needs_Action/20260310-0900-fix-broken-link.md" {
		t.Fatalf("unexpected destination %q", report.MovedTo)
	}
	if len(mover.moves) != 1 {
		t.Fatalf("expected one move, got %d", len(mover.moves))
	}

	fields := mover.moves[0].fields
	if got, _ := fieldValue(fields, domain.MetaStatus); got != string(domain.StatusNeedsAction) {
		t.Fatalf("status field = %q", got)
	}
	if got, _ := fieldValue(fields, domain.MetaTriagedAt); got != fixedNow.Format(time.RFC3339) {
		t.Fatalf("triaged_at field = %q", got)
	}
	if got, _ := fieldValue(fields, domain.MetaMoveReason); got != string(domain.ReasonTriage) {
		t.Fatalf("move reason field = %q", got)
	}
	if got, _ := fieldValue(fields, domain.MetaSLADeadline); got != fixedNow.Add(4*time.Hour).Format(time.RFC3339) {
		t.Fatalf("sla_deadline field = %q", got)
	}

	// One triage entry, one move entry.
	if len(journal.entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(journal.entries))
	}
	if journal.entries[0].Action != domain.ActionTriage || journal.entries[1].Action != domain.ActionMove {
		t.Fatalf("unexpected journal actions: %s, %s",
			journal.entries[0].Action, journal.entries[1].Action)
	}
}

func TestTriageBlockedDocumentRenamesInPlace(t *testing.T) {
	store := newFakeStore()
	mover := &fakeMover{}
	rel := "Inbox/20260310-0900-buy-domain.md"
	body := strings.Replace(actionableBody,
		"The docs page footer link returns 404 and must point home.",
		"Purchase is blocked by procurement approval for the new registrar.",
		1)
	store.docs[rel] = inboxDoc("20260310-0900-buy-domain", body)

	uc := NewTriageUseCase(store, mover, &fakeJournal{}, "taskvault-worker")
	uc.now = func() time.Time { return fixedNow }

	report, err := uc.Triage(context.Background(), rel)
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if report.MovedTo != "Inbox/[BLOCKED]-20260310-0900-buy-domain.md" {
		t.Fatalf("unexpected destination %q", report.MovedTo)
	}
	if got, _ := fieldValue(mover.moves[0].fields, domain.MetaMoveReason); got != string(domain.ReasonBlocked) {
		t.Fatalf("move reason field = %q", got)
	}
}

func TestTriageIncompleteDocumentRenamesForClarification(t *testing.T) {
	store := newFakeStore()
	mover := &fakeMover{}
	rel := "Inbox/20260310-0900-vague-ask.md"
	store.docs[rel] = inboxDoc("20260310-0900-vague-ask", "# Vague ask\n\n## Description\n\n")

	uc := NewTriageUseCase(store, mover, &fakeJournal{}, "taskvault-worker")
	uc.now = func() time.Time { return fixedNow }

	report, err := uc.Triage(context.Background(), rel)
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if report.MovedTo != "Inbox/[CLARIFICATION]-20260310-0900-vague-ask.md" {
		t.Fatalf("unexpected destination %q", report.MovedTo)
	}
}

func TestTriageAlreadyTriagedIsRejectedBeforeMoving(t *testing.T) {
	store := newFakeStore()
	mover := &fakeMover{}
	rel := "Inbox/20260310-0900-fix-broken-link.md"
	doc := inboxDoc("20260310-0900-fix-broken-link", actionableBody)
	doc.Meta.Set(domain.MetaStatus, string(domain.StatusNeedsAction))
	store.docs[rel] = doc

	uc := NewTriageUseCase(store, mover, &fakeJournal{}, "taskvault-worker")
	_, err := uc.Triage(context.Background(), rel)
	if !domain.IsKind(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if len(mover.moves) != 0 {
		t.Fatalf("mover must not be called for an already-triaged document")
	}
}

func TestTriageJournalFailureDoesNotFailTheOperation(t *testing.T) {
	store := newFakeStore()
	mover := &fakeMover{}
	journal := &fakeJournal{appendErr: errors.New("journal down")}
	rel := "Inbox/20260310-0900-fix-broken-link.md"
	store.docs[rel] = inboxDoc("20260310-0900-fix-broken-link", actionableBody)

	uc := NewTriageUseCase(store, mover, journal, "taskvault-worker")
	uc.now = func() time.Time { return fixedNow }

	if _, err := uc.Triage(context.Background(), rel); err != nil {
		t.Fatalf("journal failure must not fail triage: %v", err)
	}
	if len(mover.moves) != 1 {
		t.Fatalf("move must still happen, got %d", len(mover.moves))
	}
}

func TestTriageMoveConflictPropagates(t *testing.T) {
	store := newFakeStore()
	mover := &fakeMover{moveErr: domain.WrapError(domain.ErrDestinationConflict, "move document",
		errors.New("destination exists"))}
	journal := &fakeJournal{}
	rel := "Inbox/20260310-0900-fix-broken-link.md"
	store.docs[rel] = inboxDoc("20260310-0900-fix-broken-link", actionableBody)

	uc := NewTriageUseCase(store, mover, journal, "taskvault-worker")
	_, err := uc.Triage(context.Background(), rel)
	if !domain.IsKind(err, domain.ErrDestinationConflict) {
		t.Fatalf("expected ErrDestinationConflict, got %v", err)
	}
	if len(journal.entries) != 0 {
		t.Fatalf("no journal entries on a failed move")
	}
}
