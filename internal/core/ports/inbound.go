package ports

import (
	"context"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// InboxTriager classifies a newly arrived document and performs the implied
// move or rename.
type InboxTriager interface {
	Triage(ctx context.Context, rel string) (*domain.TriageReport, error)
}

// TaskLifecycle is the handback surface for the external execution layer:
// start work on a triaged task, hand it back, complete it, or reopen it.
type TaskLifecycle interface {
	Start(ctx context.Context, identity string) error
	HandBack(ctx context.Context, identity string, reason domain.Reason) error
	Complete(ctx context.Context, identity string) error
	Reopen(ctx context.Context, identity string) error
}

// TaskSummarizer appends the outcome summary to a completed document.
type TaskSummarizer interface {
	Summarize(ctx context.Context, identity string) (*domain.Summary, error)
}
