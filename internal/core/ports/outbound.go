package ports

import (
	"context"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// DocumentStore reads task documents from the vault.
type DocumentStore interface {
	Read(ctx context.Context, rel string) (*domain.TaskDocument, error)
	// Locate finds a document by identity, searching every folder and
	// Inbox prefix variant. Returns the vault-relative path and folder.
	Locate(ctx context.Context, identity string) (string, domain.Folder, error)
	CountByFolder(ctx context.Context) (map[domain.Folder]int, error)
}

// DocumentMover relocates and rewrites documents under the atomic
// write-verify-delete-verify protocol.
type DocumentMover interface {
	Move(ctx context.Context, src, dst string, fields []domain.Field, overwrite bool) error
	// Rewrite replaces a document in place, atomically from a reader's
	// perspective.
	Rewrite(ctx context.Context, rel string, doc *domain.TaskDocument) error
}

// ActivityJournal is the append-only audit log. Append failures never roll
// back the operation that triggered them.
type ActivityJournal interface {
	Append(ctx context.Context, entry domain.ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

// MessageQueue carries inbox-arrival events from the watcher to the worker.
type MessageQueue interface {
	PublishTaskArrived(ctx context.Context, rel string) error
	SubscribeTaskArrived(ctx context.Context, handler func(context.Context, string) error) error
}
