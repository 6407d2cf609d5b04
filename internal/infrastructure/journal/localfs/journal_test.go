package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := New(filepath.Join(t.TempDir(), "activity.jsonl"))
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func entryAt(n int, ts time.Time) domain.ActivityEntry {
	return domain.ActivityEntry{
		ID:        string(rune('a' + n)),
		Timestamp: ts,
		Action:    domain.ActionMove,
		Identity:  "20260310-0900-fix-broken-link",
		Reason:    domain.ReasonTriage,
	}
}

func TestAppendThenRecentNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := j.Append(context.Background(), entryAt(i, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := j.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "c" || entries[1].ID != "b" {
		t.Fatalf("expected newest first, got %s then %s", entries[0].ID, entries[1].ID)
	}
}

func TestRecentOnEmptyJournal(t *testing.T) {
	j := newTestJournal(t)
	entries, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestRecentSkipsTornTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.jsonl")
	j, err := New(path)
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	defer j.Close()

	if err := j.Append(context.Background(), entryAt(0, time.Now().UTC())); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	// Simulate a crashed writer leaving a half-written record.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open journal file: %v", err)
	}
	if _, err := f.WriteString(`{"id":"torn`); err != nil {
		t.Fatalf("write torn line: %v", err)
	}
	f.Close()

	entries, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Fatalf("torn line must be skipped, got %v", entries)
	}
}
