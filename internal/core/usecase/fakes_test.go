package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// Hand-rolled fakes, one per outbound port. Each call is recorded so tests
// can assert on ordering and arguments.

type fakeStore struct {
	docs       map[string]*domain.TaskDocument
	locateRel  string
	locateIn   domain.Folder
	locateErr  error
	readErr    error
	readCalls  []string
	locateIDs  []string
	folderHits map[domain.Folder]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*domain.TaskDocument)}
}

func (s *fakeStore) Read(_ context.Context, rel string) (*domain.TaskDocument, error) {
	s.readCalls = append(s.readCalls, rel)
	if s.readErr != nil {
		return nil, s.readErr
	}
	doc, ok := s.docs[rel]
	if !ok {
		return nil, domain.WrapError(domain.ErrAlreadyProcessed, "read document",
			errors.New("no such document"))
	}
	return doc, nil
}

func (s *fakeStore) Locate(_ context.Context, identity string) (string, domain.Folder, error) {
	s.locateIDs = append(s.locateIDs, identity)
	if s.locateErr != nil {
		return "", "", s.locateErr
	}
	return s.locateRel, s.locateIn, nil
}

func (s *fakeStore) CountByFolder(_ context.Context) (map[domain.Folder]int, error) {
	return s.folderHits, nil
}

type moveCall struct {
	src, dst  string
	fields    []domain.Field
	overwrite bool
}

type fakeMover struct {
	moves      []moveCall
	rewrites   []*domain.TaskDocument
	moveErr    error
	rewriteErr error
}

func (m *fakeMover) Move(_ context.Context, src, dst string, fields []domain.Field, overwrite bool) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moves = append(m.moves, moveCall{src: src, dst: dst, fields: fields, overwrite: overwrite})
	return nil
}

func (m *fakeMover) Rewrite(_ context.Context, _ string, doc *domain.TaskDocument) error {
	if m.rewriteErr != nil {
		return m.rewriteErr
	}
	m.rewrites = append(m.rewrites, doc)
	return nil
}

type fakeJournal struct {
	entries   []domain.ActivityEntry
	appendErr error
}

func (j *fakeJournal) Append(_ context.Context, entry domain.ActivityEntry) error {
	if j.appendErr != nil {
		return j.appendErr
	}
	j.entries = append(j.entries, entry)
	return nil
}

func (j *fakeJournal) Recent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 || limit > len(j.entries) {
		limit = len(j.entries)
	}
	return j.entries[:limit], nil
}

type fakeCompletionRecorder struct {
	outcomes  []domain.Outcome
	durations []time.Duration
}

func (r *fakeCompletionRecorder) TaskCompleted(outcome domain.Outcome, duration time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
	r.durations = append(r.durations, duration)
}

func fieldValue(fields []domain.Field, key string) (string, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
