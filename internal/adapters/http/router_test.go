package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

type fakeTriager struct {
	rels   []string
	report *domain.TriageReport
	err    error
}

func (f *fakeTriager) Triage(_ context.Context, rel string) (*domain.TriageReport, error) {
	f.rels = append(f.rels, rel)
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeLifecycle struct {
	started    []string
	handedBack []string
	reasons    []domain.Reason
	completed  []string
	reopened   []string
	err        error
}

func (f *fakeLifecycle) Start(_ context.Context, identity string) error {
	f.started = append(f.started, identity)
	return f.err
}

func (f *fakeLifecycle) HandBack(_ context.Context, identity string, reason domain.Reason) error {
	f.handedBack = append(f.handedBack, identity)
	f.reasons = append(f.reasons, reason)
	return f.err
}

func (f *fakeLifecycle) Complete(_ context.Context, identity string) error {
	f.completed = append(f.completed, identity)
	return f.err
}

func (f *fakeLifecycle) Reopen(_ context.Context, identity string) error {
	f.reopened = append(f.reopened, identity)
	return f.err
}

type fakeSummarizer struct {
	summary *domain.Summary
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string) (*domain.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeJournal struct {
	entries []domain.ActivityEntry
	limits  []int
	err     error
}

func (f *fakeJournal) Append(_ context.Context, entry domain.ActivityEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) Recent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeStore struct {
	counts map[domain.Folder]int
	err    error
}

func (f *fakeStore) Read(_ context.Context, _ string) (*domain.TaskDocument, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Locate(_ context.Context, _ string) (string, domain.Folder, error) {
	return "", "", errors.New("not implemented")
}

func (f *fakeStore) CountByFolder(_ context.Context) (map[domain.Folder]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

type routerFakes struct {
	triager    *fakeTriager
	lifecycle  *fakeLifecycle
	summarizer *fakeSummarizer
	journal    *fakeJournal
	store      *fakeStore
}

func newTestRouter(limiter *ClientLimiter) (http.Handler, *routerFakes) {
	fakes := &routerFakes{
		triager:    &fakeTriager{},
		lifecycle:  &fakeLifecycle{},
		summarizer: &fakeSummarizer{},
		journal:    &fakeJournal{},
		store:      &fakeStore{counts: map[domain.Folder]int{domain.FolderInbox: 2}},
	}
	router := NewRouter(fakes.triager, fakes.lifecycle, fakes.summarizer,
		fakes.journal, fakes.store, limiter)
	return router.Handler(), fakes
}

func doRequest(handler http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestRouter(nil)
	rec := doRequest(handler, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request id header must always be set")
	}
}

func TestRecentActivity(t *testing.T) {
	handler, fakes := newTestRouter(nil)
	fakes.journal.entries = []domain.ActivityEntry{{
		ID:        "a",
		Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Action:    domain.ActionTriage,
		Identity:  "20260310-0900-fix-broken-link",
	}}

	rec := doRequest(handler, http.MethodGet, "/v1/activity?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fakes.journal.limits[0] != 5 {
		t.Fatalf("limit not forwarded, got %d", fakes.journal.limits[0])
	}

	var body struct {
		Entries []domain.ActivityEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].ID != "a" {
		t.Fatalf("unexpected entries %v", body.Entries)
	}
}

func TestRecentActivityRejectsBadLimit(t *testing.T) {
	handler, _ := newTestRouter(nil)
	for _, target := range []string{"/v1/activity?limit=zero", "/v1/activity?limit=-1"} {
		rec := doRequest(handler, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestFolderCounts(t *testing.T) {
	handler, _ := newTestRouter(nil)
	rec := doRequest(handler, http.MethodGet, "/v1/folders", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Inbox") {
		t.Fatalf("missing folder counts: %s", rec.Body.String())
	}
}

func TestTaskActionRoutes(t *testing.T) {
	handler, fakes := newTestRouter(nil)
	identity := "20260310-0900-fix-broken-link"

	rec := doRequest(handler, http.MethodPost, "/v1/tasks/"+identity+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(fakes.lifecycle.completed) != 1 || fakes.lifecycle.completed[0] != identity {
		t.Fatalf("complete not dispatched: %v", fakes.lifecycle.completed)
	}

	rec = doRequest(handler, http.MethodPost, "/v1/tasks/"+identity+"/handback",
		`{"reason":"blocked"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("handback: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fakes.lifecycle.reasons[0] != domain.ReasonBlocked {
		t.Fatalf("handback reason not forwarded: %v", fakes.lifecycle.reasons)
	}

	rec = doRequest(handler, http.MethodPost, "/v1/tasks/"+identity+"/triage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("triage: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fakes.triager.rels[0] != "Inbox/"+identity+".md" {
		t.Fatalf("triage path not derived: %v", fakes.triager.rels)
	}
}

func TestTaskActionUnknown(t *testing.T) {
	handler, _ := newTestRouter(nil)
	rec := doRequest(handler, http.MethodPost, "/v1/tasks/x/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTaskActionRequiresPost(t *testing.T) {
	handler, _ := newTestRouter(nil)
	rec := doRequest(handler, http.MethodGet, "/v1/tasks/x/complete", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		kind error
		want int
	}{
		{domain.ErrTransitionRejected, http.StatusConflict},
		{domain.ErrDestinationConflict, http.StatusConflict},
		{domain.ErrAlreadyProcessed, http.StatusNotFound},
		{domain.ErrAccessDenied, http.StatusForbidden},
		{domain.ErrInvalidDocumentType, http.StatusBadRequest},
		{domain.ErrStructurallyInvalid, http.StatusUnprocessableEntity},
		{domain.ErrTemporary, http.StatusServiceUnavailable},
		{domain.ErrIntegrityFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		handler, fakes := newTestRouter(nil)
		fakes.lifecycle.err = domain.WrapError(tc.kind, "transition", errors.New("boom"))
		rec := doRequest(handler, http.MethodPost, "/v1/tasks/x/complete", "")
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.kind, tc.want, rec.Code)
		}
	}
}

func TestRateLimiting(t *testing.T) {
	rejected := 0
	limiter := NewClientLimiter(0.5, 1, func() { rejected++ })
	handler, _ := newTestRouter(limiter)

	rec := doRequest(handler, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first request must pass, got %d", rec.Code)
	}
	rec = doRequest(handler, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request must be limited, got %d", rec.Code)
	}
	if rejected != 1 {
		t.Fatalf("rejected callback not invoked, got %d", rejected)
	}
}
