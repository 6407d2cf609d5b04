// Package httpadapter exposes the read-only operational surface (activity
// feed, folder counts) and the handback endpoints the external execution
// layer uses to move tasks through the lifecycle. Dashboard rendering
// itself lives outside this service.
package httpadapter

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/digitalfte/taskvault/internal/core/domain"
	"github.com/digitalfte/taskvault/internal/core/ports"
)

type Router struct {
	triager    ports.InboxTriager
	lifecycle  ports.TaskLifecycle
	summarizer ports.TaskSummarizer
	journal    ports.ActivityJournal
	store      ports.DocumentStore
	limiter    *ClientLimiter
}

func NewRouter(
	triager ports.InboxTriager,
	lifecycle ports.TaskLifecycle,
	summarizer ports.TaskSummarizer,
	journal ports.ActivityJournal,
	store ports.DocumentStore,
	limiter *ClientLimiter,
) *Router {
	return &Router{
		triager:    triager,
		lifecycle:  lifecycle,
		summarizer: summarizer,
		journal:    journal,
		store:      store,
		limiter:    limiter,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/activity", rt.recentActivity)
	mux.HandleFunc("/v1/folders", rt.folderCounts)
	mux.HandleFunc("/v1/tasks/", rt.taskAction)

	handler := http.Handler(mux)
	if rt.limiter != nil {
		handler = rateLimitMiddleware(rt.limiter, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recentActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	entries, err := rt.journal.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (rt *Router) folderCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	counts, err := rt.store.CountByFolder(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": counts})
}

type handbackRequest struct {
	Reason string `json:"reason"`
}

// taskAction dispatches POST /v1/tasks/{identity}/{action}.
func (rt *Router) taskAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/tasks/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "expected /v1/tasks/{identity}/{action}"})
		return
	}
	identity, action := parts[0], parts[1]

	var err error
	var body any
	switch action {
	case "triage":
		// Manual trigger for documents dropped into the Inbox without a
		// watcher event.
		var report *domain.TriageReport
		report, err = rt.triager.Triage(r.Context(), path.Join(string(domain.FolderInbox), identity+domain.DocumentExt))
		body = report
	case "start":
		err = rt.lifecycle.Start(r.Context(), identity)
	case "handback":
		var req handbackRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		err = rt.lifecycle.HandBack(r.Context(), identity, domain.Reason(req.Reason))
	case "complete":
		err = rt.lifecycle.Complete(r.Context(), identity)
	case "reopen":
		err = rt.lifecycle.Reopen(r.Context(), identity)
	case "summarize":
		var summary *domain.Summary
		summary, err = rt.summarizer.Summarize(r.Context(), identity)
		body = summary
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action " + action})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if body == nil {
		body = map[string]string{"identity": identity, "action": action}
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request_id=%s error: %v", requestIDFromContext(r.Context()), err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
