package domain

import "time"

// Action names what the pipeline did to a document.
type Action string

const (
	ActionTriage    Action = "triage"
	ActionMove      Action = "move"
	ActionSummarize Action = "summarize"
)

// ActivityEntry is one record in the append-only journal. Entries are never
// mutated or reordered after write.
type ActivityEntry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Action    Action        `json:"action"`
	Identity  string        `json:"identity"`
	Status    Status        `json:"status,omitempty"`
	Priority  Priority      `json:"priority,omitempty"`
	Reason    Reason        `json:"reason,omitempty"`
	MovedFrom string        `json:"moved_from,omitempty"`
	MovedTo   string        `json:"moved_to,omitempty"`
	Outcome   Outcome       `json:"outcome,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Detail    string        `json:"detail,omitempty"`
}
