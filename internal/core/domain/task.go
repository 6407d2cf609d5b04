package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DocumentExt is the only file extension admitted into the vault.
const DocumentExt = ".md"

// Folder is a workflow directory under the vault root.
type Folder string

const (
	FolderInbox       Folder = "Inbox"
	FolderNeedsAction Folder = "Needs_Action"
	FolderDone        Folder = "Done"
)

func Folders() []Folder {
	return []Folder{FolderInbox, FolderNeedsAction, FolderDone}
}

// Status is the authoritative workflow state of a document. Folder location
// is a projection of it, kept in sync by the mover.
type Status string

const (
	StatusNeedsTriage        Status = "needs_triage"
	StatusNeedsClarification Status = "needs_clarification"
	StatusBlocked            Status = "blocked"
	StatusNeedsAction        Status = "needs_action"
	StatusInProgress         Status = "in_progress"
	StatusDone               Status = "done"
)

// Filename prefixes marking the Inbox-internal pseudo-states.
const (
	PrefixClarification = "[CLARIFICATION]-"
	PrefixBlocked       = "[BLOCKED]-"
)

// Metadata keys accumulated across the lifecycle.
const (
	MetaStatus          = "status"
	MetaTriagedAt       = "triaged_at"
	MetaComplexity      = "complexity"
	MetaEstimatedEffort = "estimated_effort"
	MetaPriority        = "priority"
	MetaCompleteness    = "completeness_score"
	MetaSLADeadline     = "sla_deadline"
	MetaStartedAt       = "started_at"
	MetaCompletedAt     = "completed_at"
	MetaMovedAt         = "moved_at"
	MetaMovedFrom       = "moved_from"
	MetaMovedTo         = "moved_to"
	MetaMovedBy         = "moved_by"
	MetaMoveReason      = "move_reason"
	MetaSummarizedAt    = "summarized_at"
)

var identityPattern = regexp.MustCompile(`^\d{8}-\d{4}-[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IdentityFromFilename derives the immutable document identity from a file
// name, stripping any status prefix and the document extension.
// The expected shape is YYYYMMDD-HHMM-kebab-description.
func IdentityFromFilename(name string) (string, error) {
	base := StripStatusPrefix(name)
	base = strings.TrimSuffix(base, DocumentExt)
	if !identityPattern.MatchString(base) {
		return "", fmt.Errorf("filename %q does not match YYYYMMDD-HHMM-kebab-description", name)
	}
	return base, nil
}

// StripStatusPrefix removes a leading [CLARIFICATION]- or [BLOCKED]- marker.
func StripStatusPrefix(name string) string {
	name = strings.TrimPrefix(name, PrefixClarification)
	name = strings.TrimPrefix(name, PrefixBlocked)
	return name
}

// StatusPrefix returns the filename marker for Inbox pseudo-states, or the
// empty string when the status carries no marker.
func StatusPrefix(status Status) string {
	switch status {
	case StatusNeedsClarification:
		return PrefixClarification
	case StatusBlocked:
		return PrefixBlocked
	default:
		return ""
	}
}

// FolderFor projects a status onto its workflow directory.
func FolderFor(status Status) Folder {
	switch status {
	case StatusNeedsAction, StatusInProgress:
		return FolderNeedsAction
	case StatusDone:
		return FolderDone
	default:
		return FolderInbox
	}
}

// TaskDocument is a parsed task file: immutable identity, ordered metadata
// header, and the human-authored markdown body. The body is opaque to the
// lifecycle except for the triage and summary extraction points.
type TaskDocument struct {
	Identity string
	Meta     *Metadata
	Body     string
}

// Status reads the recorded workflow status, defaulting to needs_triage for
// documents that have never been triaged.
func (d *TaskDocument) Status() Status {
	if v, ok := d.Meta.Get(MetaStatus); ok {
		return Status(v)
	}
	return StatusNeedsTriage
}

// MetaTime parses an RFC3339 metadata timestamp, reporting ok=false when the
// key is absent or unparseable.
func (d *TaskDocument) MetaTime(key string) (time.Time, bool) {
	v, ok := d.Meta.Get(key)
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
