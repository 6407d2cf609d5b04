package domain

import "fmt"

// Reason names why a document is being moved. Each legal (from, to) pair
// admits a fixed set of reasons.
type Reason string

const (
	ReasonTriage        Reason = "triage"
	ReasonStarted       Reason = "started"
	ReasonClarification Reason = "clarification"
	ReasonBlocked       Reason = "blocked"
	ReasonCompleted     Reason = "completed"
	ReasonReopened      Reason = "reopened"
)

type transition struct {
	from Folder
	to   Folder
}

// The authoritative legal-move table. Every mover call validates against it;
// no component hard-codes its own transition logic.
var allowedReasons = map[transition][]Reason{
	{FolderInbox, FolderNeedsAction}: {ReasonTriage, ReasonStarted},
	{FolderInbox, FolderInbox}:       {ReasonClarification, ReasonBlocked},
	{FolderNeedsAction, FolderDone}:  {ReasonCompleted},
	{FolderNeedsAction, FolderInbox}: {ReasonClarification, ReasonBlocked},
	{FolderDone, FolderNeedsAction}:  {ReasonReopened},
}

// ValidateTransition checks a requested move against the table. It returns
// nil for a legal move and an ErrTransitionRejected-wrapped error otherwise.
// Callers must invoke it before any filesystem mutation.
func ValidateTransition(from, to Folder, reason Reason) error {
	reasons, ok := allowedReasons[transition{from, to}]
	if !ok {
		return WrapError(ErrTransitionRejected, "validate transition",
			fmt.Errorf("no transition %s -> %s", from, to))
	}
	for _, r := range reasons {
		if r == reason {
			return nil
		}
	}
	return WrapError(ErrTransitionRejected, "validate transition",
		fmt.Errorf("reason %q not allowed for %s -> %s", reason, from, to))
}
