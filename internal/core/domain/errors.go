package domain

import (
	"errors"
	"fmt"
)

var (
	// Path gate failures, checked before any filesystem access.
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidDocumentType = errors.New("invalid document type")

	// Expected workflow outcomes, not system faults.
	ErrStructurallyInvalid = errors.New("structurally invalid document")
	ErrAlreadyProcessed    = errors.New("document already processed")

	// Move protocol failures.
	ErrTransitionRejected  = errors.New("transition rejected")
	ErrDestinationConflict = errors.New("destination conflict")
	ErrIntegrityFailure    = errors.New("integrity failure")
	ErrRollbackRequired    = errors.New("rollback required")

	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
