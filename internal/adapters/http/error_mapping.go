package httpadapter

import (
	"net/http"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrInvalidDocumentType):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrStructurallyInvalid):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTransitionRejected):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrDestinationConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrAlreadyProcessed):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		// IntegrityFailure and RollbackRequired need operator attention.
		return http.StatusInternalServerError
	}
}
