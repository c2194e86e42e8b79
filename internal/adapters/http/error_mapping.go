package httpadapter

import (
	"errors"
	"net/http"
	"os"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrUnknownDocumentType):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrVerificationNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrDocumentOpen):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary), domain.IsKind(err, domain.ErrInferenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
