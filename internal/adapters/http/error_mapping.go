package httpadapter

import (
	"net/http"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnsupportedConversion):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrJobNotFound),
		domain.IsKind(err, domain.ErrBatchNotFound),
		domain.IsKind(err, domain.ErrSourceNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
