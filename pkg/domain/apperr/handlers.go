package apperr

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// HTTPStatusFromError returns the appropriate HTTP status code based on error tags
func HTTPStatusFromError(err error) int {
	switch {
	case goerr.HasTag(err, TagNotFound):
		return http.StatusNotFound

	case goerr.HasTag(err, TagInvalidArgument):
		return http.StatusBadRequest

	case goerr.HasTag(err, TagExternalService):
		return http.StatusBadGateway

	case goerr.HasTag(err, TagStorage):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
