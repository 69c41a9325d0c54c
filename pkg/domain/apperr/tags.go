package apperr

import "github.com/m-mizutani/goerr/v2"

// Error tags classifying failures across the service. Controllers map these
// to HTTP status codes; callers use them to decide whether an operation is
// retryable.
var (
	// TagNotFound marks an expected miss (unknown prompt version, session id)
	TagNotFound = goerr.NewTag("not_found")

	// TagInvalidArgument marks caller contract violations rejected before
	// any external call (rating out of range, malformed identifier)
	TagInvalidArgument = goerr.NewTag("invalid_argument")

	// TagExternalService marks recoverable failures of the completion
	// service or a lookup API (network, timeout, non-2xx)
	TagExternalService = goerr.NewTag("external_service")

	// TagStorage marks durable read/write failures; fatal for the
	// operation in progress and never retried automatically
	TagStorage = goerr.NewTag("storage")
)
