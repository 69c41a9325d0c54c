package conversation

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoCurrentSession = errors.New("no current session")
	ErrInvalidSessionID = errors.New("invalid session id")
	ErrInvalidRole      = errors.New("invalid turn role")
)
