package prompt

import "errors"

var (
	ErrVersionNotFound = errors.New("prompt version not found")
	ErrNotInitialized  = errors.New("prompt store not initialized")
)
