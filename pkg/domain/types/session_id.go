package types

import (
	"context"

	"github.com/google/uuid"
)

type SessionID string

func NewSessionID(ctx context.Context) SessionID {
	return SessionID(newUUID(ctx))
}

func (id SessionID) String() string {
	return string(id)
}

// IsValid checks if the SessionID is valid
func (id SessionID) IsValid() bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(string(id))
	return err == nil
}
