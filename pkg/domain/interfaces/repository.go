package interfaces

import (
	"context"

	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
)

// The three stores share the same persistence shape: each collection is read
// wholesale at initialization and rewritten wholesale on every mutation. The
// store services own all invariants (dense numbering, ordering, counters);
// repositories only provide durable load/save of the full collection.

// PromptRepository persists the prompt version history
type PromptRepository interface {
	// LoadVersions returns all versions ordered by version number ascending.
	// An empty store yields an empty slice, not an error.
	LoadVersions(ctx context.Context) ([]*prompt.Version, error)

	// SaveVersions durably replaces the whole history
	SaveVersions(ctx context.Context, versions []*prompt.Version) error
}

// FeedbackRepository persists the feedback entry list
type FeedbackRepository interface {
	// LoadEntries returns all entries ordered by id ascending
	LoadEntries(ctx context.Context) ([]*feedback.Entry, error)

	// SaveEntries durably replaces the whole entry list
	SaveEntries(ctx context.Context, entries []*feedback.Entry) error
}

// Repository is the full persistence surface a database backend provides
type Repository interface {
	PromptRepository
	FeedbackRepository
	ConversationRepository
}

// ConversationRepository persists the conversation session list
type ConversationRepository interface {
	// LoadSessions returns all sessions in creation order
	LoadSessions(ctx context.Context) ([]*conversation.Session, error)

	// SaveSessions durably replaces the whole session list
	SaveSessions(ctx context.Context, sessions []*conversation.Session) error
}
