package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"google.golang.org/api/iterator"
)

// LoadSessions retrieves all sessions in creation order
func (c *Client) LoadSessions(ctx context.Context) ([]*conversation.Session, error) {
	iter := c.client.Collection(collectionSessions).
		OrderBy("started_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var sessions []*conversation.Session
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions",
				goerr.V("repository", "firestore"),
				goerr.T(apperr.TagStorage))
		}

		var s conversation.Session
		if err := doc.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal session",
				goerr.V("doc_id", doc.Ref.ID),
				goerr.V("repository", "firestore"),
				goerr.T(apperr.TagStorage))
		}
		sessions = append(sessions, &s)
	}

	return sessions, nil
}

// SaveSessions replaces the full session list
func (c *Client) SaveSessions(ctx context.Context, sessions []*conversation.Session) error {
	docs := make(map[string]any, len(sessions))
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return goerr.Wrap(err, "invalid session", goerr.V("session_id", s.ID))
		}
		docs[s.ID.String()] = s
	}

	if err := c.replaceCollection(ctx, collectionSessions, docs); err != nil {
		return goerr.Wrap(err, "failed to save sessions",
			goerr.V("count", len(sessions)),
			goerr.T(apperr.TagStorage))
	}
	return nil
}
