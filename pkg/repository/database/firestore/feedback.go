package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
	"google.golang.org/api/iterator"
)

// LoadEntries retrieves the full feedback list ordered by id
func (c *Client) LoadEntries(ctx context.Context) ([]*feedback.Entry, error) {
	iter := c.client.Collection(collectionFeedbacks).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*feedback.Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate feedback entries",
				goerr.V("repository", "firestore"),
				goerr.T(apperr.TagStorage))
		}

		var e feedback.Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal feedback entry",
				goerr.V("doc_id", doc.Ref.ID),
				goerr.V("repository", "firestore"),
				goerr.T(apperr.TagStorage))
		}
		entries = append(entries, &e)
	}

	return entries, nil
}

// SaveEntries replaces the full feedback list
func (c *Client) SaveEntries(ctx context.Context, entries []*feedback.Entry) error {
	docs := make(map[string]any, len(entries))
	for _, e := range entries {
		docs[strconv.Itoa(e.ID)] = e
	}

	if err := c.replaceCollection(ctx, collectionFeedbacks, docs); err != nil {
		return goerr.Wrap(err, "failed to save feedback entries",
			goerr.V("count", len(entries)),
			goerr.T(apperr.TagStorage))
	}
	return nil
}
