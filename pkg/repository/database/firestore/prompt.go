package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
	"google.golang.org/api/iterator"
)

// LoadVersions retrieves the full prompt history ordered by version number
func (c *Client) LoadVersions(ctx context.Context) ([]*prompt.Version, error) {
	iter := c.client.Collection(collectionPromptVersions).
		OrderBy("version", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var versions []*prompt.Version
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate prompt versions",
				goerr.V("repository", "firestore"),
				goerr.T(apperr.TagStorage))
		}

		var v prompt.Version
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal prompt version",
				goerr.V("doc_id", doc.Ref.ID),
				goerr.V("repository", "firestore"),
				goerr.T(apperr.TagStorage))
		}
		versions = append(versions, &v)
	}

	return versions, nil
}

// SaveVersions replaces the full prompt history
func (c *Client) SaveVersions(ctx context.Context, versions []*prompt.Version) error {
	docs := make(map[string]any, len(versions))
	for _, v := range versions {
		docs[strconv.Itoa(v.Version)] = v
	}

	if err := c.replaceCollection(ctx, collectionPromptVersions, docs); err != nil {
		return goerr.Wrap(err, "failed to save prompt versions",
			goerr.V("count", len(versions)),
			goerr.T(apperr.TagStorage))
	}
	return nil
}
