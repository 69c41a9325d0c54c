package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
)

const (
	// Collection names
	collectionPromptVersions = "prompt_versions"
	collectionFeedbacks      = "feedback_entries"
	collectionSessions       = "conversation_sessions"
)

// Client is a Firestore implementation of the collection repositories for
// deployments that need a transactional store instead of local files. The
// whole-collection save contract is met with a bulk replace: every document
// is rewritten and stale documents are removed in the same pass.
type Client struct {
	client     *firestore.Client
	projectID  string
	databaseID string
}

// New creates a new Firestore client using Application Default Credentials
func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("project ID is required")
	}
	if databaseID == "" {
		databaseID = "(default)"
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Client{
		client:     client,
		projectID:  projectID,
		databaseID: databaseID,
	}, nil
}

// Close closes the Firestore client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// replaceCollection rewrites a collection so that it contains exactly the
// documents in docs (keyed by document ID). Existing documents not present
// in docs are deleted.
func (c *Client) replaceCollection(ctx context.Context, collection string, docs map[string]any) error {
	existing, err := c.client.Collection(collection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return goerr.Wrap(err, "failed to list existing documents",
			goerr.V("collection", collection))
	}

	bw := c.client.BulkWriter(ctx)

	for id, doc := range docs {
		if _, err := bw.Set(c.client.Collection(collection).Doc(id), doc); err != nil {
			return goerr.Wrap(err, "failed to queue document write",
				goerr.V("collection", collection),
				goerr.V("doc_id", id))
		}
	}

	for _, ref := range existing {
		if _, ok := docs[ref.ID]; ok {
			continue
		}
		if _, err := bw.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to queue document delete",
				goerr.V("collection", collection),
				goerr.V("doc_id", ref.ID))
		}
	}

	bw.End()
	return nil
}

// Ensure Client implements the repository interfaces
var (
	_ interfaces.PromptRepository       = (*Client)(nil)
	_ interfaces.FeedbackRepository     = (*Client)(nil)
	_ interfaces.ConversationRepository = (*Client)(nil)
)
