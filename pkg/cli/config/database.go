package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/repository/database/firestore"
	"github.com/m-mizutani/kasumi/pkg/repository/database/local"
	"github.com/urfave/cli/v3"
)

// Database selects the persistence backend for prompts, feedback and sessions
type Database struct {
	// Local JSON file storage
	Dir string

	// Google Cloud Firestore
	FirestoreProjectID  string
	FirestoreDatabaseID string
}

// Flags returns CLI flags for database configuration
func (d *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-dir",
			Sources:     cli.EnvVars("KASUMI_DB_DIR"),
			Usage:       "Directory for local JSON storage",
			Value:       "./data",
			Destination: &d.Dir,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Sources:     cli.EnvVars("KASUMI_FIRESTORE_PROJECT_ID"),
			Usage:       "Google Cloud Project ID for Firestore (uses Firestore instead of local files when set)",
			Destination: &d.FirestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Sources:     cli.EnvVars("KASUMI_FIRESTORE_DATABASE_ID"),
			Usage:       "Firestore Database ID (default: (default))",
			Value:       "(default)",
			Destination: &d.FirestoreDatabaseID,
		},
	}
}

// UseFirestore returns true if Firestore is configured
func (d *Database) UseFirestore() bool {
	return d.FirestoreProjectID != ""
}

// CreateRepository creates the configured repository backend. The returned
// cleanup function may be nil.
func (d *Database) CreateRepository(ctx context.Context) (interfaces.Repository, func(), error) {
	if d.UseFirestore() {
		databaseID := d.FirestoreDatabaseID
		if databaseID == "" {
			databaseID = "(default)"
		}

		client, err := firestore.New(ctx, d.FirestoreProjectID, databaseID)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Firestore client")
		}

		cleanup := func() {
			_ = client.Close() // #nosec G104 - Close error handled gracefully in cleanup
		}

		return client, cleanup, nil
	}

	if d.Dir == "" {
		return nil, nil, goerr.New("database directory must be configured")
	}

	client, err := local.New(d.Dir)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create local database", goerr.V("dir", d.Dir))
	}

	return client, nil, nil
}
