package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/adapters/cs"
	"github.com/m-mizutani/kasumi/pkg/adapters/fs"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/urfave/cli/v3"
)

// Storage contains configuration for storage adapters. The adapter backs the
// archive (improvement responses, session transcripts) and the vector index.
type Storage struct {
	// Cloud Storage configuration
	Bucket string
	Prefix string

	// File System storage configuration
	FSPath string
}

// Flags returns CLI flags for Storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cloud-storage-bucket",
			Sources:     cli.EnvVars("KASUMI_CLOUD_STORAGE_BUCKET"),
			Usage:       "Cloud Storage bucket for archive and index storage",
			Destination: &s.Bucket,
		},
		&cli.StringFlag{
			Name:        "cloud-storage-prefix",
			Sources:     cli.EnvVars("KASUMI_CLOUD_STORAGE_PREFIX"),
			Usage:       "Prefix for Cloud Storage objects",
			Destination: &s.Prefix,
		},
		&cli.StringFlag{
			Name:        "file-storage-path",
			Sources:     cli.EnvVars("KASUMI_FILE_STORAGE_PATH"),
			Usage:       "Path for file system storage",
			Destination: &s.FSPath,
		},
	}
}

// Configured returns true if any storage backend is configured
func (s *Storage) Configured() bool {
	return s.Bucket != "" || s.FSPath != ""
}

// HasCloudStorage returns true if cloud storage is configured
func (s *Storage) HasCloudStorage() bool {
	return s.Bucket != ""
}

// CreateAdapter creates appropriate storage adapter based on configuration
func (s *Storage) CreateAdapter(ctx context.Context) (interfaces.StorageAdapter, func(), error) {
	if s.HasCloudStorage() {
		opts := []cs.Option{}
		if s.Prefix != "" {
			opts = append(opts, cs.WithPrefix(s.Prefix))
		}

		csClient, err := cs.New(ctx, s.Bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Cloud Storage client")
		}

		cleanup := func() {
			_ = csClient.Close() // #nosec G104 - Close error handled gracefully in cleanup
		}

		return csClient, cleanup, nil
	}

	if s.FSPath != "" {
		fsClient, err := fs.New(&fs.Config{BaseDirectory: s.FSPath})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create file system storage adapter")
		}

		return fsClient, nil, nil
	}

	return nil, nil, goerr.New("no storage backend configured")
}
