package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
)

// Client archives immutable records (raw model responses from improvement
// passes, finished session transcripts) with gzip compression on top of a
// StorageAdapter.
type Client struct {
	adapter interfaces.StorageAdapter
}

// New creates a new archive client
func New(adapter interfaces.StorageAdapter) *Client {
	return &Client{
		adapter: adapter,
	}
}

// SaveImprovementResponse saves the raw model response produced when the
// prompt was rewritten to the given version
func (c *Client) SaveImprovementResponse(ctx context.Context, version int, rawResponse string) error {
	key := c.buildImprovementKey(version)

	compressed, err := c.compressData([]byte(rawResponse))
	if err != nil {
		return goerr.Wrap(err, "failed to compress improvement response",
			goerr.V("version", version),
		)
	}

	if err := c.adapter.Put(ctx, key, compressed); err != nil {
		return goerr.Wrap(err, "failed to save improvement response to storage",
			goerr.V("version", version),
			goerr.V("key", key),
		)
	}

	return nil
}

// LoadImprovementResponse loads the raw model response archived for a version
func (c *Client) LoadImprovementResponse(ctx context.Context, version int) (string, error) {
	key := c.buildImprovementKey(version)

	compressed, err := c.adapter.Get(ctx, key)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load improvement response from storage",
			goerr.V("version", version),
			goerr.V("key", key),
		)
	}

	data, err := c.decompressData(compressed)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decompress improvement response",
			goerr.V("version", version),
		)
	}

	return string(data), nil
}

// SaveSessionTranscript saves a session transcript as compressed JSON
func (c *Client) SaveSessionTranscript(ctx context.Context, session *conversation.Session) error {
	if session == nil {
		return goerr.New("session is nil")
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal session transcript",
			goerr.V("session_id", session.ID),
		)
	}

	compressed, err := c.compressData(jsonData)
	if err != nil {
		return goerr.Wrap(err, "failed to compress session transcript",
			goerr.V("session_id", session.ID),
		)
	}

	key := c.buildTranscriptKey(session.ID)
	if err := c.adapter.Put(ctx, key, compressed); err != nil {
		return goerr.Wrap(err, "failed to save session transcript to storage",
			goerr.V("session_id", session.ID),
			goerr.V("key", key),
		)
	}

	return nil
}

// LoadSessionTranscript loads and unmarshals an archived session transcript
func (c *Client) LoadSessionTranscript(ctx context.Context, sessionID types.SessionID) (*conversation.Session, error) {
	key := c.buildTranscriptKey(sessionID)

	compressed, err := c.adapter.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load session transcript from storage",
			goerr.V("session_id", sessionID),
			goerr.V("key", key),
		)
	}

	data, err := c.decompressData(compressed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decompress session transcript",
			goerr.V("session_id", sessionID),
		)
	}

	var session conversation.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session transcript",
			goerr.V("session_id", sessionID),
		)
	}

	return &session, nil
}

// buildImprovementKey constructs the storage key for a raw improvement response
func (c *Client) buildImprovementKey(version int) string {
	return fmt.Sprintf("improvements/v%d/response.txt.gz", version)
}

// buildTranscriptKey constructs the storage key for a session transcript
func (c *Client) buildTranscriptKey(sessionID types.SessionID) string {
	return fmt.Sprintf("sessions/%s/transcript.json.gz", sessionID)
}

// compressData compresses data using gzip
func (c *Client) compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, goerr.Wrap(err, "failed to write data to gzip writer")
	}

	if err := writer.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close gzip writer")
	}

	return buf.Bytes(), nil
}

// decompressData decompresses gzip data
func (c *Client) decompressData(compressedData []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gzip reader")
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from gzip reader")
	}

	return data, nil
}
