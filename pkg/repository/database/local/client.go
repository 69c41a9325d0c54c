package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
)

const (
	promptsFile       = "prompts_history.json"
	feedbacksFile     = "feedbacks.json"
	conversationsFile = "conversations.json"
)

// Client stores each collection as one JSON file under a data directory.
// Every save rewrites the whole file through a temp-file + rename cycle, so
// a crash mid-write leaves the previous state intact. One active process per
// data directory is assumed; multi-process deployments need an external
// mutual-exclusion layer.
type Client struct {
	dir string
	mu  sync.Mutex
}

// New creates a local JSON-file client rooted at dir, creating it if needed
func New(dir string) (*Client, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid data directory", goerr.V("dir", dir))
	}

	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory",
			goerr.V("dir", absDir),
			goerr.T(apperr.TagStorage))
	}

	return &Client{dir: absDir}, nil
}

// conversationsDoc matches the on-disk layout of the conversations file
type conversationsDoc struct {
	Sessions    []*conversation.Session `json:"sessions"`
	LastUpdated string                  `json:"last_updated,omitempty"`
}

// LoadVersions reads the full prompt history
func (c *Client) LoadVersions(ctx context.Context) ([]*prompt.Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var versions []*prompt.Version
	if err := c.readJSON(promptsFile, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// SaveVersions durably replaces the full prompt history
func (c *Client) SaveVersions(ctx context.Context, versions []*prompt.Version) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeJSON(promptsFile, versions)
}

// LoadEntries reads the full feedback list
func (c *Client) LoadEntries(ctx context.Context) ([]*feedback.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []*feedback.Entry
	if err := c.readJSON(feedbacksFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveEntries durably replaces the full feedback list
func (c *Client) SaveEntries(ctx context.Context, entries []*feedback.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeJSON(feedbacksFile, entries)
}

// LoadSessions reads the full session list
func (c *Client) LoadSessions(ctx context.Context) ([]*conversation.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doc conversationsDoc
	if err := c.readJSON(conversationsFile, &doc); err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

// SaveSessions durably replaces the full session list
func (c *Client) SaveSessions(ctx context.Context, sessions []*conversation.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeJSON(conversationsFile, conversationsDoc{Sessions: sessions})
}

// readJSON decodes one collection file into v; a missing file is an empty
// collection, not an error
func (c *Client) readJSON(name string, v any) error {
	path := filepath.Join(c.dir, name)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to read collection file",
			goerr.V("path", path),
			goerr.T(apperr.TagStorage))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to decode collection file",
			goerr.V("path", path),
			goerr.T(apperr.TagStorage))
	}

	return nil
}

// writeJSON replaces one collection file atomically: encode to a temp file
// in the same directory, fsync, then rename over the target
func (c *Client) writeJSON(name string, v any) error {
	path := filepath.Join(c.dir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode collection",
			goerr.V("path", path),
			goerr.T(apperr.TagStorage))
	}

	tmp, err := os.CreateTemp(c.dir, name+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file",
			goerr.V("dir", c.dir),
			goerr.T(apperr.TagStorage))
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return goerr.Wrap(err, "failed to write temp file",
			goerr.V("path", tmpPath),
			goerr.T(apperr.TagStorage))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return goerr.Wrap(err, "failed to sync temp file",
			goerr.V("path", tmpPath),
			goerr.T(apperr.TagStorage))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to close temp file",
			goerr.V("path", tmpPath),
			goerr.T(apperr.TagStorage))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to replace collection file",
			goerr.V("path", path),
			goerr.T(apperr.TagStorage))
	}

	if err := os.Chmod(path, 0600); err != nil {
		return goerr.Wrap(err, "failed to set collection file mode",
			goerr.V("path", path),
			goerr.T(apperr.TagStorage))
	}

	return nil
}

// Ensure Client implements the repository interfaces
var (
	_ interfaces.PromptRepository       = (*Client)(nil)
	_ interfaces.FeedbackRepository     = (*Client)(nil)
	_ interfaces.ConversationRepository = (*Client)(nil)
)
