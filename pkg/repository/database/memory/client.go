package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
)

// Client is an in-memory implementation of the three collection
// repositories. Used by tests and ephemeral runs.
type Client struct {
	mu       sync.RWMutex
	versions []*prompt.Version
	entries  []*feedback.Entry
	sessions []*conversation.Session
}

// New creates a new in-memory client
func New() *Client {
	return &Client{}
}

// LoadVersions returns a copy of the stored prompt versions
func (c *Client) LoadVersions(ctx context.Context) ([]*prompt.Version, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyVersions(c.versions), nil
}

// SaveVersions replaces the stored prompt versions
func (c *Client) SaveVersions(ctx context.Context, versions []*prompt.Version) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions = copyVersions(versions)
	return nil
}

// LoadEntries returns a copy of the stored feedback entries
func (c *Client) LoadEntries(ctx context.Context) ([]*feedback.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyEntries(c.entries), nil
}

// SaveEntries replaces the stored feedback entries
func (c *Client) SaveEntries(ctx context.Context, entries []*feedback.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = copyEntries(entries)
	return nil
}

// LoadSessions returns a copy of the stored sessions
func (c *Client) LoadSessions(ctx context.Context) ([]*conversation.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySessions(c.sessions), nil
}

// SaveSessions replaces the stored sessions
func (c *Client) SaveSessions(ctx context.Context, sessions []*conversation.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = copySessions(sessions)
	return nil
}

// Copies guard against external mutation of stored state, same discipline
// as returning deep copies from a remote store.

func copyVersions(src []*prompt.Version) []*prompt.Version {
	dst := make([]*prompt.Version, len(src))
	for i, v := range src {
		vCopy := *v
		vCopy.Improvements = append([]string(nil), v.Improvements...)
		dst[i] = &vCopy
	}
	return dst
}

func copyEntries(src []*feedback.Entry) []*feedback.Entry {
	dst := make([]*feedback.Entry, len(src))
	for i, e := range src {
		eCopy := *e
		dst[i] = &eCopy
	}
	return dst
}

func copySessions(src []*conversation.Session) []*conversation.Session {
	dst := make([]*conversation.Session, len(src))
	for i, s := range src {
		sCopy := *s
		sCopy.Messages = make([]conversation.Turn, len(s.Messages))
		for j, m := range s.Messages {
			mCopy := m
			mCopy.ToolsUsed = append([]conversation.ToolCall(nil), m.ToolsUsed...)
			sCopy.Messages[j] = mCopy
		}
		dst[i] = &sCopy
	}
	return dst
}

// Ensure Client implements the repository interfaces
var (
	_ interfaces.PromptRepository       = (*Client)(nil)
	_ interfaces.FeedbackRepository     = (*Client)(nil)
	_ interfaces.ConversationRepository = (*Client)(nil)
)
