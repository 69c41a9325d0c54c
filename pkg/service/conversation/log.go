package conversation

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
)

// Log owns the conversation history: an ordered list of sessions plus the
// notion of a current session that new turns attach to. Sessions with zero
// turns are kept internally but hidden from listing.
type Log struct {
	repo     interfaces.ConversationRepository
	mu       sync.RWMutex
	sessions []*conversation.Session
	current  *conversation.Session
	loaded   bool
}

// New creates a new conversation log
func New(repo interfaces.ConversationRepository) *Log {
	return &Log{
		repo: repo,
	}
}

// Initialize loads persisted sessions and opens a fresh current session
func (l *Log) Initialize(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sessions, err := l.repo.LoadSessions(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load conversation sessions")
	}

	l.sessions = sessions
	l.current = conversation.NewSession(ctx)
	l.sessions = append(l.sessions, l.current)
	l.loaded = true

	return l.persistLocked(ctx)
}

// StartNewSession closes the current session and opens a fresh one
func (l *Log) StartNewSession(ctx context.Context) (*conversation.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		return nil, conversation.ErrNoCurrentSession
	}

	l.current = conversation.NewSession(ctx)
	l.sessions = append(l.sessions, l.current)

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	cp := *l.current
	return &cp, nil
}

// AppendTurn records a turn on the current session
func (l *Log) AppendTurn(ctx context.Context, turn conversation.Turn) error {
	if !turn.Role.IsValid() {
		return goerr.Wrap(conversation.ErrInvalidRole, "invalid turn role",
			goerr.V("role", turn.Role),
			goerr.T(apperr.TagInvalidArgument))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return conversation.ErrNoCurrentSession
	}

	l.current.Append(turn)
	return l.persistLocked(ctx)
}

// AppendTurnTo records a turn on the session with the given ID
func (l *Log) AppendTurnTo(ctx context.Context, id types.SessionID, turn conversation.Turn) error {
	if !turn.Role.IsValid() {
		return goerr.Wrap(conversation.ErrInvalidRole, "invalid turn role",
			goerr.V("role", turn.Role),
			goerr.T(apperr.TagInvalidArgument))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.sessions {
		if s.ID == id {
			s.Append(turn)
			return l.persistLocked(ctx)
		}
	}

	return goerr.Wrap(conversation.ErrSessionNotFound, "session not found",
		goerr.V("session_id", id),
		goerr.T(apperr.TagNotFound))
}

// Messages returns the turns of the session with the given ID in append order
func (l *Log) Messages(ctx context.Context, id types.SessionID) ([]conversation.Turn, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.sessions {
		if s.ID == id {
			out := make([]conversation.Turn, len(s.Messages))
			copy(out, s.Messages)
			return out, nil
		}
	}

	return nil, goerr.Wrap(conversation.ErrSessionNotFound, "session not found",
		goerr.V("session_id", id),
		goerr.T(apperr.TagNotFound))
}

// CurrentSession returns a copy of the current session, or an error if the
// current session was deleted and no new one has been started.
func (l *Log) CurrentSession(ctx context.Context) (*conversation.Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return nil, conversation.ErrNoCurrentSession
	}

	cp := copySession(l.current)
	return cp, nil
}

// CurrentMessages returns the turns of the current session in append order
func (l *Log) CurrentMessages(ctx context.Context) ([]conversation.Turn, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return nil, conversation.ErrNoCurrentSession
	}

	out := make([]conversation.Turn, len(l.current.Messages))
	copy(out, l.current.Messages)
	return out, nil
}

// AllSessions returns sessions with at least one turn, in creation order
func (l *Log) AllSessions(ctx context.Context) ([]*conversation.Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*conversation.Session
	for _, s := range l.sessions {
		if s.MessageCount > 0 {
			out = append(out, copySession(s))
		}
	}
	return out, nil
}

// GetSession returns a session by ID
func (l *Log) GetSession(ctx context.Context, id types.SessionID) (*conversation.Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.sessions {
		if s.ID == id {
			return copySession(s), nil
		}
	}

	return nil, goerr.Wrap(conversation.ErrSessionNotFound, "session not found",
		goerr.V("session_id", id),
		goerr.T(apperr.TagNotFound))
}

// ClearCurrent drops the turns of the current session by replacing it with
// a fresh one. The emptied session is removed from the list.
func (l *Log) ClearCurrent(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return conversation.ErrNoCurrentSession
	}

	l.removeLocked(l.current.ID)
	l.current = conversation.NewSession(ctx)
	l.sessions = append(l.sessions, l.current)

	return l.persistLocked(ctx)
}

// DeleteSession removes a session by ID. Deleting the current session leaves
// the log without a current session until StartNewSession is called.
func (l *Log) DeleteSession(ctx context.Context, id types.SessionID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.removeLocked(id) {
		return goerr.Wrap(conversation.ErrSessionNotFound, "session not found",
			goerr.V("session_id", id),
			goerr.T(apperr.TagNotFound))
	}

	if l.current != nil && l.current.ID == id {
		l.current = nil
	}

	return l.persistLocked(ctx)
}

// ClearAllHistory deletes every session and starts over with a fresh one
func (l *Log) ClearAllHistory(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = conversation.NewSession(ctx)
	l.sessions = []*conversation.Session{l.current}

	return l.persistLocked(ctx)
}

// Statistics summarizes the history. Empty sessions are not counted.
func (l *Log) Statistics(ctx context.Context) (*conversation.Statistics, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := &conversation.Statistics{}
	for _, s := range l.sessions {
		if s.MessageCount == 0 {
			continue
		}
		stats.TotalSessions++
		stats.TotalMessages += s.MessageCount
	}
	if l.current != nil {
		stats.CurrentSessionMessages = l.current.MessageCount
	}
	stats.HasHistory = stats.TotalMessages > 0

	return stats, nil
}

func (l *Log) removeLocked(id types.SessionID) bool {
	for i, s := range l.sessions {
		if s.ID == id {
			l.sessions = append(l.sessions[:i], l.sessions[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Log) persistLocked(ctx context.Context) error {
	if err := l.repo.SaveSessions(ctx, l.sessions); err != nil {
		return goerr.Wrap(err, "failed to persist conversation sessions")
	}
	return nil
}

func copySession(s *conversation.Session) *conversation.Session {
	cp := *s
	cp.Messages = make([]conversation.Turn, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}
