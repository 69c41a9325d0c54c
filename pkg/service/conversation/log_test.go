package conversation_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/repository/database/local"
	"github.com/m-mizutani/kasumi/pkg/repository/database/memory"
	conversationsvc "github.com/m-mizutani/kasumi/pkg/service/conversation"
)

func newLog(t *testing.T) *conversationsvc.Log {
	t.Helper()
	log := conversationsvc.New(memory.New())
	gt.NoError(t, log.Initialize(context.Background())).Required()
	return log
}

func userTurn(content string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleUser, Content: content}
}

func assistantTurn(content string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleAssistant, Content: content}
}

func TestLog_AppendTurnOnCurrentSession(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	gt.NoError(t, log.AppendTurn(ctx, userTurn("hello")))
	gt.NoError(t, log.AppendTurn(ctx, assistantTurn("hi, how can I help?")))

	messages, err := log.CurrentMessages(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, messages).Length(2)
	gt.Equal(t, messages[0].Role, conversation.RoleUser)
	gt.Equal(t, messages[1].Role, conversation.RoleAssistant)

	current, err := log.CurrentSession(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, current.MessageCount, 2)
}

func TestLog_AppendTurnRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	err := log.AppendTurn(ctx, conversation.Turn{Role: "system", Content: "x"})
	gt.Error(t, err)
}

func TestLog_AllSessionsHidesEmptySessions(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	// Current session is empty, so nothing is listed yet
	sessions, err := log.AllSessions(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(0)

	gt.NoError(t, log.AppendTurn(ctx, userTurn("first")))

	_, err = log.StartNewSession(ctx)
	gt.NoError(t, err)

	sessions, err = log.AllSessions(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(1)
	gt.Equal(t, sessions[0].MessageCount, 1)
}

func TestLog_ClearCurrentDropsTurns(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	gt.NoError(t, log.AppendTurn(ctx, userTurn("to be dropped")))
	before, err := log.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	gt.NoError(t, log.ClearCurrent(ctx))

	after, err := log.CurrentSession(ctx)
	gt.NoError(t, err).Required()
	gt.True(t, after.ID != before.ID)
	gt.Equal(t, after.MessageCount, 0)

	sessions, err := log.AllSessions(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(0)
}

func TestLog_DeleteCurrentSessionBlocksAppends(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	gt.NoError(t, log.AppendTurn(ctx, userTurn("hello")))
	current, err := log.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	gt.NoError(t, log.DeleteSession(ctx, current.ID))

	err = log.AppendTurn(ctx, userTurn("orphan"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, conversation.ErrNoCurrentSession))

	// A new session restores normal operation
	_, err = log.StartNewSession(ctx)
	gt.NoError(t, err)
	gt.NoError(t, log.AppendTurn(ctx, userTurn("back again")))
}

func TestLog_AppendTurnToAddressesSessionByID(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	gt.NoError(t, log.AppendTurn(ctx, userTurn("in first session")))
	first, err := log.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	second, err := log.StartNewSession(ctx)
	gt.NoError(t, err).Required()

	// Turns can still land on the older session when addressed by ID
	gt.NoError(t, log.AppendTurnTo(ctx, first.ID, assistantTurn("late reply")))

	firstTurns, err := log.Messages(ctx, first.ID)
	gt.NoError(t, err).Required()
	gt.A(t, firstTurns).Length(2)
	gt.Equal(t, firstTurns[1].Content, "late reply")

	secondTurns, err := log.Messages(ctx, second.ID)
	gt.NoError(t, err).Required()
	gt.A(t, secondTurns).Length(0)

	err = log.AppendTurnTo(ctx, "no-such-session", userTurn("x"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, conversation.ErrSessionNotFound))
}

func TestLog_DeleteUnknownSession(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	err := log.DeleteSession(ctx, "no-such-session")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, conversation.ErrSessionNotFound))
}

func TestLog_ClearAllHistoryStartsFresh(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	gt.NoError(t, log.AppendTurn(ctx, userTurn("one")))
	_, err := log.StartNewSession(ctx)
	gt.NoError(t, err)
	gt.NoError(t, log.AppendTurn(ctx, userTurn("two")))

	gt.NoError(t, log.ClearAllHistory(ctx))

	sessions, err := log.AllSessions(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(0)

	// A fresh current session is ready for turns
	gt.NoError(t, log.AppendTurn(ctx, userTurn("fresh start")))

	stats, err := log.Statistics(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, stats.TotalSessions, 1)
	gt.Equal(t, stats.TotalMessages, 1)
	gt.Equal(t, stats.CurrentSessionMessages, 1)
	gt.True(t, stats.HasHistory)
}

func TestLog_RoundTripThroughLocalFiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "kasumi")

	repo, err := local.New(dir)
	gt.NoError(t, err).Required()

	log := conversationsvc.New(repo)
	gt.NoError(t, log.Initialize(ctx)).Required()
	gt.NoError(t, log.AppendTurn(ctx, userTurn("persisted question")))
	gt.NoError(t, log.AppendTurn(ctx, assistantTurn("persisted answer")))

	// A second log over the same directory sees the archived session
	repo2, err := local.New(dir)
	gt.NoError(t, err).Required()
	reloaded := conversationsvc.New(repo2)
	gt.NoError(t, reloaded.Initialize(ctx)).Required()

	sessions, err := reloaded.AllSessions(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(1)
	gt.Equal(t, sessions[0].Messages[0].Content, "persisted question")
}
