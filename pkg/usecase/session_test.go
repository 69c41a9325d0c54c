package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kasumi/pkg/adapters/memory"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
	"github.com/m-mizutani/kasumi/pkg/repository/archive"
	dbmemory "github.com/m-mizutani/kasumi/pkg/repository/database/memory"
	conversationsvc "github.com/m-mizutani/kasumi/pkg/service/conversation"
	"github.com/m-mizutani/kasumi/pkg/usecase"
	"github.com/m-mizutani/kasumi/pkg/utils/async"
)

func newSessionFixture(t *testing.T) (*usecase.Assistant, *conversationsvc.Log, *archive.Client) {
	t.Helper()
	ctx := context.Background()

	convLog := conversationsvc.New(dbmemory.New())
	gt.NoError(t, convLog.Initialize(ctx)).Required()

	arc := archive.New(memory.New())
	uc := usecase.New(
		usecase.WithConversationLog(convLog),
		usecase.WithArchive(arc),
	)
	return uc, convLog, arc
}

func TestDeleteSession_ArchivesTranscript(t *testing.T) {
	ctx := async.WithSyncMode(context.Background())
	uc, convLog, arc := newSessionFixture(t)

	gt.NoError(t, convLog.AppendTurn(ctx, conversation.Turn{Role: conversation.RoleUser, Content: "hello"}))
	gt.NoError(t, convLog.AppendTurn(ctx, conversation.Turn{Role: conversation.RoleAssistant, Content: "hi there"}))

	current, err := convLog.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.DeleteSession(ctx, current.ID))

	// The session is gone from history but its transcript survives
	_, err = convLog.GetSession(ctx, current.ID)
	gt.Error(t, err)

	archived, err := arc.LoadSessionTranscript(ctx, current.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, archived.ID, current.ID)
	gt.A(t, archived.Messages).Length(2)
	gt.Equal(t, archived.Messages[0].Content, "hello")
	gt.Equal(t, archived.Messages[1].Content, "hi there")
}

func TestDeleteSession_EmptySessionSkipsArchive(t *testing.T) {
	ctx := async.WithSyncMode(context.Background())
	uc, convLog, arc := newSessionFixture(t)

	current, err := convLog.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.DeleteSession(ctx, current.ID))

	_, err = arc.LoadSessionTranscript(ctx, current.ID)
	gt.Error(t, err)
}

func TestClearAllHistory_ArchivesEverySession(t *testing.T) {
	ctx := async.WithSyncMode(context.Background())
	uc, convLog, arc := newSessionFixture(t)

	gt.NoError(t, convLog.AppendTurn(ctx, conversation.Turn{Role: conversation.RoleUser, Content: "first session"}))
	first, err := convLog.CurrentSession(ctx)
	gt.NoError(t, err).Required()

	second, err := convLog.StartNewSession(ctx)
	gt.NoError(t, err).Required()
	gt.NoError(t, convLog.AppendTurn(ctx, conversation.Turn{Role: conversation.RoleUser, Content: "second session"}))

	gt.NoError(t, uc.ClearAllHistory(ctx))

	stats, err := convLog.Statistics(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, stats.TotalSessions, 0)

	for _, id := range []types.SessionID{first.ID, second.ID} {
		archived, err := arc.LoadSessionTranscript(ctx, id)
		gt.NoError(t, err).Required()
		gt.A(t, archived.Messages).Length(1)
	}
}
