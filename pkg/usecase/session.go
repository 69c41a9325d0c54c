package usecase

import (
	"context"

	"github.com/m-mizutani/kasumi/pkg/domain/types"
	"github.com/m-mizutani/kasumi/pkg/utils/async"
)

// DeleteSession archives the session transcript before removing it from
// history. Archiving is best effort: a storage failure never blocks the
// delete.
func (uc *Assistant) DeleteSession(ctx context.Context, id types.SessionID) error {
	uc.archiveTranscript(ctx, id)
	return uc.conversationLog.DeleteSession(ctx, id)
}

// ClearAllHistory archives every non-empty session transcript, then wipes
// the history and starts a fresh session.
func (uc *Assistant) ClearAllHistory(ctx context.Context) error {
	if uc.archive != nil {
		sessions, err := uc.conversationLog.AllSessions(ctx)
		if err == nil {
			for _, session := range sessions {
				session := session
				async.Dispatch(ctx, func(ctx context.Context) error {
					return uc.archive.SaveSessionTranscript(ctx, session)
				})
			}
		}
	}

	return uc.conversationLog.ClearAllHistory(ctx)
}

func (uc *Assistant) archiveTranscript(ctx context.Context, id types.SessionID) {
	if uc.archive == nil {
		return
	}

	session, err := uc.conversationLog.GetSession(ctx, id)
	if err != nil || session.MessageCount == 0 {
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.archive.SaveSessionTranscript(ctx, session)
	})
}
