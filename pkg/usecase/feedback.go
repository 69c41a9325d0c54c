package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
)

// SubmitFeedback records one rating against the prompt version that is
// current at submission time, and bumps that version's feedback counter.
func (uc *Assistant) SubmitFeedback(ctx context.Context, userMessage, agentResponse, feedbackText string, rating int) (*feedback.Entry, error) {
	current, err := uc.promptStore.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := uc.feedbackLog.Add(ctx, userMessage, agentResponse, feedbackText, rating, current.Version)
	if err != nil {
		return nil, err
	}

	if err := uc.promptStore.IncrementFeedbackCount(ctx); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("feedback recorded",
		slog.Int("id", entry.ID),
		slog.Int("rating", entry.Rating),
		slog.Int("prompt_version", entry.PromptVersion),
	)

	return entry, nil
}
