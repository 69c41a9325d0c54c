package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
	"github.com/m-mizutani/kasumi/pkg/utils/async"
)

// ImprovementResult is the outcome of one improvement pass. Exactly one of
// three shapes applies: a new version was produced (NewVersion set), nothing
// needed doing (Unchanged with Reason), or the model call failed (Failed
// with ErrorDetail, nothing marked processed).
type ImprovementResult struct {
	Unchanged    bool            `json:"unchanged"`
	Reason       string          `json:"reason,omitempty"`
	Failed       bool            `json:"failed"`
	ErrorDetail  string          `json:"error_detail,omitempty"`
	NewVersion   *prompt.Version `json:"new_version,omitempty"`
	Improvements []string        `json:"improvements,omitempty"`
	ProcessedIDs []int           `json:"processed_ids,omitempty"`
}

// RunImprovementPass analyzes recent unprocessed feedback and rewrites the
// system prompt. Feedback entries are marked processed only after the new
// version is durably recorded, so a failed pass leaves them eligible for
// the next one.
func (uc *Assistant) RunImprovementPass(ctx context.Context) (*ImprovementResult, error) {
	logger := ctxlog.From(ctx)

	current, err := uc.promptStore.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := uc.feedbackLog.Recent(ctx, uc.feedbackWindow)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return &ImprovementResult{Unchanged: true, Reason: "no feedback available"}, nil
	}

	var pending []*feedback.Entry
	for _, e := range recent {
		if !e.Processed {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return &ImprovementResult{Unchanged: true, Reason: "recent feedback already processed"}, nil
	}

	analysisPrompt := buildAnalysisPrompt(current.Text, pending)

	responseText, err := uc.completion.Complete(ctx, analysisPrompt)
	if err != nil {
		logger.Error("improvement analysis failed", slog.String("error", err.Error()))
		return &ImprovementResult{
			Failed:      true,
			ErrorDetail: err.Error(),
		}, nil
	}

	improvements, newPrompt := parseAnalysisResponse(responseText)

	ids := make([]int, len(pending))
	for i, e := range pending {
		ids[i] = e.ID
	}

	// A rewrite identical to the current prompt is consumed without
	// minting a new version
	if newPrompt == current.Text {
		if err := uc.feedbackLog.MarkProcessed(ctx, ids); err != nil {
			return nil, err
		}
		logger.Info("prompt unchanged by analysis",
			slog.Int("feedbacks_processed", len(ids)),
		)
		return &ImprovementResult{
			Unchanged:    true,
			Reason:       "no significant change",
			ProcessedIDs: ids,
		}, nil
	}

	next, err := uc.promptStore.Append(ctx, newPrompt, improvements)
	if err != nil {
		return nil, err
	}

	if err := uc.feedbackLog.MarkProcessed(ctx, ids); err != nil {
		return nil, err
	}

	if uc.archive != nil {
		version := next.Version
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.archive.SaveImprovementResponse(ctx, version, responseText)
		})
	}

	logger.Info("prompt improved",
		slog.Int("new_version", next.Version),
		slog.Int("improvements", len(improvements)),
		slog.Int("feedbacks_processed", len(ids)),
	)

	return &ImprovementResult{
		NewVersion:   next,
		Improvements: improvements,
		ProcessedIDs: ids,
	}, nil
}

// buildAnalysisPrompt composes the meta prompt asking the model to rewrite
// the system prompt based on the collected feedback
func buildAnalysisPrompt(currentPrompt string, entries []*feedback.Entry) string {
	var feedbacks strings.Builder
	for i, e := range entries {
		if i > 0 {
			feedbacks.WriteString("\n\n")
		}
		fmt.Fprintf(&feedbacks, "Feedback %d:\n", e.ID)
		fmt.Fprintf(&feedbacks, "User said: %s\n", e.UserMessage)
		fmt.Fprintf(&feedbacks, "Assistant answered: %s\n", e.AgentResponse)
		fmt.Fprintf(&feedbacks, "Feedback: %s\n", e.FeedbackText)
		fmt.Fprintf(&feedbacks, "Rating: %d/5", e.Rating)
	}

	return fmt.Sprintf(`You are an expert in improving prompts for AI systems.

Analyze the feedback below about a virtual assistant's answers and suggest specific improvements to its system prompt.

CURRENT PROMPT:
%s

COLLECTED FEEDBACK:
%s

Your task:
1. Identify patterns and problems in the feedback
2. Suggest specific, actionable improvements
3. Rewrite the prompt incorporating those improvements
4. Keep the existing structure and capabilities
5. Be specific about what changed

Answer in the following format:

%s
- [list of specific improvements, one per line]

%s
[the rewritten, improved prompt]
`, currentPrompt, feedbacks.String(), improvementsMarker, newPromptMarker)
}
