package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
	"github.com/m-mizutani/kasumi/pkg/utils/async"
)

const (
	knowledgeTopK      = 2
	conversationTopK   = 1
	knowledgeThreshold = 0.5
	convThreshold      = 0.6
	historyWindow      = 5

	// snippetLimit truncates similar-conversation context to keep the
	// composed prompt small
	snippetLimit = 200
)

// ChatResult is the outcome of one chat exchange
type ChatResult struct {
	SessionID   types.SessionID         `json:"session_id"`
	Response    string                  `json:"response"`
	Turns       []conversation.Turn     `json:"turns"`
	ToolsUsed   []conversation.ToolCall `json:"tools_used"`
	ToolsOutput string                  `json:"tools_output,omitempty"`
	HasContext  bool                    `json:"has_context"`
}

// Chat processes one user message on the given session: gather similarity
// context, call the model with the lookup tools, execute any requested tool
// calls, and record both turns. The user turn is recorded even when the
// model call fails, so the transcript shows what was asked.
func (uc *Assistant) Chat(ctx context.Context, sessionID types.SessionID, userMessage string) (*ChatResult, error) {
	logger := ctxlog.From(ctx)

	if strings.TrimSpace(userMessage) == "" {
		return nil, goerr.New("message is empty", goerr.T(apperr.TagInvalidArgument))
	}

	vectorContext := uc.contextFromIndex(ctx, userMessage)
	fullMessage, err := uc.composeMessage(ctx, sessionID, userMessage, vectorContext)
	if err != nil {
		return nil, err
	}

	if err := uc.conversationLog.AppendTurnTo(ctx, sessionID, conversation.Turn{
		Role:    conversation.RoleUser,
		Content: userMessage,
	}); err != nil {
		return nil, err
	}

	session, err := uc.startChatSession(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat session",
			goerr.T(apperr.TagExternalService))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(fullMessage))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate response",
			goerr.T(apperr.TagExternalService))
	}

	var toolsUsed []conversation.ToolCall
	var toolsOutput strings.Builder

	if len(resp.FunctionCalls) > 0 {
		responses := make([]gollem.Input, 0, len(resp.FunctionCalls))
		for _, call := range resp.FunctionCalls {
			output := uc.executeToolCall(ctx, call)
			toolsOutput.WriteString(output)
			toolsOutput.WriteString("\n\n")

			toolsUsed = append(toolsUsed, conversation.ToolCall{
				Name:      call.Name,
				Arguments: fmt.Sprintf("%v", call.Arguments),
			})
			responses = append(responses, gollem.FunctionResponse{
				ID:   call.ID,
				Name: call.Name,
				Data: map[string]any{"result": output},
			})
		}

		resp, err = session.GenerateContent(ctx, responses...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate final response",
				goerr.T(apperr.TagExternalService))
		}
	}

	response := strings.Join(resp.Texts, "\n")
	if response == "" {
		response = "Sorry, I could not process your message."
	}

	if err := uc.conversationLog.AppendTurnTo(ctx, sessionID, conversation.Turn{
		Role:        conversation.RoleAssistant,
		Content:     response,
		ToolsUsed:   toolsUsed,
		ToolsOutput: strings.TrimSpace(toolsOutput.String()),
	}); err != nil {
		return nil, err
	}

	turns, err := uc.conversationLog.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Index the exchange in the background so chat latency does not pay
	// for an embedding call
	if uc.vectorSearch != nil {
		toolNames := make([]string, 0, len(toolsUsed))
		for _, t := range toolsUsed {
			toolNames = append(toolNames, t.Name)
		}
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.vectorSearch.IndexConversation(ctx, userMessage, response, map[string]string{
				"tools_used":  strings.Join(toolNames, ","),
				"has_context": fmt.Sprintf("%t", vectorContext != ""),
			})
		})
	}

	logger.Info("chat exchange completed",
		slog.Int("tool_calls", len(toolsUsed)),
		slog.Bool("has_context", vectorContext != ""),
	)

	return &ChatResult{
		SessionID:   sessionID,
		Response:    response,
		Turns:       turns,
		ToolsUsed:   toolsUsed,
		ToolsOutput: strings.TrimSpace(toolsOutput.String()),
		HasContext:  vectorContext != "",
	}, nil
}

// chatSession is the slice of a model session the chat loop uses
type chatSession interface {
	GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (uc *Assistant) startChatSession(ctx context.Context) (chatSession, error) {
	if uc.newSession != nil {
		return uc.newSession(ctx)
	}
	return uc.llmClient.NewSession(ctx, gollem.WithSessionTools(uc.tools...))
}

// contextFromIndex collects similarity context. Index failures degrade to
// an empty context instead of failing the chat.
func (uc *Assistant) contextFromIndex(ctx context.Context, userMessage string) string {
	if uc.vectorSearch == nil {
		return ""
	}
	logger := ctxlog.From(ctx)

	var parts []string

	knowledge, err := uc.vectorSearch.SearchKnowledge(ctx, userMessage, knowledgeTopK)
	if err != nil {
		logger.Warn("knowledge search failed", slog.String("error", err.Error()))
	} else {
		var hits []string
		for _, item := range knowledge {
			if item.Similarity > knowledgeThreshold {
				hits = append(hits, "- "+item.Content)
			}
		}
		if len(hits) > 0 {
			parts = append(parts, "Relevant knowledge:")
			parts = append(parts, hits...)
		}
	}

	similar, err := uc.vectorSearch.SearchConversations(ctx, userMessage, conversationTopK)
	if err != nil {
		logger.Warn("conversation search failed", slog.String("error", err.Error()))
	} else {
		var hits []string
		for _, conv := range similar {
			if conv.Similarity > convThreshold {
				content := conv.Content
				if len(content) > snippetLimit {
					content = content[:snippetLimit] + "..."
				}
				hits = append(hits, "- "+content)
			}
		}
		if len(hits) > 0 {
			parts = append(parts, "Similar past conversations:")
			parts = append(parts, hits...)
		}
	}

	return strings.Join(parts, "\n")
}

// composeMessage builds the full prompt: current system prompt, similarity
// context, the last turns of the session, and the user message
func (uc *Assistant) composeMessage(ctx context.Context, sessionID types.SessionID, userMessage, vectorContext string) (string, error) {
	current, err := uc.promptStore.GetCurrent(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(current.Text)

	if vectorContext != "" {
		b.WriteString("\n\nKNOWLEDGE BASE CONTEXT:\n")
		b.WriteString(vectorContext)
	}

	messages, err := uc.conversationLog.Messages(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}
	if len(messages) > 0 {
		b.WriteString("\n\nRECENT HISTORY:\n")
		for _, msg := range messages {
			speaker := "User"
			if msg.Role == conversation.RoleAssistant {
				speaker = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, msg.Content)
		}
	}

	b.WriteString("\n\nUSER MESSAGE:\n")
	b.WriteString(userMessage)

	return b.String(), nil
}

// executeToolCall runs one requested tool and returns its textual output.
// Unknown tools and tool errors become output text so the model can recover.
func (uc *Assistant) executeToolCall(ctx context.Context, call *gollem.FunctionCall) string {
	logger := ctxlog.From(ctx)

	for _, tool := range uc.tools {
		if tool.Spec().Name != call.Name {
			continue
		}

		result, err := tool.Run(ctx, call.Arguments)
		if err != nil {
			logger.Warn("tool execution failed",
				slog.String("tool", call.Name),
				slog.String("error", err.Error()),
			)
			return fmt.Sprintf("Tool %s failed: %v", call.Name, err)
		}

		if text, ok := result["result"].(string); ok {
			return text
		}
		return fmt.Sprintf("%v", result)
	}

	return fmt.Sprintf("Unknown tool: %s", call.Name)
}
