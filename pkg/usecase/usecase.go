package usecase

import (
	"context"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/repository/archive"
	conversationsvc "github.com/m-mizutani/kasumi/pkg/service/conversation"
	feedbacksvc "github.com/m-mizutani/kasumi/pkg/service/feedback"
	promptsvc "github.com/m-mizutani/kasumi/pkg/service/prompt"
)

const defaultFeedbackWindow = 10

// Assistant holds all use cases: chatting with tool calling, feedback
// collection and the feedback-driven prompt improvement pass.
type Assistant struct {
	promptStore     *promptsvc.Store
	feedbackLog     *feedbacksvc.Log
	conversationLog *conversationsvc.Log
	llmClient       gollem.LLMClient
	completion      interfaces.CompletionClient
	vectorSearch    interfaces.VectorSearch
	tools           []gollem.Tool
	archive         *archive.Client
	feedbackWindow  int

	// newSession overrides model session creation in tests
	newSession func(ctx context.Context) (chatSession, error)
}

// Option is a functional option for Assistant
type Option func(*Assistant)

// WithPromptStore sets the prompt version store
func WithPromptStore(store *promptsvc.Store) Option {
	return func(uc *Assistant) {
		uc.promptStore = store
	}
}

// WithFeedbackLog sets the feedback log
func WithFeedbackLog(log *feedbacksvc.Log) Option {
	return func(uc *Assistant) {
		uc.feedbackLog = log
	}
}

// WithConversationLog sets the conversation log
func WithConversationLog(log *conversationsvc.Log) Option {
	return func(uc *Assistant) {
		uc.conversationLog = log
	}
}

// WithLLMClient sets the LLM client used for chat
func WithLLMClient(client gollem.LLMClient) Option {
	return func(uc *Assistant) {
		uc.llmClient = client
	}
}

// WithCompletionClient sets the one-shot completion client used by the
// improvement pass
func WithCompletionClient(client interfaces.CompletionClient) Option {
	return func(uc *Assistant) {
		uc.completion = client
	}
}

// WithVectorSearch sets the similarity index
func WithVectorSearch(vs interfaces.VectorSearch) Option {
	return func(uc *Assistant) {
		uc.vectorSearch = vs
	}
}

// WithTools sets the lookup tools exposed to the model
func WithTools(tools []gollem.Tool) Option {
	return func(uc *Assistant) {
		uc.tools = tools
	}
}

// WithArchive sets the archive client for raw model responses and
// transcripts
func WithArchive(client *archive.Client) Option {
	return func(uc *Assistant) {
		uc.archive = client
	}
}

// WithFeedbackWindow sets how many recent feedback entries an improvement
// pass considers
func WithFeedbackWindow(n int) Option {
	return func(uc *Assistant) {
		if n > 0 {
			uc.feedbackWindow = n
		}
	}
}

// New creates a new Assistant use case
func New(opts ...Option) *Assistant {
	uc := &Assistant{
		feedbackWindow: defaultFeedbackWindow,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// PromptStore exposes the prompt store for controllers
func (uc *Assistant) PromptStore() *promptsvc.Store {
	return uc.promptStore
}

// FeedbackLog exposes the feedback log for controllers
func (uc *Assistant) FeedbackLog() *feedbacksvc.Log {
	return uc.feedbackLog
}

// ConversationLog exposes the conversation log for controllers
func (uc *Assistant) ConversationLog() *conversationsvc.Log {
	return uc.conversationLog
}
