package llm

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
)

const defaultCompletionTimeout = 15 * time.Second

// CompletionService adapts a gollem client to the one-shot completion
// contract used by the prompt improver. Each call opens a fresh session so
// no conversation state leaks between improvement passes.
type CompletionService struct {
	client  gollem.LLMClient
	timeout time.Duration
}

// CompletionOption is a functional option for CompletionService
type CompletionOption func(*CompletionService)

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) CompletionOption {
	return func(s *CompletionService) {
		s.timeout = d
	}
}

// NewCompletionService creates a new completion service
func NewCompletionService(client gollem.LLMClient, opts ...CompletionOption) *CompletionService {
	s := &CompletionService{
		client:  client,
		timeout: defaultCompletionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Complete sends a single prompt and returns the model's text response
func (s *CompletionService) Complete(ctx context.Context, promptText string) (string, error) {
	if promptText == "" {
		return "", goerr.New("prompt text is empty", goerr.T(apperr.TagInvalidArgument))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.client.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session",
			goerr.T(apperr.TagExternalService))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(promptText))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate completion",
			goerr.T(apperr.TagExternalService))
	}

	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned empty response",
			goerr.T(apperr.TagExternalService))
	}

	return strings.Join(resp.Texts, "\n"), nil
}

// Ensure CompletionService implements the CompletionClient interface
var _ interfaces.CompletionClient = (*CompletionService)(nil)
