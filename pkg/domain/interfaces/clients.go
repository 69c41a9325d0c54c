package interfaces

import (
	"context"
)

// CompletionClient is the narrow view of the completion service used by the
// prompt improver: one prompt in, one free-form text out. Failures carry the
// apperr.TagExternalService tag and are retryable by the caller.
type CompletionClient interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// SearchResult is one similarity-search hit
type SearchResult struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// VectorSearch is the similarity-search index consumed by the orchestrator.
// Internals (embedding, ranking) are opaque; the orchestrator only filters
// results by similarity threshold.
type VectorSearch interface {
	SearchKnowledge(ctx context.Context, query string, topK int) ([]SearchResult, error)
	SearchConversations(ctx context.Context, query string, topK int) ([]SearchResult, error)
	IndexConversation(ctx context.Context, userText, agentText string, meta map[string]string) error
}
