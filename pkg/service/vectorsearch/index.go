package vectorsearch

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
)

const (
	defaultDimension = 256

	collectionKnowledge     = "knowledge"
	collectionConversations = "conversations"

	storageKey = "vectorsearch/index.json"
)

// Embedder is the narrow view of the LLM client used by the index.
// gollem.LLMClient satisfies it.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// document is one indexed text with its embedding vector
type document struct {
	Content   string            `json:"content"`
	Vector    []float64         `json:"vector"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	IndexedAt time.Time         `json:"indexed_at"`
}

// indexState is the persisted layout of both collections
type indexState struct {
	Dimension     int        `json:"dimension"`
	Knowledge     []document `json:"knowledge"`
	Conversations []document `json:"conversations"`
}

// Index is an embedding-based similarity index over two collections: a
// seeded knowledge base describing what the assistant can do, and past
// conversation exchanges. Vectors live in memory; the whole index is
// persisted through a StorageAdapter after each mutation.
type Index struct {
	embedder  Embedder
	storage   interfaces.StorageAdapter
	dimension int

	mu    sync.RWMutex
	state indexState
}

// Option is a functional option for Index
type Option func(*Index)

// WithDimension overrides the embedding dimension
func WithDimension(d int) Option {
	return func(x *Index) {
		x.dimension = d
	}
}

// New creates a new similarity index. storage may be nil for an ephemeral
// in-memory index.
func New(embedder Embedder, storage interfaces.StorageAdapter, opts ...Option) *Index {
	x := &Index{
		embedder:  embedder,
		storage:   storage,
		dimension: defaultDimension,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.state.Dimension = x.dimension
	return x
}

// Initialize loads the persisted index and seeds the knowledge base when it
// is empty. seeds are plain texts, typically tool capability descriptions.
func (x *Index) Initialize(ctx context.Context, seeds []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.storage != nil {
		data, err := x.storage.Get(ctx, storageKey)
		switch {
		case err == nil:
			var state indexState
			if err := json.Unmarshal(data, &state); err != nil {
				return goerr.Wrap(err, "failed to decode vector index",
					goerr.T(apperr.TagStorage))
			}
			// A dimension change invalidates stored vectors
			if state.Dimension == x.dimension {
				x.state = state
				return nil
			}
		case errors.Is(err, interfaces.ErrStorageKeyNotFound):
			// First run, fall through to seeding
		default:
			return goerr.Wrap(err, "failed to load vector index",
				goerr.T(apperr.TagStorage))
		}
	}

	if len(seeds) > 0 {
		vectors, err := x.embed(ctx, seeds)
		if err != nil {
			return err
		}
		now := time.Now()
		x.state.Knowledge = make([]document, len(seeds))
		for i, text := range seeds {
			x.state.Knowledge[i] = document{
				Content:   text,
				Vector:    vectors[i],
				IndexedAt: now,
			}
		}
	}

	return x.persistLocked(ctx)
}

// SearchKnowledge returns the topK most similar knowledge documents
func (x *Index) SearchKnowledge(ctx context.Context, query string, topK int) ([]interfaces.SearchResult, error) {
	return x.search(ctx, query, topK, collectionKnowledge)
}

// SearchConversations returns the topK most similar past exchanges
func (x *Index) SearchConversations(ctx context.Context, query string, topK int) ([]interfaces.SearchResult, error) {
	return x.search(ctx, query, topK, collectionConversations)
}

// IndexConversation adds one user/agent exchange to the conversation
// collection
func (x *Index) IndexConversation(ctx context.Context, userText, agentText string, meta map[string]string) error {
	content := "User: " + userText + "\nAssistant: " + agentText

	vectors, err := x.embed(ctx, []string{content})
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.state.Conversations = append(x.state.Conversations, document{
		Content:   content,
		Vector:    vectors[0],
		Metadata:  meta,
		IndexedAt: time.Now(),
	})

	return x.persistLocked(ctx)
}

func (x *Index) search(ctx context.Context, query string, topK int, collection string) ([]interfaces.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	vectors, err := x.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	queryVec := vectors[0]

	x.mu.RLock()
	defer x.mu.RUnlock()

	docs := x.state.Knowledge
	if collection == collectionConversations {
		docs = x.state.Conversations
	}

	results := make([]interfaces.SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, interfaces.SearchResult{
			Content:    doc.Content,
			Similarity: cosineSimilarity(queryVec, doc.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (x *Index) embed(ctx context.Context, input []string) ([][]float64, error) {
	vectors, err := x.embedder.GenerateEmbedding(ctx, x.dimension, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding",
			goerr.T(apperr.TagExternalService))
	}
	if len(vectors) != len(input) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(input)),
			goerr.V("got", len(vectors)),
			goerr.T(apperr.TagExternalService))
	}
	return vectors, nil
}

func (x *Index) persistLocked(ctx context.Context) error {
	if x.storage == nil {
		return nil
	}

	data, err := json.Marshal(x.state)
	if err != nil {
		return goerr.Wrap(err, "failed to encode vector index")
	}

	if err := x.storage.Put(ctx, storageKey, data); err != nil {
		return goerr.Wrap(err, "failed to persist vector index",
			goerr.T(apperr.TagStorage))
	}
	return nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// zero when either vector has zero magnitude
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ensure Index implements the VectorSearch interface
var _ interfaces.VectorSearch = (*Index)(nil)
