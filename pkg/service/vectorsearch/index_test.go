package vectorsearch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kasumi/pkg/adapters/memory"
	"github.com/m-mizutani/kasumi/pkg/service/vectorsearch"
)

// stubEmbedder maps keywords to fixed axes so similarity is deterministic
type stubEmbedder struct{}

func (stubEmbedder) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	axes := []string{"weather", "pokemon", "postal"}
	out := make([][]float64, len(input))
	for i, text := range input {
		vec := make([]float64, dimension)
		lower := strings.ToLower(text)
		for axis, word := range axes {
			if strings.Contains(lower, word) {
				vec[axis] = 1
			}
		}
		// Avoid all-zero vectors for unrelated text
		vec[dimension-1] = 0.01
		out[i] = vec
	}
	return out, nil
}

func newIndex(t *testing.T, seeds []string) *vectorsearch.Index {
	t.Helper()
	idx := vectorsearch.New(stubEmbedder{}, memory.New(), vectorsearch.WithDimension(8))
	gt.NoError(t, idx.Initialize(context.Background(), seeds)).Required()
	return idx
}

func TestIndex_SearchKnowledgeRanksByQuery(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, []string{
		"weather lookup: current conditions and forecasts",
		"pokemon reference: species data",
		"postal code lookup for Brazilian addresses",
	})

	results, err := idx.SearchKnowledge(ctx, "will it rain? check the weather", 2)
	gt.NoError(t, err).Required()
	gt.A(t, results).Length(2)
	gt.True(t, strings.Contains(results[0].Content, "weather"))
	gt.True(t, results[0].Similarity > results[1].Similarity)
}

func TestIndex_SearchConversations(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, nil)

	gt.NoError(t, idx.IndexConversation(ctx, "tell me about pokemon", "Pikachu is an electric type.", map[string]string{"session": "s1"}))
	gt.NoError(t, idx.IndexConversation(ctx, "what is the weather in Rio?", "Sunny, 28C.", nil))

	results, err := idx.SearchConversations(ctx, "pokemon types", 1)
	gt.NoError(t, err).Required()
	gt.A(t, results).Length(1)
	gt.True(t, strings.Contains(results[0].Content, "Pikachu"))
}

func TestIndex_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()

	idx := vectorsearch.New(stubEmbedder{}, storage, vectorsearch.WithDimension(8))
	gt.NoError(t, idx.Initialize(ctx, []string{"weather lookup tool"})).Required()
	gt.NoError(t, idx.IndexConversation(ctx, "weather in Manaus?", "Rainy.", nil))

	// Reopening over the same storage keeps both collections without
	// reseeding
	reopened := vectorsearch.New(stubEmbedder{}, storage, vectorsearch.WithDimension(8))
	gt.NoError(t, reopened.Initialize(ctx, []string{"this seed must be ignored"})).Required()

	know, err := reopened.SearchKnowledge(ctx, "weather", 5)
	gt.NoError(t, err).Required()
	gt.A(t, know).Length(1)
	gt.True(t, strings.Contains(know[0].Content, "weather lookup tool"))

	conv, err := reopened.SearchConversations(ctx, "weather", 5)
	gt.NoError(t, err).Required()
	gt.A(t, conv).Length(1)
}

func TestIndex_TopKZeroReturnsNothing(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, []string{"weather lookup"})

	results, err := idx.SearchKnowledge(ctx, "weather", 0)
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}
