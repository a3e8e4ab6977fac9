package kg

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkgraph/chunkgraph/internal/llm"
	"github.com/chunkgraph/chunkgraph/internal/store"
)

// MockEmbedder implements embedding.Embedder for testing
type MockEmbedder struct {
	Vectors [][]float64
	Err     error
}

func (m *MockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vectors, nil
}

// MockChatModel implements model.BaseChatModel for testing
type MockChatModel struct {
	Response string
	Err      error
	Called   bool
}

func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.Called = true
	if m.Err != nil {
		return nil, m.Err
	}
	return schema.AssistantMessage(m.Response, nil), nil
}

func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported in mock")
}

func queryVector1536(vals ...float64) [][]float64 {
	out := make([]float64, store.EmbeddingDim)
	copy(out, vals)
	return [][]float64{out}
}

func stubFactories(svc *Service, embedder *MockEmbedder, chat *MockChatModel) {
	svc.embedderFactory = func(ctx context.Context, cfg llm.Config) (embedding.Embedder, error) {
		return embedder, nil
	}
	svc.chatModelFactory = func(ctx context.Context, cfg llm.Config) (model.BaseChatModel, error) {
		return chat, nil
	}
}

func TestAskHighConfidence(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedChunks(t, st, [][]float32{embed1536(1, 0)})
	_, err := svc.Build(ctx, testScope, DefaultBuildConfig())
	require.NoError(t, err)

	chat := &MockChatModel{Response: "The answer, per [Source 1]."}
	stubFactories(svc, &MockEmbedder{Vectors: queryVector1536(1, 0)}, chat)

	result, err := svc.Ask(ctx, testScope, "what is in the document?", DefaultAskConfig())
	require.NoError(t, err)
	assert.True(t, chat.Called)
	assert.Equal(t, "The answer, per [Source 1].", result.Answer)
	assert.False(t, result.LowConfidence)
	assert.InDelta(t, 1.0, result.Confidence, 1e-6)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "full text of chunk 0", result.Sources[0].Content)
}

func TestAskLowConfidenceSkipsGeneration(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedChunks(t, st, [][]float32{embed1536(1, 0)})
	_, err := svc.Build(ctx, testScope, DefaultBuildConfig())
	require.NoError(t, err)

	// Orthogonal query: top seed similarity 0, below the 0.60 gate.
	chat := &MockChatModel{Response: "should not be asked"}
	stubFactories(svc, &MockEmbedder{Vectors: queryVector1536(0, 1)}, chat)

	result, err := svc.Ask(ctx, testScope, "something unrelated", DefaultAskConfig())
	require.NoError(t, err)
	assert.False(t, chat.Called, "no LLM call below the confidence gate")
	assert.Equal(t, LowConfidenceAnswer, result.Answer)
	assert.True(t, result.LowConfidence)
	assert.NotEmpty(t, result.Sources, "sources are returned even at low confidence")
}

func TestAskNoResults(t *testing.T) {
	svc, _ := newTestService(t)

	chat := &MockChatModel{}
	stubFactories(svc, &MockEmbedder{Vectors: queryVector1536(1, 0)}, chat)

	result, err := svc.Ask(context.Background(), testScope, "anything?", DefaultAskConfig())
	require.NoError(t, err)
	assert.False(t, chat.Called)
	assert.Equal(t, NoResultsAnswer, result.Answer)
	assert.True(t, result.LowConfidence)
	assert.Empty(t, result.Sources)
}

func TestAskEmptyQuestion(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Ask(context.Background(), testScope, "  ", DefaultAskConfig())
	require.Error(t, err)
}

func TestAskEmbeddingFailure(t *testing.T) {
	svc, _ := newTestService(t)

	stubFactories(svc, &MockEmbedder{Err: errors.New("provider down")}, &MockChatModel{})

	_, err := svc.Ask(context.Background(), testScope, "question", DefaultAskConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate embedding")
}
