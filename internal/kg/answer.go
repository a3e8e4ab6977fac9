package kg

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// LowConfidenceAnswer is returned when the best seed falls below the
// confidence threshold; the retrieved sources still accompany it.
const LowConfidenceAnswer = "I could not find sufficiently relevant information to answer that confidently. The closest matches are attached as sources."

// NoResultsAnswer is returned when retrieval finds nothing at all.
const NoResultsAnswer = "I found no relevant information to answer your question."

// AskResult carries a synthesized answer with its supporting retrieval.
type AskResult struct {
	Answer        string          `json:"answer"`
	Confidence    float64         `json:"confidence"`
	LowConfidence bool            `json:"lowConfidence"`
	Sources       []RetrievedItem `json:"sources"`
}

// Ask embeds the question, retrieves graph context, and synthesizes an
// answer. The confidence gate compares the top seed's similarity against
// the threshold; below it no LLM call is made and a fallback answer is
// returned with the sources intact.
func (s *Service) Ask(ctx context.Context, scope Scope, question string, cfg AskConfig) (AskResult, error) {
	var result AskResult

	if err := validateConfig("ask", cfg); err != nil {
		return result, err
	}
	if strings.TrimSpace(question) == "" {
		return result, fmt.Errorf("question is empty")
	}

	queryEmbedding, err := s.EmbedQuery(ctx, question)
	if err != nil {
		return result, err
	}

	items, err := s.Retrieve(ctx, scope, queryEmbedding, cfg.Retrieve)
	if err != nil {
		return result, err
	}
	result.Sources = items

	if len(items) == 0 {
		result.Answer = NoResultsAnswer
		result.LowConfidence = true
		return result, nil
	}

	result.Confidence = items[0].Similarity
	if result.Confidence < cfg.ConfidenceThreshold {
		result.Answer = LowConfidenceAnswer
		result.LowConfidence = true
		return result, nil
	}

	answer, err := s.generateAnswer(ctx, question, items)
	if err != nil {
		return result, err
	}
	result.Answer = answer
	return result, nil
}

// EmbedQuery creates a query vector for the given text.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embedder, err := s.embedderFactory(ctx, s.llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create embedding model: %w", err)
	}

	// Eino returns [][]float64
	embeddings64, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	if len(embeddings64) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding32 := make([]float32, len(embeddings64[0]))
	for i, v := range embeddings64[0] {
		embedding32[i] = float32(v)
	}
	return embedding32, nil
}

// generateAnswer builds a source-delimited context and asks the chat model.
func (s *Service) generateAnswer(ctx context.Context, question string, items []RetrievedItem) (string, error) {
	var contextParts []string
	for i, item := range items {
		contextParts = append(contextParts, fmt.Sprintf("[Source %d] (%s) %s\n%s", i+1, item.Provenance, item.Name, item.Content))
	}
	retrievedContext := strings.Join(contextParts, "\n\n---\n\n")

	prompt := fmt.Sprintf(`You are an expert assistant. Answer the user's question using ONLY the sources below.
Cite sources as [Source N]. If the sources don't contain enough information to answer, say so.
Be concise and direct.

## Sources:
%s

## Question:
%s

## Answer:`, retrievedContext, question)

	chatModel, err := s.chatModelFactory(ctx, s.llmCfg)
	if err != nil {
		return "", fmt.Errorf("create chat model: %w", err)
	}

	messages := []*schema.Message{
		schema.UserMessage(prompt),
	}

	resp, err := chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Content, nil
}
