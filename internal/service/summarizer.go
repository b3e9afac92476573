package service

import (
	"context"
	"fmt"

	"github.com/botdock/botdock/internal/ollama"
)

const summarizePrompt = `Analyze and summarize this content for chatbot training. Extract key information, main topics, and important details that would be useful for answering user questions:

Content: %s

Please provide a comprehensive summary that captures the essential information:`

// ContentSummarizer condenses extracted document text into a summary
// suitable for prompt context.
type ContentSummarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Summarizer implements ContentSummarizer against an Ollama backend.
type Summarizer struct {
	client   *ollama.Client
	resolver *ollama.Resolver
	model    string
}

// NewSummarizer creates a new summarizer with the preferred model
func NewSummarizer(client *ollama.Client, resolver *ollama.Resolver, model string) *Summarizer {
	return &Summarizer{client: client, resolver: resolver, model: model}
}

func (s *Summarizer) Summarize(ctx context.Context, content string) (string, error) {
	model, err := s.resolver.EnsureModel(ctx, s.model)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(summarizePrompt, content)
	summary, err := s.client.Generate(ctx, model, prompt, ollama.GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize content: %w", err)
	}
	return summary, nil
}
