package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/ollama"
	"github.com/botdock/botdock/internal/repository"
	"go.uber.org/zap"
)

const answerPrompt = `You are a helpful AI assistant. Based on the provided context, answer the user's question accurately and helpfully.

Context: %s

User Question: %s

Please provide a helpful and accurate response based on the context. If the context doesn't contain relevant information, politely explain that you don't have enough information to answer the question.

Response:`

const (
	apologyResponse      = "I'm sorry, I couldn't process your request at the moment. Please try again later."
	noContextInstruction = "No specific context available. Please provide general helpful responses."
)

// ChatService answers end-user messages from a chatbot's ingested
// knowledge. Once input validation has passed it always produces a
// response: retrieval and backend failures degrade to weaker context or
// a fixed apology instead of surfacing as errors.
type ChatService struct {
	chatbotRepo *repository.ChatbotRepository
	docRepo     *repository.DocumentRepository
	convRepo    *repository.ConversationRepository
	retriever   *Retriever
	client      *ollama.Client
	resolver    *ollama.Resolver
	model       string
	logger      *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	chatbotRepo *repository.ChatbotRepository,
	docRepo *repository.DocumentRepository,
	convRepo *repository.ConversationRepository,
	retriever *Retriever,
	client *ollama.Client,
	resolver *ollama.Resolver,
	model string,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		chatbotRepo: chatbotRepo,
		docRepo:     docRepo,
		convRepo:    convRepo,
		retriever:   retriever,
		client:      client,
		resolver:    resolver,
		model:       model,
		logger:      logger,
	}
}

// Answer handles one chat turn: validate, retrieve knowledge, assemble
// the prompt context, generate, and record the conversation.
func (s *ChatService) Answer(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if len(message) > domain.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, domain.MaxMessageLength)
	}

	bot, err := s.chatbotRepo.Get(req.ChatbotID)
	if err != nil {
		return nil, err
	}
	if bot == nil || !bot.IsActive {
		return nil, domain.ErrNotFound
	}

	start := time.Now()

	summaries, err := s.docRepo.ListCompletedContent(req.ChatbotID)
	if err != nil {
		s.logger.Warn("failed to load document context",
			zap.String("chatbot_id", req.ChatbotID), zap.Error(err))
		summaries = nil
	}

	entries, err := s.retriever.Retrieve(ctx, req.ChatbotID, message)
	if err != nil {
		s.logger.Warn("knowledge retrieval failed",
			zap.String("chatbot_id", req.ChatbotID), zap.Error(err))
		entries = nil
	}

	contextText := AssembleContext(summaries, entries)
	response := s.generate(ctx, contextText, message)
	elapsed := int(time.Since(start).Milliseconds())

	conv := &domain.Conversation{
		ChatbotID:      req.ChatbotID,
		SessionID:      req.SessionID,
		UserMessage:    message,
		BotResponse:    response,
		ResponseTimeMs: elapsed,
	}
	if err := s.convRepo.Create(conv); err != nil {
		s.logger.Error("failed to record conversation",
			zap.String("chatbot_id", req.ChatbotID), zap.Error(err))
	}

	return &domain.ChatResponse{Response: response, ResponseTimeMs: elapsed}, nil
}

func (s *ChatService) generate(ctx context.Context, contextText, message string) string {
	model, err := s.resolver.EnsureModel(ctx, s.model)
	if err != nil {
		s.logger.Warn("no inference model available", zap.Error(err))
		return apologyResponse
	}

	prompt := fmt.Sprintf(answerPrompt, contextText, message)
	response, err := s.client.Generate(ctx, model, prompt, ollama.GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		s.logger.Warn("generation failed", zap.String("model", model), zap.Error(err))
		return apologyResponse
	}
	return response
}

// AssembleContext merges completed document summaries with retrieved
// Q&A entries into one prompt context. With nothing to include it
// returns an explicit instruction rather than an empty string, so the
// model never sees a blank context.
func AssembleContext(summaries []string, entries []*domain.QAEntry) string {
	base := strings.TrimSpace(strings.Join(summaries, "\n\n"))
	if base == "" {
		base = noContextInstruction
	}
	if len(entries) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nCustom Q&A knowledge:")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n\nQ: %s\nA: %s", e.Question, e.Answer)
	}
	return b.String()
}
