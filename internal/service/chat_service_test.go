package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/ollama"
	"github.com/botdock/botdock/internal/repository"
)

type chatFixture struct {
	svc      *ChatService
	convRepo *repository.ConversationRepository
	docRepo  *repository.DocumentRepository
	db       *repository.DB
	bot      *domain.Chatbot
	prompts  *[]string
}

// newChatFixture wires a chat service against a stub inference server
// that reports one available model and echoes a fixed answer.
func newChatFixture(t *testing.T, backend http.Handler) *chatFixture {
	t.Helper()
	db := newTestDB(t)
	bot := createTestChatbot(t, db)

	var prompts []string
	if backend == nil {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"models": []map[string]string{{"name": "llama3:8b"}},
			})
		})
		mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Prompt string `json:"prompt"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			prompts = append(prompts, req.Prompt)
			json.NewEncoder(w).Encode(map[string]string{"response": "the answer"})
		})
		backend = mux
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := ollama.NewClient(srv.URL, 5*time.Second)
	resolver := ollama.NewResolver(client, []string{"llama3:8b"}, zap.NewNop())

	chatbotRepo := repository.NewChatbotRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	convRepo := repository.NewConversationRepository(db)
	retriever := NewRetriever(repository.NewQARepository(db), zap.NewNop())

	svc := NewChatService(chatbotRepo, docRepo, convRepo, retriever, client, resolver, "llama3:8b", zap.NewNop())
	return &chatFixture{svc: svc, convRepo: convRepo, docRepo: docRepo, db: db, bot: bot, prompts: &prompts}
}

func TestAnswer_EmptyMessage(t *testing.T) {
	f := newChatFixture(t, nil)

	_, err := f.svc.Answer(context.Background(), &domain.ChatRequest{ChatbotID: f.bot.ID, Message: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_MessageTooLong(t *testing.T) {
	f := newChatFixture(t, nil)

	_, err := f.svc.Answer(context.Background(), &domain.ChatRequest{
		ChatbotID: f.bot.ID,
		Message:   strings.Repeat("a", domain.MaxMessageLength+1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_UnknownChatbot(t *testing.T) {
	f := newChatFixture(t, nil)

	_, err := f.svc.Answer(context.Background(), &domain.ChatRequest{ChatbotID: "missing", Message: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnswer_InactiveChatbot(t *testing.T) {
	f := newChatFixture(t, nil)

	f.bot.IsActive = false
	require.NoError(t, repository.NewChatbotRepository(f.db).Update(f.bot))

	_, err := f.svc.Answer(context.Background(), &domain.ChatRequest{ChatbotID: f.bot.ID, Message: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnswer_UsesKnowledgeInPrompt(t *testing.T) {
	f := newChatFixture(t, nil)

	doc := &domain.Document{ChatbotID: f.bot.ID, Kind: domain.DocumentKindLink, SourceURL: "https://example.com"}
	require.NoError(t, f.docRepo.Create(doc))
	require.NoError(t, f.docRepo.SetCompleted(doc.ID, "the product ships worldwide", nil, ""))

	qaRepo := repository.NewQARepository(f.db)
	require.NoError(t, qaRepo.Create(&domain.QAEntry{
		ChatbotID: f.bot.ID,
		Question:  "What are the shipping costs?",
		Answer:    "Shipping is free over $50.",
		Keywords:  "shipping costs",
		IsActive:  true,
	}))

	resp, err := f.svc.Answer(context.Background(), &domain.ChatRequest{
		ChatbotID: f.bot.ID,
		Message:   "Tell me about shipping costs",
		SessionID: "session-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", resp.Response)

	require.Len(t, *f.prompts, 1)
	prompt := (*f.prompts)[0]
	assert.Contains(t, prompt, "the product ships worldwide")
	assert.Contains(t, prompt, "Q: What are the shipping costs?")
	assert.Contains(t, prompt, "Tell me about shipping costs")

	convs, err := f.convRepo.ListRecent(f.bot.ID, 10)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "the answer", convs[0].BotResponse)
	assert.Equal(t, "session-1", convs[0].SessionID)
}

func TestAnswer_ApologizesWhenBackendDown(t *testing.T) {
	f := newChatFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))

	resp, err := f.svc.Answer(context.Background(), &domain.ChatRequest{ChatbotID: f.bot.ID, Message: "hello there"})
	require.NoError(t, err)
	assert.Equal(t, apologyResponse, resp.Response)

	// Degraded exchanges are still recorded.
	convs, err := f.convRepo.ListRecent(f.bot.ID, 10)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, apologyResponse, convs[0].BotResponse)
}

func TestAssembleContext_Empty(t *testing.T) {
	assert.Equal(t, noContextInstruction, AssembleContext(nil, nil))
}

func TestAssembleContext_SummariesOnly(t *testing.T) {
	got := AssembleContext([]string{"first summary", "second summary"}, nil)
	assert.Equal(t, "first summary\n\nsecond summary", got)
}

func TestAssembleContext_QAOnly(t *testing.T) {
	got := AssembleContext(nil, []*domain.QAEntry{
		{Question: "What plans exist?", Answer: "Three plans."},
	})
	assert.Contains(t, got, noContextInstruction)
	assert.Contains(t, got, "Q: What plans exist?\nA: Three plans.")
}

func TestAssembleContext_Combined(t *testing.T) {
	got := AssembleContext([]string{"doc summary"}, []*domain.QAEntry{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	})
	assert.True(t, strings.HasPrefix(got, "doc summary"))
	assert.Contains(t, got, "Q: q1\nA: a1")
	assert.Contains(t, got, "Q: q2\nA: a2")
	assert.NotContains(t, got, noContextInstruction)
}
