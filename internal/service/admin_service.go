package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/repository"
	"go.uber.org/zap"
)

const maxNameLength = 255

const analyticsDays = 30

// AdminService implements the management surface: chatbot lifecycle,
// curated Q&A knowledge, and usage analytics.
type AdminService struct {
	chatbotRepo *repository.ChatbotRepository
	docRepo     *repository.DocumentRepository
	qaRepo      *repository.QARepository
	convRepo    *repository.ConversationRepository
	baseURL     string
	uploadsDir  string
	logger      *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	chatbotRepo *repository.ChatbotRepository,
	docRepo *repository.DocumentRepository,
	qaRepo *repository.QARepository,
	convRepo *repository.ConversationRepository,
	baseURL string,
	uploadsDir string,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		chatbotRepo: chatbotRepo,
		docRepo:     docRepo,
		qaRepo:      qaRepo,
		convRepo:    convRepo,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		uploadsDir:  uploadsDir,
		logger:      logger,
	}
}

// CreateChatbot creates a chatbot and generates its embed snippet.
func (s *AdminService) CreateChatbot(ctx context.Context, req *domain.CreateChatbotRequest) (*domain.Chatbot, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", domain.ErrInvalidInput, maxNameLength)
	}

	bot := &domain.Chatbot{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		WebsiteURL:  strings.TrimSpace(req.WebsiteURL),
		IsActive:    true,
	}
	if err := s.chatbotRepo.Create(bot); err != nil {
		return nil, err
	}

	bot.EmbedCode = buildEmbedCode(s.baseURL, bot.ID)
	if err := s.chatbotRepo.Update(bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// GetChatbot returns a chatbot by ID.
func (s *AdminService) GetChatbot(ctx context.Context, id string) (*domain.Chatbot, error) {
	bot, err := s.chatbotRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, domain.ErrNotFound
	}
	return bot, nil
}

// ListChatbots returns all chatbots, newest first.
func (s *AdminService) ListChatbots(ctx context.Context) ([]*domain.Chatbot, error) {
	return s.chatbotRepo.List()
}

// UpdateChatbot applies the non-nil fields of the request.
func (s *AdminService) UpdateChatbot(ctx context.Context, id string, req *domain.UpdateChatbotRequest) (*domain.Chatbot, error) {
	bot, err := s.GetChatbot(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		if len(name) > maxNameLength {
			return nil, fmt.Errorf("%w: name exceeds %d characters", domain.ErrInvalidInput, maxNameLength)
		}
		bot.Name = name
	}
	if req.Description != nil {
		bot.Description = strings.TrimSpace(*req.Description)
	}
	if req.WebsiteURL != nil {
		bot.WebsiteURL = strings.TrimSpace(*req.WebsiteURL)
	}
	if req.IsActive != nil {
		bot.IsActive = *req.IsActive
	}

	if err := s.chatbotRepo.Update(bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// DeleteChatbot removes a chatbot with all its documents, Q&A entries,
// conversations, and stored uploads.
func (s *AdminService) DeleteChatbot(ctx context.Context, id string) error {
	if _, err := s.GetChatbot(ctx, id); err != nil {
		return err
	}

	if err := s.chatbotRepo.Delete(id); err != nil {
		return err
	}

	dir := filepath.Join(s.uploadsDir, id)
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("failed to remove chatbot uploads",
			zap.String("chatbot_id", id), zap.Error(err))
	}
	return nil
}

// CreateQA adds a curated question/answer pair. Keywords are derived
// from the question at write time so retrieval never tokenizes stored
// entries per request.
func (s *AdminService) CreateQA(ctx context.Context, chatbotID string, req *domain.CreateQARequest) (*domain.QAEntry, error) {
	if _, err := s.GetChatbot(ctx, chatbotID); err != nil {
		return nil, err
	}

	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", domain.ErrInvalidInput)
	}

	entry := &domain.QAEntry{
		ChatbotID: chatbotID,
		Question:  question,
		Answer:    answer,
		Keywords:  strings.Join(ExtractKeywords(question), " "),
		IsActive:  true,
	}
	if err := s.qaRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// BulkCreateQA adds several Q&A pairs in one transaction. Entries with
// an empty question or answer are skipped; at least one entry must
// remain.
func (s *AdminService) BulkCreateQA(ctx context.Context, chatbotID string, req *domain.BulkCreateQARequest) ([]*domain.QAEntry, error) {
	if _, err := s.GetChatbot(ctx, chatbotID); err != nil {
		return nil, err
	}

	var entries []*domain.QAEntry
	for _, item := range req.Entries {
		question := strings.TrimSpace(item.Question)
		answer := strings.TrimSpace(item.Answer)
		if question == "" || answer == "" {
			continue
		}
		entries = append(entries, &domain.QAEntry{
			ChatbotID: chatbotID,
			Question:  question,
			Answer:    answer,
			Keywords:  strings.Join(ExtractKeywords(question), " "),
			IsActive:  true,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no valid Q&A entries provided", domain.ErrInvalidInput)
	}

	if err := s.qaRepo.BulkCreate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListQA returns all Q&A entries of a chatbot, newest first.
func (s *AdminService) ListQA(ctx context.Context, chatbotID string) ([]*domain.QAEntry, error) {
	if _, err := s.GetChatbot(ctx, chatbotID); err != nil {
		return nil, err
	}
	return s.qaRepo.ListByChatbot(chatbotID)
}

// UpdateQA applies the non-nil fields of the request. Changing the
// question re-derives its keywords.
func (s *AdminService) UpdateQA(ctx context.Context, id string, req *domain.UpdateQARequest) (*domain.QAEntry, error) {
	entry, err := s.qaRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}

	if req.Question != nil {
		question := strings.TrimSpace(*req.Question)
		if question == "" {
			return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
		}
		entry.Question = question
		entry.Keywords = strings.Join(ExtractKeywords(question), " ")
	}
	if req.Answer != nil {
		answer := strings.TrimSpace(*req.Answer)
		if answer == "" {
			return nil, fmt.Errorf("%w: answer is required", domain.ErrInvalidInput)
		}
		entry.Answer = answer
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}

	if err := s.qaRepo.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteQA removes a Q&A entry.
func (s *AdminService) DeleteQA(ctx context.Context, id string) error {
	entry, err := s.qaRepo.Get(id)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrNotFound
	}
	return s.qaRepo.Delete(id)
}

// Analytics returns usage statistics for a chatbot over the last
// thirty days.
func (s *AdminService) Analytics(ctx context.Context, chatbotID string) (*domain.ChatbotAnalytics, error) {
	if _, err := s.GetChatbot(ctx, chatbotID); err != nil {
		return nil, err
	}

	total, err := s.convRepo.Count(chatbotID)
	if err != nil {
		return nil, err
	}
	avg, err := s.convRepo.AverageResponseTime(chatbotID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.CountCompleted(chatbotID)
	if err != nil {
		return nil, err
	}
	daily, err := s.convRepo.DailyCounts(chatbotID, analyticsDays)
	if err != nil {
		return nil, err
	}

	return &domain.ChatbotAnalytics{
		TotalConversations:    total,
		AverageResponseTimeMs: avg,
		DocumentsProcessed:    docs,
		DailyStats:            daily,
	}, nil
}

// ListConversations returns the most recent conversations of a chatbot.
func (s *AdminService) ListConversations(ctx context.Context, chatbotID string, limit int) ([]*domain.Conversation, error) {
	if _, err := s.GetChatbot(ctx, chatbotID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.convRepo.ListRecent(chatbotID, limit)
}

func buildEmbedCode(baseURL, chatbotID string) string {
	return fmt.Sprintf(`<div id="ai-chatbot-%s"></div>
<script>
(function() {
    var script = document.createElement('script');
    script.src = '%s/embed/chatbot-widget.js';
    script.setAttribute('data-chatbot-id', '%s');
    document.head.appendChild(script);
})();
</script>`, chatbotID, baseURL, chatbotID)
}
