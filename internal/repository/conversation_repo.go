package repository

import (
	"fmt"
	"time"

	"github.com/botdock/botdock/internal/domain"
	"github.com/google/uuid"
)

// ConversationRepository handles the append-only conversation log
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create appends one question/answer exchange. Records are never
// updated afterwards.
func (r *ConversationRepository) Create(conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	conv.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO conversations (id, chatbot_id, session_id, user_message, bot_response, response_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, conv.ID, conv.ChatbotID, nullable(conv.SessionID), conv.UserMessage,
		conv.BotResponse, conv.ResponseTimeMs, conv.CreatedAt)

	return err
}

// ListRecent returns the most recent conversations for a chatbot
func (r *ConversationRepository) ListRecent(chatbotID string, limit int) ([]*domain.Conversation, error) {
	rows, err := r.db.Query(`
		SELECT id, chatbot_id, COALESCE(session_id, ''), user_message, bot_response, response_time, created_at
		FROM conversations WHERE chatbot_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, chatbotID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*domain.Conversation
	for rows.Next() {
		conv := &domain.Conversation{}
		if err := rows.Scan(&conv.ID, &conv.ChatbotID, &conv.SessionID, &conv.UserMessage,
			&conv.BotResponse, &conv.ResponseTimeMs, &conv.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// Count counts all conversations for a chatbot
func (r *ConversationRepository) Count(chatbotID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM conversations WHERE chatbot_id = ?
	`, chatbotID).Scan(&count)
	return count, err
}

// AverageResponseTime returns the average measured latency in
// milliseconds, ignoring records without a measurement.
func (r *ConversationRepository) AverageResponseTime(chatbotID string) (int, error) {
	var avg float64
	err := r.db.QueryRow(`
		SELECT COALESCE(AVG(response_time), 0) FROM conversations
		WHERE chatbot_id = ? AND response_time > 0
	`, chatbotID).Scan(&avg)
	return int(avg + 0.5), err
}

// DailyCounts returns per-day conversation counts over the last `days`
// days, most recent first.
func (r *ConversationRepository) DailyCounts(chatbotID string, days int) ([]domain.DailyCount, error) {
	rows, err := r.db.Query(`
		SELECT date(created_at) AS day, COUNT(*)
		FROM conversations
		WHERE chatbot_id = ? AND created_at >= datetime('now', ?)
		GROUP BY day ORDER BY day DESC
	`, chatbotID, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.DailyCount
	for rows.Next() {
		var dc domain.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Conversations); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}
