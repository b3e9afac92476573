package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/botdock/botdock/internal/domain"
	"github.com/google/uuid"
)

// ChatbotRepository handles chatbot persistence
type ChatbotRepository struct {
	db *DB
}

// NewChatbotRepository creates a new chatbot repository
func NewChatbotRepository(db *DB) *ChatbotRepository {
	return &ChatbotRepository{db: db}
}

// Create creates a new chatbot
func (r *ChatbotRepository) Create(bot *domain.Chatbot) error {
	if bot.ID == "" {
		bot.ID = uuid.New().String()
	}
	now := time.Now()
	bot.CreatedAt = now
	bot.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO chatbots (id, name, description, website_url, embed_code, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, bot.ID, bot.Name, bot.Description, bot.WebsiteURL, bot.EmbedCode,
		bot.IsActive, bot.CreatedAt, bot.UpdatedAt)

	return err
}

// Get retrieves a chatbot by ID
func (r *ChatbotRepository) Get(id string) (*domain.Chatbot, error) {
	bot := &domain.Chatbot{}
	var description, websiteURL, embedCode sql.NullString

	err := r.db.QueryRow(`
		SELECT id, name, description, website_url, embed_code, is_active, created_at, updated_at
		FROM chatbots WHERE id = ?
	`, id).Scan(&bot.ID, &bot.Name, &description, &websiteURL, &embedCode,
		&bot.IsActive, &bot.CreatedAt, &bot.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bot.Description = description.String
	bot.WebsiteURL = websiteURL.String
	bot.EmbedCode = embedCode.String

	return bot, nil
}

// List retrieves all chatbots, most recent first
func (r *ChatbotRepository) List() ([]*domain.Chatbot, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, website_url, embed_code, is_active, created_at, updated_at
		FROM chatbots ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []*domain.Chatbot
	for rows.Next() {
		bot := &domain.Chatbot{}
		var description, websiteURL, embedCode sql.NullString

		if err := rows.Scan(&bot.ID, &bot.Name, &description, &websiteURL, &embedCode,
			&bot.IsActive, &bot.CreatedAt, &bot.UpdatedAt); err != nil {
			return nil, err
		}

		bot.Description = description.String
		bot.WebsiteURL = websiteURL.String
		bot.EmbedCode = embedCode.String
		bots = append(bots, bot)
	}

	return bots, rows.Err()
}

// Update updates a chatbot
func (r *ChatbotRepository) Update(bot *domain.Chatbot) error {
	bot.UpdatedAt = time.Now()

	result, err := r.db.Exec(`
		UPDATE chatbots SET name = ?, description = ?, website_url = ?, embed_code = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, bot.Name, bot.Description, bot.WebsiteURL, bot.EmbedCode, bot.IsActive, bot.UpdatedAt, bot.ID)

	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("chatbot not found: %s", bot.ID)
	}

	return nil
}

// Delete deletes a chatbot. Documents, Q&A entries and conversations
// are removed by the foreign-key cascade.
func (r *ChatbotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM chatbots WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("chatbot not found: %s", id)
	}

	return nil
}
