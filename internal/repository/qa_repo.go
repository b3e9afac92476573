package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/botdock/botdock/internal/domain"
	"github.com/google/uuid"
)

// ErrFTSUnavailable indicates the full-text index was not created.
var ErrFTSUnavailable = errors.New("full-text index unavailable")

// QARepository handles Q&A entry persistence and the tiered lexical
// search queries over them.
type QARepository struct {
	db *DB
}

// NewQARepository creates a new Q&A repository
func NewQARepository(db *DB) *QARepository {
	return &QARepository{db: db}
}

// Create creates a new Q&A entry
func (r *QARepository) Create(entry *domain.QAEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO chatbot_qa (id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ChatbotID, entry.Question, entry.Answer, entry.Keywords,
		entry.IsActive, entry.CreatedAt, entry.UpdatedAt)

	return err
}

// BulkCreate inserts several entries in one transaction
func (r *QARepository) BulkCreate(entries []*domain.QAEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO chatbot_qa (id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		entry.CreatedAt = now
		entry.UpdatedAt = now
		if _, err := stmt.Exec(entry.ID, entry.ChatbotID, entry.Question, entry.Answer,
			entry.Keywords, entry.IsActive, entry.CreatedAt, entry.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get retrieves a Q&A entry by ID
func (r *QARepository) Get(id string) (*domain.QAEntry, error) {
	entry := &domain.QAEntry{}
	err := r.db.QueryRow(`
		SELECT id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at
		FROM chatbot_qa WHERE id = ?
	`, id).Scan(&entry.ID, &entry.ChatbotID, &entry.Question, &entry.Answer,
		&entry.Keywords, &entry.IsActive, &entry.CreatedAt, &entry.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByChatbot retrieves all Q&A entries for a chatbot, most recent first
func (r *QARepository) ListByChatbot(chatbotID string) ([]*domain.QAEntry, error) {
	return r.queryEntries(`
		SELECT id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at
		FROM chatbot_qa WHERE chatbot_id = ? ORDER BY created_at DESC
	`, chatbotID)
}

// Update updates a Q&A entry
func (r *QARepository) Update(entry *domain.QAEntry) error {
	entry.UpdatedAt = time.Now()

	result, err := r.db.Exec(`
		UPDATE chatbot_qa SET question = ?, answer = ?, keywords = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, entry.Question, entry.Answer, entry.Keywords, entry.IsActive, entry.UpdatedAt, entry.ID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("q&a entry not found: %s", entry.ID)
	}
	return nil
}

// Delete deletes a Q&A entry
func (r *QARepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM chatbot_qa WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("q&a entry not found: %s", id)
	}
	return nil
}

// RecentActive returns the most recently created active entries.
// Used as default knowledge when a message yields no usable keywords.
func (r *QARepository) RecentActive(chatbotID string, limit int) ([]*domain.QAEntry, error) {
	return r.queryEntries(`
		SELECT id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at
		FROM chatbot_qa WHERE chatbot_id = ? AND is_active = 1
		ORDER BY created_at DESC LIMIT ?
	`, chatbotID, limit)
}

// SearchSubstring returns active entries whose question, answer or
// keywords contain the whole lower-cased message as a substring.
func (r *QARepository) SearchSubstring(chatbotID, loweredMessage string, limit int) ([]*domain.QAEntry, error) {
	return r.queryEntries(`
		SELECT id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at
		FROM chatbot_qa
		WHERE chatbot_id = ? AND is_active = 1
		  AND (instr(lower(question), ?) > 0 OR instr(lower(answer), ?) > 0 OR instr(lower(keywords), ?) > 0)
		ORDER BY created_at DESC LIMIT ?
	`, chatbotID, loweredMessage, loweredMessage, loweredMessage, limit)
}

// SearchAnyKeyword returns active entries where any extracted keyword
// appears as a substring in the question, answer or keywords field.
func (r *QARepository) SearchAnyKeyword(chatbotID string, keywords []string, limit int) ([]*domain.QAEntry, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	var conds []string
	args := []any{chatbotID}
	for _, kw := range keywords {
		conds = append(conds, `(instr(lower(question), ?) > 0 OR instr(lower(answer), ?) > 0 OR instr(lower(keywords), ?) > 0)`)
		args = append(args, kw, kw, kw)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, chatbot_id, question, answer, keywords, is_active, created_at, updated_at
		FROM chatbot_qa
		WHERE chatbot_id = ? AND is_active = 1 AND (%s)
		ORDER BY created_at DESC LIMIT ?
	`, strings.Join(conds, " OR "))

	return r.queryEntries(query, args...)
}

// SearchRanked runs a boolean ranked full-text search with each keyword
// as a required prefix term, ordered by relevance then recency. Callers
// must treat any error from this tier as zero results.
func (r *QARepository) SearchRanked(chatbotID string, keywords []string, limit int) ([]*domain.QAEntry, error) {
	if !r.db.FTSEnabled() {
		return nil, ErrFTSUnavailable
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	terms := make([]string, len(keywords))
	for i, kw := range keywords {
		terms[i] = fmt.Sprintf(`"%s"*`, strings.ReplaceAll(kw, `"`, ``))
	}
	match := strings.Join(terms, " AND ")

	return r.queryEntries(`
		SELECT qa.id, qa.chatbot_id, qa.question, qa.answer, qa.keywords, qa.is_active, qa.created_at, qa.updated_at
		FROM qa_fts
		JOIN chatbot_qa qa ON qa.rowid = qa_fts.rowid
		WHERE qa_fts MATCH ? AND qa.chatbot_id = ? AND qa.is_active = 1
		ORDER BY bm25(qa_fts), qa.created_at DESC LIMIT ?
	`, match, chatbotID, limit)
}

func (r *QARepository) queryEntries(query string, args ...any) ([]*domain.QAEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.QAEntry
	for rows.Next() {
		entry := &domain.QAEntry{}
		if err := rows.Scan(&entry.ID, &entry.ChatbotID, &entry.Question, &entry.Answer,
			&entry.Keywords, &entry.IsActive, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
