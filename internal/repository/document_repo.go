package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/botdock/botdock/internal/domain"
	"github.com/google/uuid"
)

// DocumentRepository handles document persistence
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = domain.DocumentStatusPending
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO documents (id, chatbot_id, kind, source_url, file_path, original_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ChatbotID, doc.Kind, nullable(doc.SourceURL), nullable(doc.FilePath),
		nullable(doc.OriginalName), doc.Status, doc.CreatedAt, doc.UpdatedAt)

	return err
}

// Get retrieves a document by ID
func (r *DocumentRepository) Get(id string) (*domain.Document, error) {
	row := r.db.QueryRow(`
		SELECT id, chatbot_id, kind, source_url, file_path, original_name,
		       processed_content, metadata, status, error_message, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListByChatbot retrieves all documents for a chatbot, most recent first
func (r *DocumentRepository) ListByChatbot(chatbotID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(`
		SELECT id, chatbot_id, kind, source_url, file_path, original_name,
		       processed_content, metadata, status, error_message, created_at, updated_at
		FROM documents WHERE chatbot_id = ? ORDER BY created_at DESC
	`, chatbotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListCompletedContent returns the processed content of every completed
// document for a chatbot, oldest first.
func (r *DocumentRepository) ListCompletedContent(chatbotID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT processed_content FROM documents
		WHERE chatbot_id = ? AND status = ? AND processed_content IS NOT NULL
		ORDER BY created_at
	`, chatbotID, domain.DocumentStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

// CountCompleted counts completed documents for a chatbot
func (r *DocumentRepository) CountCompleted(chatbotID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM documents WHERE chatbot_id = ? AND status = ?
	`, chatbotID, domain.DocumentStatusCompleted).Scan(&count)
	return count, err
}

// ExistsByURL reports whether a chatbot already has a document for url
func (r *DocumentRepository) ExistsByURL(chatbotID, url string) (bool, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM documents WHERE chatbot_id = ? AND source_url = ?
	`, chatbotID, url).Scan(&n)
	return n > 0, err
}

// ClaimProcessing atomically moves a document from pending or failed to
// processing, clearing any previous error. It reports whether the claim
// succeeded; a false result means another task holds the document or it
// is in a state that cannot be processed. This conditional write is the
// per-document mutual-exclusion guard: at most one in-flight processing
// task can hold a document at a time.
func (r *DocumentRepository) ClaimProcessing(id string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE documents
		SET status = ?, error_message = NULL, updated_at = ?
		WHERE id = ? AND status IN (?, ?)
	`, domain.DocumentStatusProcessing, time.Now(), id,
		domain.DocumentStatusPending, domain.DocumentStatusFailed)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// SetCompleted records the terminal completed state in one write:
// content, metadata, a cleared error, and optionally a display name
// (link documents adopt the scraped page title).
func (r *DocumentRepository) SetCompleted(id, content string, metadata map[string]any, displayName string) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE documents
		SET processed_content = ?, metadata = ?, error_message = NULL, status = ?,
		    original_name = COALESCE(NULLIF(?, ''), original_name), updated_at = ?
		WHERE id = ?
	`, content, string(metadataJSON), domain.DocumentStatusCompleted, displayName, time.Now(), id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// SetFailed records the terminal failed state in one write, clearing
// processed content so the status/content invariant holds.
func (r *DocumentRepository) SetFailed(id, message string) error {
	result, err := r.db.Exec(`
		UPDATE documents
		SET processed_content = NULL, error_message = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, message, domain.DocumentStatusFailed, time.Now(), id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Delete deletes a document
func (r *DocumentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*domain.Document, error) {
	doc := &domain.Document{}
	var sourceURL, filePath, originalName, content, metadataJSON, errorMessage sql.NullString

	err := row.Scan(&doc.ID, &doc.ChatbotID, &doc.Kind, &sourceURL, &filePath,
		&originalName, &content, &metadataJSON, &doc.Status, &errorMessage,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	doc.SourceURL = sourceURL.String
	doc.FilePath = filePath.String
	doc.OriginalName = originalName.String
	doc.ProcessedContent = content.String
	doc.ErrorMessage = errorMessage.String

	if metadataJSON.Valid && metadataJSON.String != "" {
		json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata)
	}

	return doc, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
