package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	ftsEnabled bool
}

// NewDB creates a new database connection and runs migrations.
func NewDB(dbPath string, logger *zap.Logger) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Store time.Time values in SQLite's own timestamp format. The
	// driver's default encoding is opaque to date() and datetime(), which
	// the analytics queries depend on.
	db, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	wrapped := &DB{DB: db}

	// The full-text index is optional: when FTS5 is not compiled in, the
	// ranked search tier degrades to zero results instead of failing.
	if err := runFTSMigrations(db); err != nil {
		logger.Warn("full-text index unavailable, ranked search tier disabled", zap.Error(err))
	} else {
		wrapped.ftsEnabled = true
	}

	return wrapped, nil
}

// FTSEnabled reports whether the qa_fts full-text index exists.
func (db *DB) FTSEnabled() bool {
	return db.ftsEnabled
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chatbots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			website_url TEXT,
			embed_code TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			chatbot_id TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('pdf', 'link')),
			source_url TEXT,
			file_path TEXT,
			original_name TEXT,
			processed_content TEXT,
			metadata TEXT,
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
			error_message TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chatbot_id) REFERENCES chatbots(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS chatbot_qa (
			id TEXT PRIMARY KEY,
			chatbot_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			keywords TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chatbot_id) REFERENCES chatbots(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			chatbot_id TEXT NOT NULL,
			session_id TEXT,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			response_time INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chatbot_id) REFERENCES chatbots(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_chatbot ON documents(chatbot_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_chatbot_qa_chatbot ON chatbot_qa(chatbot_id, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_chatbot ON conversations(chatbot_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

func runFTSMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS qa_fts USING fts5(
			question, answer, keywords,
			content='chatbot_qa', content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS qa_fts_insert AFTER INSERT ON chatbot_qa BEGIN
			INSERT INTO qa_fts(rowid, question, answer, keywords)
			VALUES (new.rowid, new.question, new.answer, new.keywords);
		END`,
		`CREATE TRIGGER IF NOT EXISTS qa_fts_delete AFTER DELETE ON chatbot_qa BEGIN
			INSERT INTO qa_fts(qa_fts, rowid, question, answer, keywords)
			VALUES ('delete', old.rowid, old.question, old.answer, old.keywords);
		END`,
		`CREATE TRIGGER IF NOT EXISTS qa_fts_update AFTER UPDATE ON chatbot_qa BEGIN
			INSERT INTO qa_fts(qa_fts, rowid, question, answer, keywords)
			VALUES ('delete', old.rowid, old.question, old.answer, old.keywords);
			INSERT INTO qa_fts(rowid, question, answer, keywords)
			VALUES (new.rowid, new.question, new.answer, new.keywords);
		END`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
