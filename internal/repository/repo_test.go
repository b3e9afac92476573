package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botdock/botdock/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestChatbot(t *testing.T, db *DB) *domain.Chatbot {
	t.Helper()
	bot := &domain.Chatbot{Name: "Support Bot", IsActive: true}
	require.NoError(t, NewChatbotRepository(db).Create(bot))
	return bot
}

// Timestamps order list results, so consecutive inserts need distinct
// creation times.
func tick() {
	time.Sleep(5 * time.Millisecond)
}
