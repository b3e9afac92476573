package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/repository"
)

func newTestDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestChatbot(t *testing.T, db *repository.DB) *domain.Chatbot {
	t.Helper()
	bot := &domain.Chatbot{Name: "Support Bot", IsActive: true}
	require.NoError(t, repository.NewChatbotRepository(db).Create(bot))
	return bot
}

// fakeExtractor stands in for a real extractor in processing tests. Its
// fields can be flipped between submissions.
type fakeExtractor struct {
	text string
	meta map[string]any
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, source string) (string, map[string]any, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, f.meta, nil
}

// fakeSummarizer returns a fixed summary without an inference backend.
type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}
