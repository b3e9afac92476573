package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdock/botdock/internal/domain"
)

func createTestDocument(t *testing.T, db *DB, chatbotID string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ChatbotID: chatbotID,
		Kind:      domain.DocumentKindLink,
		SourceURL: "https://example.com/page",
	}
	require.NoError(t, NewDocumentRepository(db).Create(doc))
	return doc
}

func TestDocumentRepository_CreateDefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)

	doc := createTestDocument(t, db, bot.ID)
	assert.Equal(t, domain.DocumentStatusPending, doc.Status)

	got, err := NewDocumentRepository(db).Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusPending, got.Status)
	assert.Equal(t, "https://example.com/page", got.SourceURL)
}

func TestDocumentRepository_ClaimProcessing(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)
	doc := createTestDocument(t, db, bot.ID)

	claimed, err := repo.ClaimProcessing(doc.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// A second claim must lose while the document is processing.
	claimed, err = repo.ClaimProcessing(doc.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	// A failed document can be claimed again.
	require.NoError(t, repo.SetFailed(doc.ID, "request timeout for https://example.com/page"))
	claimed, err = repo.ClaimProcessing(doc.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// A completed document never can.
	require.NoError(t, repo.SetCompleted(doc.ID, "summary", nil, ""))
	claimed, err = repo.ClaimProcessing(doc.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestDocumentRepository_ClaimClearsError(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)
	doc := createTestDocument(t, db, bot.ID)

	_, err := repo.ClaimProcessing(doc.ID)
	require.NoError(t, err)
	require.NoError(t, repo.SetFailed(doc.ID, "no content extracted"))

	claimed, err := repo.ClaimProcessing(doc.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	got, err := repo.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusProcessing, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestDocumentRepository_SetCompleted(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)
	doc := createTestDocument(t, db, bot.ID)

	meta := map[string]any{"title": "Example Page", "content_length": 42}
	require.NoError(t, repo.SetCompleted(doc.ID, "a summary", meta, "Example Page"))

	got, err := repo.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusCompleted, got.Status)
	assert.Equal(t, "a summary", got.ProcessedContent)
	assert.Empty(t, got.ErrorMessage)
	assert.Equal(t, "Example Page", got.OriginalName)
	assert.Equal(t, "Example Page", got.Metadata["title"])
}

func TestDocumentRepository_SetFailedClearsContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)
	doc := createTestDocument(t, db, bot.ID)

	require.NoError(t, repo.SetCompleted(doc.ID, "a summary", nil, ""))
	require.NoError(t, repo.SetFailed(doc.ID, "website not found: https://example.com/page"))

	got, err := repo.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusFailed, got.Status)
	assert.Empty(t, got.ProcessedContent)
	assert.Equal(t, "website not found: https://example.com/page", got.ErrorMessage)
}

func TestDocumentRepository_ListCompletedContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)

	first := createTestDocument(t, db, bot.ID)
	tick()
	second := &domain.Document{ChatbotID: bot.ID, Kind: domain.DocumentKindLink, SourceURL: "https://example.com/other"}
	require.NoError(t, repo.Create(second))
	tick()
	pending := &domain.Document{ChatbotID: bot.ID, Kind: domain.DocumentKindLink, SourceURL: "https://example.com/third"}
	require.NoError(t, repo.Create(pending))

	require.NoError(t, repo.SetCompleted(first.ID, "first summary", nil, ""))
	require.NoError(t, repo.SetCompleted(second.ID, "second summary", nil, ""))

	contents, err := repo.ListCompletedContent(bot.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first summary", "second summary"}, contents)

	count, err := repo.CountCompleted(bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDocumentRepository_ExistsByURL(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)
	createTestDocument(t, db, bot.ID)

	exists, err := repo.ExistsByURL(bot.ID, "https://example.com/page")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByURL(bot.ID, "https://example.com/other")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDocumentRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	bot := createTestChatbot(t, db)
	doc := createTestDocument(t, db, bot.ID)

	require.NoError(t, repo.Delete(doc.ID))

	got, err := repo.Get(doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Delete(doc.ID))
}
