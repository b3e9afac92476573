package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdock/botdock/internal/domain"
)

func addConversation(t *testing.T, db *DB, chatbotID, session string, responseTime int) {
	t.Helper()
	conv := &domain.Conversation{
		ChatbotID:      chatbotID,
		SessionID:      session,
		UserMessage:    "hello",
		BotResponse:    "hi there",
		ResponseTimeMs: responseTime,
	}
	require.NoError(t, NewConversationRepository(db).Create(conv))
	tick()
}

func TestConversationRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	bot := createTestChatbot(t, db)

	addConversation(t, db, bot.ID, "session-1", 120)
	addConversation(t, db, bot.ID, "", 80)

	got, err := repo.ListRecent(bot.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first; the second conversation had no session.
	assert.Empty(t, got[0].SessionID)
	assert.Equal(t, "session-1", got[1].SessionID)
}

func TestConversationRepository_Count(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	bot := createTestChatbot(t, db)

	addConversation(t, db, bot.ID, "", 100)
	addConversation(t, db, bot.ID, "", 200)

	count, err := repo.Count(bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestConversationRepository_AverageResponseTime(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	bot := createTestChatbot(t, db)

	addConversation(t, db, bot.ID, "", 100)
	addConversation(t, db, bot.ID, "", 300)
	// Zero latency rows are excluded from the average.
	addConversation(t, db, bot.ID, "", 0)

	avg, err := repo.AverageResponseTime(bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, avg)
}

func TestConversationRepository_AverageResponseTimeEmpty(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)

	avg, err := NewConversationRepository(db).AverageResponseTime(bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, avg)
}

func TestConversationRepository_DailyCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	bot := createTestChatbot(t, db)

	addConversation(t, db, bot.ID, "", 100)
	addConversation(t, db, bot.ID, "", 100)

	daily, err := repo.DailyCounts(bot.ID, 30)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 2, daily[0].Conversations)
	// date() must be able to read the stored timestamps, otherwise the
	// day comes back NULL instead of a calendar date.
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, daily[0].Date)
}
