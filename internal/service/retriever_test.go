package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/repository"
)

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("What is your refund policy?")
	assert.Equal(t, []string{"your", "refund", "policy"}, keywords)
}

func TestExtractKeywords_DropsStopWordsAndShortTokens(t *testing.T) {
	keywords := ExtractKeywords("How do I do it on the go?")
	assert.Empty(t, keywords)
}

func TestExtractKeywords_StripsPunctuation(t *testing.T) {
	keywords := ExtractKeywords("Pricing!!! (monthly, yearly)...")
	assert.Equal(t, []string{"pricing", "monthly", "yearly"}, keywords)
}

func TestExtractKeywords_Lowercases(t *testing.T) {
	keywords := ExtractKeywords("REFUND Policy")
	assert.Equal(t, []string{"refund", "policy"}, keywords)
}

func addActiveQA(t *testing.T, db *repository.DB, chatbotID, question, answer string) *domain.QAEntry {
	t.Helper()
	entry := &domain.QAEntry{
		ChatbotID: chatbotID,
		Question:  question,
		Answer:    answer,
		Keywords:  strings.Join(ExtractKeywords(question), " "),
		IsActive:  true,
	}
	require.NoError(t, repository.NewQARepository(db).Create(entry))
	return entry
}

func TestRetriever_NoKeywordsReturnsRecent(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)
	entry := addActiveQA(t, db, bot.ID, "What plans do you offer?", "Three plans.")

	r := NewRetriever(repository.NewQARepository(db), zap.NewNop())
	got, err := r.Retrieve(context.Background(), bot.ID, "??? !!!")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
}

func TestRetriever_SubstringTierShortCircuits(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)

	exact := addActiveQA(t, db, bot.ID, "Our refund policy lasts 30 days", "Full refund within 30 days.")
	addActiveQA(t, db, bot.ID, "Where do refund requests go?", "To support.")

	r := NewRetriever(repository.NewQARepository(db), zap.NewNop())
	got, err := r.Retrieve(context.Background(), bot.ID, "refund policy")
	require.NoError(t, err)

	// The second entry matches the keyword tier, but the substring tier
	// already produced a result so it is never consulted.
	require.Len(t, got, 1)
	assert.Equal(t, exact.ID, got[0].ID)
}

func TestRetriever_KeywordTierWhenSubstringMisses(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)
	entry := addActiveQA(t, db, bot.ID, "Which payment methods do you accept?", "We accept credit cards.")

	r := NewRetriever(repository.NewQARepository(db), zap.NewNop())
	got, err := r.Retrieve(context.Background(), bot.ID, "bitcoin payment possible?")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
}

func TestRetriever_NoMatches(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)
	addActiveQA(t, db, bot.ID, "What plans do you offer?", "Three plans.")

	r := NewRetriever(repository.NewQARepository(db), zap.NewNop())
	got, err := r.Retrieve(context.Background(), bot.ID, "shipping estimates overseas")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetriever_RankedTierFailureDegradesToEmpty(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)
	addActiveQA(t, db, bot.ID, "What plans do you offer?", "Three plans.")

	// Break the full-text index out from under the ranked tier. Without
	// FTS support the tier fails the same way before the query runs.
	if db.FTSEnabled() {
		_, err := db.Exec(`DROP TABLE qa_fts`)
		require.NoError(t, err)
	}

	r := NewRetriever(repository.NewQARepository(db), zap.NewNop())
	got, err := r.Retrieve(context.Background(), bot.ID, "shipping estimates overseas")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetriever_SkipsInactiveEntries(t *testing.T) {
	db := newTestDB(t)
	bot := createTestChatbot(t, db)
	qaRepo := repository.NewQARepository(db)

	entry := addActiveQA(t, db, bot.ID, "Our refund policy lasts 30 days", "Full refund.")
	entry.IsActive = false
	require.NoError(t, qaRepo.Update(entry))

	r := NewRetriever(qaRepo, zap.NewNop())
	got, err := r.Retrieve(context.Background(), bot.ID, "refund policy")
	require.NoError(t, err)
	assert.Empty(t, got)
}
