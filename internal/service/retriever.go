package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/repository"
	"go.uber.org/zap"
)

// Retrieval limits per tier
const (
	maxMessageKeywords = 10
	recentLimit        = 5
	substringLimit     = 5
	keywordLimit       = 10
	rankedLimit        = 5
)

var stopWords = map[string]struct{}{
	"what": {}, "how": {}, "when": {}, "where": {}, "why": {}, "who": {},
	"which": {}, "is": {}, "are": {}, "was": {}, "were": {}, "do": {},
	"does": {}, "did": {}, "can": {}, "could": {}, "would": {}, "should": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "by": {}, "with": {},
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// ExtractKeywords lower-cases text, strips punctuation, splits on
// whitespace, and drops stop words and tokens of two characters or
// fewer. Token order is preserved.
func ExtractKeywords(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	var out []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Retriever finds the Q&A entries best matching a user message using an
// ordered list of lexical search tiers. Each tier runs only when every
// tier before it yielded nothing; the first non-empty result wins.
type Retriever struct {
	qaRepo *repository.QARepository
	logger *zap.Logger
}

// NewRetriever creates a new retriever
func NewRetriever(qaRepo *repository.QARepository, logger *zap.Logger) *Retriever {
	return &Retriever{qaRepo: qaRepo, logger: logger}
}

type searchTier struct {
	name       string
	bestEffort bool
	run        func() ([]*domain.QAEntry, error)
}

// Retrieve returns the best-matching active entries for a message, at
// most five. An empty result is a normal outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, chatbotID, message string) ([]*domain.QAEntry, error) {
	keywords := ExtractKeywords(message)
	if len(keywords) > maxMessageKeywords {
		keywords = keywords[:maxMessageKeywords]
	}

	// No usable keywords: fall back to the most recent entries as
	// default knowledge.
	if len(keywords) == 0 {
		return r.qaRepo.RecentActive(chatbotID, recentLimit)
	}

	lowered := strings.ToLower(strings.TrimSpace(message))

	tiers := []searchTier{
		{name: "substring", run: func() ([]*domain.QAEntry, error) {
			return r.qaRepo.SearchSubstring(chatbotID, lowered, substringLimit)
		}},
		{name: "keyword", run: func() ([]*domain.QAEntry, error) {
			return r.qaRepo.SearchAnyKeyword(chatbotID, keywords, keywordLimit)
		}},
		{name: "fulltext", bestEffort: true, run: func() ([]*domain.QAEntry, error) {
			return r.qaRepo.SearchRanked(chatbotID, keywords, rankedLimit)
		}},
	}

	for _, tier := range tiers {
		entries, err := tier.run()
		if err != nil {
			if tier.bestEffort {
				r.logger.Warn("search tier unavailable, treating as empty",
					zap.String("tier", tier.name), zap.Error(err))
				continue
			}
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	return nil, nil
}
