package domain

import "time"

// QAEntry is an operator-authored knowledge fact. Keywords are always
// re-derived from the question text, never edited independently.
type QAEntry struct {
	ID        string    `json:"id"`
	ChatbotID string    `json:"chatbot_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Keywords  string    `json:"keywords,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateQARequest is the request to add a Q&A entry
type CreateQARequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// UpdateQARequest is the request to update a Q&A entry
type UpdateQARequest struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// BulkCreateQARequest is the request to add several Q&A entries at once
type BulkCreateQARequest struct {
	Entries []CreateQARequest `json:"entries" binding:"required"`
}
