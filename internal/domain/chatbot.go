package domain

import "time"

// Chatbot is the aggregation root that documents, Q&A entries and
// conversations hang off.
type Chatbot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	EmbedCode   string    `json:"embed_code,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateChatbotRequest is the request to create a chatbot
type CreateChatbotRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
}

// UpdateChatbotRequest is the request to update a chatbot
type UpdateChatbotRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	WebsiteURL  *string `json:"website_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ChatbotAnalytics summarizes chatbot usage
type ChatbotAnalytics struct {
	TotalConversations    int          `json:"total_conversations"`
	AverageResponseTimeMs int          `json:"average_response_time_ms"`
	DocumentsProcessed    int          `json:"documents_processed"`
	DailyStats            []DailyCount `json:"daily_stats"`
}

// DailyCount is the conversation count for one day
type DailyCount struct {
	Date          string `json:"date"`
	Conversations int    `json:"conversations"`
}
