package domain

import "time"

// Conversation is an immutable log of one question/answer exchange.
// Records are append-only and never updated after creation.
type Conversation struct {
	ID             string    `json:"id"`
	ChatbotID      string    `json:"chatbot_id"`
	SessionID      string    `json:"session_id,omitempty"`
	UserMessage    string    `json:"user_message"`
	BotResponse    string    `json:"bot_response"`
	ResponseTimeMs int       `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	ChatbotID string `json:"chatbot_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the response to a chat message. A degraded reply
// (backend unreachable) is still a ChatResponse, never an error.
type ChatResponse struct {
	Response       string `json:"response"`
	ResponseTimeMs int    `json:"response_time_ms"`
}

// MaxMessageLength caps user chat messages.
const MaxMessageLength = 1000
