package domain

import "time"

// Document kinds. The set is closed: every document is either an uploaded
// PDF or a scraped web link, and each kind has its own extractor.
const (
	DocumentKindPDF  = "pdf"
	DocumentKindLink = "link"
)

// Document processing states
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// ValidDocumentKind reports whether kind names a known document kind.
func ValidDocumentKind(kind string) bool {
	return kind == DocumentKindPDF || kind == DocumentKindLink
}

// Document represents one knowledge source attached to a chatbot.
// ProcessedContent is set only when Status is completed; ErrorMessage
// only when Status is failed.
type Document struct {
	ID               string         `json:"id"`
	ChatbotID        string         `json:"chatbot_id"`
	Kind             string         `json:"kind"`
	SourceURL        string         `json:"source_url,omitempty"`
	FilePath         string         `json:"-"`
	OriginalName     string         `json:"original_name,omitempty"`
	ProcessedContent string         `json:"processed_content,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Status           string         `json:"status"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// AddLinkRequest is the request to attach a web link to a chatbot
type AddLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

// SubmitAck acknowledges an accepted ingestion request. Processing
// continues in the background; status must be polled.
type SubmitAck struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}
