// Package extract converts raw knowledge sources (uploaded PDF files,
// web links) into plain text plus free-form metadata.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/botdock/botdock/internal/domain"
)

var (
	// ErrInvalidInput indicates a source rejected before extraction starts
	ErrInvalidInput = errors.New("invalid source")
	// ErrExtraction indicates the source could not be parsed
	ErrExtraction = errors.New("extraction failed")
	// ErrInsufficientContent indicates the cleaned text was too short to use
	ErrInsufficientContent = errors.New("insufficient content extracted")
)

// Extractor converts a single source into plain text plus metadata.
// The source is a file path for PDFs and a URL for links.
type Extractor interface {
	Extract(ctx context.Context, source string) (string, map[string]any, error)
}

// Registry dispatches over the closed document-kind set. Callers resolve
// an extractor once per document instead of branching on the kind string.
type Registry struct {
	byKind map[string]Extractor
}

// NewRegistry creates a registry covering both document kinds.
func NewRegistry(pdf, link Extractor) *Registry {
	return &Registry{byKind: map[string]Extractor{
		domain.DocumentKindPDF:  pdf,
		domain.DocumentKindLink: link,
	}}
}

// ForKind returns the extractor for a document kind.
func (r *Registry) ForKind(kind string) (Extractor, error) {
	e, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, kind)
	}
	return e, nil
}

// Network failure causes, assigned when a link fetch fails.
const (
	CauseNotFound          = "not_found"
	CauseConnectionRefused = "connection_refused"
	CauseTimeout           = "timeout"
	CauseTLS               = "tls"
	CauseStatus            = "status"
	CauseConnection        = "connection"
)

// NetworkError is a failed link fetch, classified by cause.
type NetworkError struct {
	URL    string
	Cause  string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	switch e.Cause {
	case CauseNotFound:
		return fmt.Sprintf("website not found: %s", e.URL)
	case CauseConnectionRefused:
		return fmt.Sprintf("connection refused by %s", e.URL)
	case CauseTimeout:
		return fmt.Sprintf("request timeout for %s", e.URL)
	case CauseTLS:
		return fmt.Sprintf("SSL/TLS connection failed for %s", e.URL)
	case CauseStatus:
		return fmt.Sprintf("HTTP %d error for %s", e.Status, e.URL)
	default:
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }
