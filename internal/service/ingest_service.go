package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/extract"
	"github.com/botdock/botdock/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngestService accepts knowledge sources, persists their records, and
// runs extraction and summarization in background goroutines. Submit
// calls return as soon as the document has been claimed for processing;
// callers observe completion by polling document status.
type IngestService struct {
	chatbotRepo *repository.ChatbotRepository
	docRepo     *repository.DocumentRepository
	pdf         *extract.PDFExtractor
	link        *extract.LinkExtractor
	extractors  *extract.Registry
	summarizer  ContentSummarizer
	uploadsDir  string
	minContent  int
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// NewIngestService creates a new ingestion service
func NewIngestService(
	chatbotRepo *repository.ChatbotRepository,
	docRepo *repository.DocumentRepository,
	pdf *extract.PDFExtractor,
	link *extract.LinkExtractor,
	summarizer ContentSummarizer,
	uploadsDir string,
	minContentLength int,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		chatbotRepo: chatbotRepo,
		docRepo:     docRepo,
		pdf:         pdf,
		link:        link,
		extractors:  extract.NewRegistry(pdf, link),
		summarizer:  summarizer,
		uploadsDir:  uploadsDir,
		minContent:  minContentLength,
		logger:      logger,
	}
}

// SubmitPDF validates and stores an uploaded PDF, creates its document
// record, and starts background processing.
func (s *IngestService) SubmitPDF(ctx context.Context, chatbotID string, file *multipart.FileHeader) (*domain.Document, error) {
	if err := s.requireChatbot(chatbotID); err != nil {
		return nil, err
	}
	if err := s.pdf.ValidateUpload(file.Filename, file.Size); err != nil {
		return nil, err
	}

	docID := uuid.New().String()
	path, err := s.saveUpload(chatbotID, docID, file)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:           docID,
		ChatbotID:    chatbotID,
		Kind:         domain.DocumentKindPDF,
		FilePath:     path,
		OriginalName: file.Filename,
	}
	if err := s.docRepo.Create(doc); err != nil {
		os.Remove(path)
		return nil, err
	}

	return s.start(doc)
}

// SubmitLink registers a website URL for ingestion and starts
// background processing. The same URL cannot be added to a chatbot
// twice.
func (s *IngestService) SubmitLink(ctx context.Context, chatbotID, rawURL string) (*domain.Document, error) {
	if err := s.requireChatbot(chatbotID); err != nil {
		return nil, err
	}
	if err := s.link.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	exists, err := s.docRepo.ExistsByURL(chatbotID, rawURL)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: URL already added to this chatbot", domain.ErrDuplicate)
	}

	doc := &domain.Document{
		ID:           uuid.New().String(),
		ChatbotID:    chatbotID,
		Kind:         domain.DocumentKindLink,
		SourceURL:    rawURL,
		OriginalName: rawURL,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	return s.start(doc)
}

// Reprocess restarts ingestion for a failed document. Documents in any
// other state are rejected.
func (s *IngestService) Reprocess(ctx context.Context, docID string) (*domain.Document, error) {
	doc, err := s.docRepo.Get(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.Status != domain.DocumentStatusFailed {
		return nil, fmt.Errorf("%w: only failed documents can be reprocessed", domain.ErrInvalidInput)
	}

	return s.start(doc)
}

// GetDocument returns a document by ID.
func (s *IngestService) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	doc, err := s.docRepo.Get(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// ListDocuments returns all documents of a chatbot, newest first.
func (s *IngestService) ListDocuments(ctx context.Context, chatbotID string) ([]*domain.Document, error) {
	if err := s.requireChatbot(chatbotID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByChatbot(chatbotID)
}

// DeleteDocument removes a document record and its stored upload.
func (s *IngestService) DeleteDocument(ctx context.Context, docID string) error {
	doc, err := s.docRepo.Get(docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove upload",
				zap.String("path", doc.FilePath), zap.Error(err))
		}
	}
	return s.docRepo.Delete(docID)
}

// Wait blocks until all in-flight processing goroutines have finished.
func (s *IngestService) Wait() {
	s.wg.Wait()
}

func (s *IngestService) requireChatbot(chatbotID string) error {
	bot, err := s.chatbotRepo.Get(chatbotID)
	if err != nil {
		return err
	}
	if bot == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (s *IngestService) saveUpload(chatbotID, docID string, file *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.uploadsDir, chatbotID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, docID+".pdf")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

// start claims the document for processing and spawns its background
// run. The claim is a conditional state transition, so two concurrent
// submissions for the same document cannot both start a run.
func (s *IngestService) start(doc *domain.Document) (*domain.Document, error) {
	claimed, err := s.docRepo.ClaimProcessing(doc.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: document is already being processed", domain.ErrConflict)
	}
	doc.Status = domain.DocumentStatusProcessing
	doc.ErrorMessage = ""

	source := doc.SourceURL
	if doc.Kind == domain.DocumentKindPDF {
		source = doc.FilePath
	}

	s.wg.Add(1)
	go s.process(doc.ID, doc.Kind, source)

	return doc, nil
}

// process runs extraction and summarization to a terminal state. It is
// detached from the submitting request, so it carries its own context.
func (s *IngestService) process(docID, kind, source string) {
	defer s.wg.Done()

	ctx := context.Background()
	logger := s.logger.With(zap.String("document_id", docID), zap.String("kind", kind))

	extractor, err := s.extractors.ForKind(kind)
	if err != nil {
		s.fail(docID, kind, source, err.Error())
		return
	}

	text, meta, err := extractor.Extract(ctx, source)
	if err != nil {
		logger.Warn("extraction failed", zap.Error(err))
		s.fail(docID, kind, source, err.Error())
		return
	}
	if len(strings.TrimSpace(text)) < s.minContent {
		s.fail(docID, kind, source, "no content extracted")
		return
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		logger.Warn("summarization failed", zap.Error(err))
		s.fail(docID, kind, source, err.Error())
		return
	}

	displayName := ""
	if kind == domain.DocumentKindLink {
		if title, ok := meta["title"].(string); ok {
			displayName = title
		}
	}

	if err := s.docRepo.SetCompleted(docID, summary, meta, displayName); err != nil {
		logger.Error("failed to persist completed document", zap.Error(err))
		return
	}
	logger.Info("document processed", zap.Int("summary_length", len(summary)))
}

// fail records the terminal failed state. Stored PDF uploads are
// removed on failure; successful documents keep their file.
func (s *IngestService) fail(docID, kind, source, message string) {
	if err := s.docRepo.SetFailed(docID, message); err != nil {
		s.logger.Error("failed to persist failed document",
			zap.String("document_id", docID), zap.Error(err))
	}
	if kind == domain.DocumentKindPDF && source != "" {
		if err := os.Remove(source); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove upload",
				zap.String("path", source), zap.Error(err))
		}
	}
}
