package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"
	"go.uber.org/zap"
)

const pdfExtension = ".pdf"

// PDFExtractor extracts concatenated page text and document info from
// an uploaded PDF file.
type PDFExtractor struct {
	maxBytes int64
	logger   *zap.Logger
}

// NewPDFExtractor creates a PDF extractor with a file size cap.
func NewPDFExtractor(maxBytes int64, logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{maxBytes: maxBytes, logger: logger}
}

// ValidateUpload rejects an upload before any bytes are stored.
func (e *PDFExtractor) ValidateUpload(filename string, size int64) error {
	if !strings.EqualFold(filepath.Ext(filename), pdfExtension) {
		return fmt.Errorf("%w: only PDF files are allowed", ErrInvalidInput)
	}
	if size > e.maxBytes {
		return fmt.Errorf("%w: file is too large, maximum size is %d MB", ErrInvalidInput, e.maxBytes/(1024*1024))
	}
	return nil
}

// Extract parses the PDF at path and returns its page text plus metadata
// (page count, document info dictionary).
func (e *PDFExtractor) Extract(ctx context.Context, path string) (text string, meta map[string]any, err error) {
	if err := e.validateFile(path); err != nil {
		return "", nil, err
	}

	// The underlying parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf parser panic", zap.String("path", path), zap.Any("panic", r))
			text, meta = "", nil
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("skipping unreadable pdf page",
				zap.String("path", path), zap.Int("page", i), zap.Error(err))
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	meta = map[string]any{"pages": pages}
	if info := docInfo(reader); len(info) > 0 {
		meta["info"] = info
	}

	return NormalizeText(b.String()), meta, nil
}

func (e *PDFExtractor) validateFile(path string) error {
	if !strings.EqualFold(filepath.Ext(path), pdfExtension) {
		return fmt.Errorf("%w: only PDF files are allowed", ErrInvalidInput)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if fi.Size() > e.maxBytes {
		return fmt.Errorf("%w: file is too large, maximum size is %d MB", ErrInvalidInput, e.maxBytes/(1024*1024))
	}
	return nil
}

// docInfo collects the string values of the document info dictionary.
func docInfo(r *pdf.Reader) map[string]string {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return nil
	}
	out := make(map[string]string)
	for _, k := range info.Keys() {
		if v := info.Key(k); v.Kind() == pdf.String {
			out[k] = v.RawString()
		}
	}
	return out
}
