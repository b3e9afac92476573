package extract

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	maxRedirects     = 5
	minContentLength = 50
	truncationMarker = "..."

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// strippedSelectors are removed before any text is read.
const strippedSelectors = "script, style, nav, header, footer, aside, .advertisement, .ads, .sidebar, .menu, .navigation"

// contentSelectors are tried in order; the first match wins.
var contentSelectors = []string{
	"main",
	`[role="main"]`,
	".main-content",
	".content",
	"article",
	".post-content",
	".entry-content",
	"#content",
	".page-content",
	".article-body",
}

var blockedHosts = []string{"localhost", "127.0.0.1", "0.0.0.0"}

// LinkExtractor scrapes the main content of a web page.
type LinkExtractor struct {
	client           *http.Client
	maxContentLength int
	allowLocalHosts  bool
	logger           *zap.Logger
}

// NewLinkExtractor creates a link extractor with a fetch timeout and a
// cap on extracted content length.
func NewLinkExtractor(timeout time.Duration, maxContentLength int, logger *zap.Logger) *LinkExtractor {
	return &LinkExtractor{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		maxContentLength: maxContentLength,
		logger:           logger,
	}
}

// ValidateURL rejects non-http(s) schemes and local hosts. Called both
// synchronously at submission time and again before fetching.
func (e *LinkExtractor) ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL format", ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only HTTP and HTTPS URLs are supported", ErrInvalidInput)
	}
	host := u.Hostname()
	if host == "" || len(host) < 3 {
		return fmt.Errorf("%w: invalid hostname in URL", ErrInvalidInput)
	}
	if !e.allowLocalHosts {
		for _, blocked := range blockedHosts {
			if strings.Contains(host, blocked) {
				return fmt.Errorf("%w: cannot scrape local URLs", ErrInvalidInput)
			}
		}
	}
	return nil
}

// Extract fetches the page and returns its cleaned main content plus
// best-effort page metadata. The metadata never fails the extraction.
func (e *LinkExtractor) Extract(ctx context.Context, rawURL string) (string, map[string]any, error) {
	if err := e.ValidateURL(rawURL); err != nil {
		return "", nil, err
	}

	doc, err := e.fetch(ctx, rawURL)
	if err != nil {
		return "", nil, err
	}

	doc.Find(strippedSelectors).Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = "Untitled"
	}

	var content string
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			content = s.First().Text()
			break
		}
	}
	if strings.TrimSpace(content) == "" {
		// Fallback: concatenate paragraph and heading text.
		var parts []string
		doc.Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); len(t) > 10 {
				parts = append(parts, t)
			}
		})
		content = strings.Join(parts, "\n\n")
	}

	content = NormalizeText(content)
	if len(content) < minContentLength {
		return "", nil, fmt.Errorf("%w: got %d characters from %s", ErrInsufficientContent, len(content), rawURL)
	}
	if len(content) > e.maxContentLength {
		cut := e.maxContentLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + truncationMarker
	}

	return content, e.metadata(doc, rawURL, title, len(content)), nil
}

func (e *LinkExtractor) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyNetworkError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &NetworkError{URL: rawURL, Cause: CauseStatus, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return doc, nil
}

// metadata extracts page metadata. Missing tags simply leave fields
// empty; this path never produces an error.
func (e *LinkExtractor) metadata(doc *goquery.Document, rawURL, title string, contentLength int) map[string]any {
	meta := map[string]any{
		"title":          title,
		"canonical":      rawURL,
		"language":       "en",
		"scraped_at":     time.Now().UTC().Format(time.RFC3339),
		"content_length": contentLength,
	}

	attr := func(selector, name string) string {
		v, _ := doc.Find(selector).First().Attr(name)
		return strings.TrimSpace(v)
	}

	description := attr(`meta[name="description"]`, "content")
	if description == "" {
		description = attr(`meta[property="og:description"]`, "content")
	}
	meta["description"] = description
	meta["keywords"] = attr(`meta[name="keywords"]`, "content")
	meta["author"] = attr(`meta[name="author"]`, "content")
	meta["og_title"] = attr(`meta[property="og:title"]`, "content")
	meta["og_image"] = attr(`meta[property="og:image"]`, "content")

	if canonical := attr(`link[rel="canonical"]`, "href"); canonical != "" {
		meta["canonical"] = canonical
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		meta["language"] = lang
	} else if lang := attr(`meta[http-equiv="content-language"]`, "content"); lang != "" {
		meta["language"] = lang
	}

	return meta
}

func classifyNetworkError(rawURL string, err error) error {
	ne := &NetworkError{URL: rawURL, Err: err}

	var dnsErr *net.DNSError
	var certErr *x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	var netErr net.Error

	switch {
	case errors.As(err, &dnsErr):
		ne.Cause = CauseNotFound
	case errors.Is(err, syscall.ECONNREFUSED):
		ne.Cause = CauseConnectionRefused
	case errors.As(err, &certErr), errors.As(err, &hostErr), errors.As(err, &recordErr):
		ne.Cause = CauseTLS
	case errors.As(err, &netErr) && netErr.Timeout():
		ne.Cause = CauseTimeout
	default:
		ne.Cause = CauseConnection
	}
	return ne
}
