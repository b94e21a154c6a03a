package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/models"
)

// ExtractionError indicates page content could not be extracted. The
// caller can degrade to a capture with the page URL only.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s", e.URL, e.Reason)
}

// mainContentSelectors are tried in order when isolating the readable
// portion of a page. The body selector is the catch-all.
var mainContentSelectors = []string{"main", "article", ".content", ".main-content", "#content", "#main", "body"}

// noiseSelectors are stripped before conversion
var noiseSelectors = []string{"script", "style", "noscript", "nav", "header", "footer", "aside", "iframe", "form"}

// Service extracts page content as markdown
type Service struct {
	config     common.ExtractorConfig
	httpClient *http.Client
	renderer   *Renderer
	logger     arbor.ILogger
}

// NewService creates a new content extraction service
func NewService(config common.ExtractorConfig, logger arbor.ILogger) *Service {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	service := &Service{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}

	if config.EnableJavaScript {
		service.renderer = NewRenderer(config, logger)
	}

	return service
}

// Extract converts a capture request into markdown page content. A
// non-empty selection is used verbatim and the page is never fetched.
func (s *Service) Extract(ctx context.Context, req *models.ExtractRequest) (*models.PageContent, error) {
	if strings.TrimSpace(req.Selection) != "" {
		s.logger.Debug().Str("url", req.URL).Msg("Using selection verbatim, skipping page fetch")
		return &models.PageContent{
			Title:    req.Title,
			URL:      req.URL,
			Markdown: req.Selection,
			Source:   models.ContentSourceSelection,
		}, nil
	}

	html, err := s.loadPage(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{URL: req.URL, Reason: fmt.Sprintf("failed to parse HTML: %v", err)}
	}

	title := extractTitle(doc)
	if title == "" {
		title = req.Title
	}

	markdown := s.toMarkdown(req.URL, doc)

	return &models.PageContent{
		Title:    title,
		URL:      req.URL,
		Markdown: markdown,
		Source:   models.ContentSourcePage,
	}, nil
}

// loadPage retrieves page HTML, rendering JavaScript when enabled
func (s *Service) loadPage(ctx context.Context, pageURL string) (string, error) {
	if s.renderer != nil {
		html, err := s.renderer.Render(ctx, pageURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", pageURL).Msg("JavaScript rendering failed, falling back to plain fetch")
		} else {
			return html, nil
		}
	}

	return s.fetch(ctx, pageURL)
}

func (s *Service) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &ExtractionError{URL: pageURL, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &ExtractionError{URL: pageURL, Reason: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ExtractionError{URL: pageURL, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	maxBody := s.config.MaxBodySize
	if maxBody <= 0 {
		maxBody = 10 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBody)))
	if err != nil {
		return "", &ExtractionError{URL: pageURL, Reason: fmt.Sprintf("failed to read body: %v", err)}
	}

	return string(body), nil
}

// toMarkdown isolates the main content and converts it to markdown.
// An empty result is valid, callers degrade to URL-only captures.
func (s *Service) toMarkdown(pageURL string, doc *goquery.Document) string {
	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}

	var contentHTML string
	for _, selector := range mainContentSelectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if html, err := selection.Html(); err == nil && strings.TrimSpace(html) != "" {
			contentHTML = html
			break
		}
	}

	if contentHTML == "" {
		return ""
	}

	converter := md.NewConverter(pageURL, true, nil)
	markdown, err := converter.ConvertString(contentHTML)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", pageURL).Msg("Markdown conversion failed, using stripped text")
		return stripTags(contentHTML)
	}

	if strings.TrimSpace(markdown) == "" && strings.TrimSpace(contentHTML) != "" {
		return stripTags(contentHTML)
	}

	return strings.TrimSpace(markdown)
}

// extractTitle walks the title sources in preference order
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if tw, ok := doc.Find(`meta[name="twitter:title"]`).First().Attr("content"); ok && strings.TrimSpace(tw) != "" {
		return strings.TrimSpace(tw)
	}
	return ""
}

var tagRe = regexp.MustCompile(`<[^>]*>`)
var spaceRe = regexp.MustCompile(`\s+`)

// stripTags removes HTML tags for fallback cases
func stripTags(html string) string {
	stripped := tagRe.ReplaceAllString(html, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(stripped, " "))
}
