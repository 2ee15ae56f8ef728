package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

// minContentLength is the threshold below which extracted text is considered
// insufficient and the next extraction tier is tried.
const minContentLength = 100

// fallbackUserAgent is sent on fallback fetches; some publishers refuse
// requests without a browser-looking agent.
const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// candidateSelectors are tried in order against the cleaned document; the
// first match becomes the content container.
var candidateSelectors = []string{
	"article",
	"div.article-content",
	"div.post-content",
	"div.entry-content",
}

// Scraper extracts full article text from a URL with a two-tier strategy:
// a readability parse first, then a generic paragraph scrape of the raw HTML.
// Every call returns a ScrapedContent value; faults never propagate.
type Scraper struct {
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Scraper. A zero timeout defaults to 30 seconds.
func New(timeout time.Duration, logger *slog.Logger) *Scraper {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Scraper{
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Scrape extracts the article text at pageURL. The readability result is
// accepted only when it exceeds the minimum content threshold; otherwise the
// fallback path runs. ScrapedAt is always the time the operation began.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) models.ScrapedContent {
	scrapedAt := time.Now()

	text, published, err := s.extractReadable(ctx, pageURL)
	if err != nil {
		s.logger.Warn("readability extraction failed, trying fallback", "url", pageURL, "error", err)
		return s.scrapeFallback(ctx, pageURL, scrapedAt)
	}

	if len(text) <= minContentLength {
		s.logger.Warn("readability extracted insufficient content, trying fallback", "url", pageURL, "length", len(text))
		return s.scrapeFallback(ctx, pageURL, scrapedAt)
	}

	s.logger.Info("scraped article with readability", "url", pageURL, "length", len(text))
	return models.ScrapedContent{
		FullText:    text,
		PublishedAt: published,
		ScrapedAt:   scrapedAt,
		Success:     true,
	}
}

// extractReadable fetches the page and runs the readability parser over it.
func (s *Scraper) extractReadable(ctx context.Context, pageURL string) (string, *time.Time, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", nil, fmt.Errorf("parse article: %w", err)
	}

	return strings.TrimSpace(article.TextContent), article.PublishedTime, nil
}

// scrapeFallback fetches the raw page with a browser user agent, strips
// non-content elements and joins the paragraph text of the first matching
// article-like container. The fallback never supplies a publish date.
func (s *Scraper) scrapeFallback(ctx context.Context, pageURL string, scrapedAt time.Time) models.ScrapedContent {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return s.failure(pageURL, scrapedAt, fmt.Sprintf("request error: %v", err))
	}
	req.Header.Set("User-Agent", fallbackUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return s.failure(pageURL, scrapedAt, fmt.Sprintf("request timeout after %v", s.timeout))
		}
		return s.failure(pageURL, scrapedAt, fmt.Sprintf("request error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.failure(pageURL, scrapedAt, fmt.Sprintf("HTTP error %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return s.failure(pageURL, scrapedAt, fmt.Sprintf("parse error: %v", err))
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	container := doc.Find("body").First()
	for _, selector := range candidateSelectors {
		if match := doc.Find(selector).First(); match.Length() > 0 {
			container = match
			break
		}
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n\n")
	if len(text) <= minContentLength {
		return s.failure(pageURL, scrapedAt, "could not extract sufficient content from page")
	}

	s.logger.Info("scraped article with fallback", "url", pageURL, "length", len(text))
	return models.ScrapedContent{
		FullText:  text,
		ScrapedAt: scrapedAt,
		Success:   true,
	}
}

func (s *Scraper) failure(pageURL string, scrapedAt time.Time, message string) models.ScrapedContent {
	s.logger.Error("failed to scrape article", "url", pageURL, "error", message)
	return models.ScrapedContent{
		ScrapedAt:    scrapedAt,
		Success:      false,
		ErrorMessage: message,
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
