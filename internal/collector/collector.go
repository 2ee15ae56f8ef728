package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

const (
	defaultBaseURL = "https://newsapi.org/v2/everything"

	// pageSize is the maximum the search API allows per request. A page
	// shorter than this signals the end of results.
	pageSize = 100

	maxPages = 3
)

// Config holds collection client parameters.
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	RetryPolicy RetryPolicy
}

// Client collects article references from a NewsAPI-style search endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a collection client. BaseURL, Timeout and RetryPolicy fall back
// to defaults when unset.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryPolicy.MaxAttempts == 0 {
		cfg.RetryPolicy = DefaultRetryPolicy()
	}

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Fetch retrieves article references mentioning any of the tracked entities
// published within the last windowDays days. Failures never propagate: the
// result is always a (possibly empty) list, with errors logged along the way.
func (c *Client) Fetch(ctx context.Context, entities []string, windowDays int) []models.RawArticle {
	query := buildQuery(entities)
	fromDate := time.Now().AddDate(0, 0, -windowDays)

	var all []models.RawArticle

	for page := 1; page <= maxPages; page++ {
		items, err := c.fetchPage(ctx, query, fromDate, page)
		if err != nil {
			c.logger.Error("page fetch failed", "page", page, "error", err)
			break
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)

		// A short page means the API has no more results.
		if len(items) < pageSize {
			break
		}
	}

	c.logger.Info("collection complete",
		"articles", len(all),
		"entities", strings.Join(entities, ", "),
	)

	return all
}

// fetchPage requests a single result page, retrying transient failures with
// exponential backoff. Rate limiting (429), server errors and timeouts are
// retried; other client errors fail immediately.
func (c *Client) fetchPage(ctx context.Context, query string, fromDate time.Time, page int) ([]models.RawArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", fromDate.Format("2006-01-02"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("apiKey", c.config.APIKey)

	requestURL := c.config.BaseURL + "?" + params.Encode()

	var items []models.RawArticle

	err := Retry(ctx, c.config.RetryPolicy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeout(err) {
				c.logger.Warn("request timeout", "page", page, "error", err)
				return NewRetryableError(fmt.Errorf("request timeout: %w", err))
			}
			c.logger.Warn("request failed", "page", page, "error", err)
			return NewRetryableError(fmt.Errorf("request error: %w", err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			c.logger.Warn("rate limit hit, backing off", "page", page)
			return NewRetryableError(fmt.Errorf("rate limited (HTTP 429)"))
		case resp.StatusCode >= 500:
			return NewRetryableError(fmt.Errorf("server error (HTTP %d)", resp.StatusCode))
		case resp.StatusCode >= 400:
			return fmt.Errorf("client error (HTTP %d)", resp.StatusCode)
		}

		var payload searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		if payload.Status != "ok" {
			c.logger.Error("search API returned error status", "message", payload.Message)
			items = nil
			return nil
		}

		items = c.parseArticles(payload.Articles)
		return nil
	})

	return items, err
}

// searchResponse mirrors the search API's JSON envelope.
type searchResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Articles []searchArticle `json:"articles"`
}

type searchArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
	Description string `json:"description"`
}

// parseArticles converts API items into RawArticle values. Items without a
// title or URL are dropped; unparseable dates are tolerated.
func (c *Client) parseArticles(raw []searchArticle) []models.RawArticle {
	articles := make([]models.RawArticle, 0, len(raw))

	for _, item := range raw {
		if item.Title == "" || item.URL == "" {
			continue
		}

		var published *time.Time
		if item.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
				published = &t
			} else {
				c.logger.Warn("could not parse article date", "value", item.PublishedAt)
			}
		}

		source := item.Source.Name
		if source == "" {
			source = "Unknown"
		}

		articles = append(articles, models.RawArticle{
			Title:       item.Title,
			URL:         item.URL,
			PublishedAt: published,
			Source:      source,
			Snippet:     item.Description,
		})
	}

	return articles
}

// buildQuery joins each entity in quotes with the OR operator.
func buildQuery(entities []string) string {
	quoted := make([]string, len(entities))
	for i, entity := range entities {
		quoted[i] = `"` + entity + `"`
	}
	return strings.Join(quoted, " OR ")
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
