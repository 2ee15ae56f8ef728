package models

import (
	"fmt"
	"strings"
	"time"
)

// EntitySet is the fixed list of tracked entity names for one pipeline run.
// The order of Entities is significant: classification results preserve it.
type EntitySet struct {
	Name     string
	Entities []string
}

// RawArticle is one article reference returned by the news search API.
// It is consumed once by the pipeline and never persisted directly.
type RawArticle struct {
	Title       string
	URL         string
	PublishedAt *time.Time
	Source      string
	Snippet     string
}

// ScrapedContent is the outcome of full-text extraction for one URL.
type ScrapedContent struct {
	FullText     string
	PublishedAt  *time.Time
	ScrapedAt    time.Time
	Success      bool
	ErrorMessage string
}

// Summary is the outcome of AI summarization for one article.
type Summary struct {
	Text         string
	WordCount    int
	Success      bool
	ErrorMessage string
}

// ProcessedArticle is the durable unit of output, keyed by URL.
type ProcessedArticle struct {
	Title       string
	URL         string
	PublishedAt time.Time
	EntityTags  []string
	Summary     string
	Source      string
	CreatedAt   time.Time
}

// Validate checks the fields every storage backend requires before any I/O.
func (a ProcessedArticle) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("title is empty")
	}
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("url is empty")
	}
	if a.PublishedAt.IsZero() {
		return fmt.Errorf("published date is missing")
	}
	if len(a.EntityTags) == 0 {
		return fmt.Errorf("entity tags are empty")
	}
	if strings.TrimSpace(a.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

// ArticleFilters narrows the result set of a storage query. A nil filter or
// zero-value field means "no constraint" for that dimension. Entity filtering
// uses OR semantics: an article matches when its tag list intersects Entities.
type ArticleFilters struct {
	Entities  []string
	StartDate *time.Time
	EndDate   *time.Time
}
