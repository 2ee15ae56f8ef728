package storage

import (
	"context"
	"sync"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

// Store is the persistence port for processed articles. Both backends share
// the same semantics: Save validates before any I/O, treats an already-stored
// URL as a successful no-op, and converts I/O faults into a false return;
// List converts faults into an empty result. Faults never propagate.
type Store interface {
	// Save persists one article and reports success. Re-saving an
	// existing URL succeeds without writing a second record.
	Save(ctx context.Context, article models.ProcessedArticle) bool

	// List retrieves stored articles matching the optional filters.
	List(ctx context.Context, filters *models.ArticleFilters) []models.ProcessedArticle
}

// matchesFilters applies entity (OR semantics) and inclusive date-bound
// filtering for the backends that scan linearly.
func matchesFilters(article models.ProcessedArticle, filters *models.ArticleFilters) bool {
	if filters == nil {
		return true
	}

	if len(filters.Entities) > 0 {
		found := false
		for _, want := range filters.Entities {
			for _, tag := range article.EntityTags {
				if tag == want {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.StartDate != nil && article.PublishedAt.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && article.PublishedAt.After(*filters.EndDate) {
		return false
	}

	return true
}

// MemoryStore implements Store in memory for testing and development.
type MemoryStore struct {
	mu       sync.Mutex
	articles []models.ProcessedArticle
	byURL    map[string]bool

	// FailSaves forces Save to return false, for exercising storage-stage
	// error handling in tests.
	FailSaves bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byURL: make(map[string]bool)}
}

// Save stores the article in memory, honoring URL idempotency.
func (s *MemoryStore) Save(ctx context.Context, article models.ProcessedArticle) bool {
	if err := article.Validate(); err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return false
	}

	if s.byURL[article.URL] {
		return true
	}

	s.byURL[article.URL] = true
	s.articles = append(s.articles, article)
	return true
}

// List returns stored articles matching the filters.
func (s *MemoryStore) List(ctx context.Context, filters *models.ArticleFilters) []models.ProcessedArticle {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.ProcessedArticle, 0, len(s.articles))
	for _, article := range s.articles {
		if matchesFilters(article, filters) {
			result = append(result, article)
		}
	}
	return result
}

// Size returns the number of stored articles.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}
