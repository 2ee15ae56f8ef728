package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArticle(url string) models.ProcessedArticle {
	return models.ProcessedArticle{
		Title:       "Quarterly results announced",
		URL:         url,
		PublishedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EntityTags:  []string{"TCS"},
		Summary:     "The company reported strong quarterly growth driven by cloud services demand.",
		Source:      "Example News",
		CreatedAt:   time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_SaveAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if !store.Save(ctx, testArticle("https://example.com/1")) {
		t.Fatal("expected save to succeed")
	}
	if !store.Save(ctx, testArticle("https://example.com/2")) {
		t.Fatal("expected save to succeed")
	}

	articles := store.List(ctx, nil)
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
}

func TestMemoryStore_DuplicateURLIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	article := testArticle("https://example.com/1")
	if !store.Save(ctx, article) {
		t.Fatal("expected first save to succeed")
	}
	if !store.Save(ctx, article) {
		t.Fatal("expected duplicate save to report success")
	}

	if store.Size() != 1 {
		t.Errorf("expected 1 stored article, got %d", store.Size())
	}
}

func TestMemoryStore_ValidationFailure(t *testing.T) {
	store := NewMemoryStore()

	invalid := testArticle("https://example.com/1")
	invalid.Summary = "   "

	if store.Save(context.Background(), invalid) {
		t.Error("expected save of invalid article to fail")
	}
	if store.Size() != 0 {
		t.Errorf("expected nothing stored, got %d", store.Size())
	}
}

func TestMatchesFilters(t *testing.T) {
	article := testArticle("https://example.com/1")
	article.EntityTags = []string{"TCS", "Wipro"}

	before := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	exact := article.PublishedAt

	tests := []struct {
		name    string
		filters *models.ArticleFilters
		want    bool
	}{
		{"nil filters", nil, true},
		{"empty filters", &models.ArticleFilters{}, true},
		{"matching entity", &models.ArticleFilters{Entities: []string{"Wipro"}}, true},
		{"one of several entities", &models.ArticleFilters{Entities: []string{"Infosys", "TCS"}}, true},
		{"no matching entity", &models.ArticleFilters{Entities: []string{"Infosys"}}, false},
		{"inside date range", &models.ArticleFilters{StartDate: &before, EndDate: &after}, true},
		{"published before start", &models.ArticleFilters{StartDate: &after}, false},
		{"published after end", &models.ArticleFilters{EndDate: &before}, false},
		{"start bound inclusive", &models.ArticleFilters{StartDate: &exact}, true},
		{"end bound inclusive", &models.ArticleFilters{EndDate: &exact}, true},
		{
			"entity matches but date excludes",
			&models.ArticleFilters{Entities: []string{"TCS"}, EndDate: &before},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesFilters(article, tt.filters); got != tt.want {
				t.Errorf("matchesFilters() = %v, want %v", got, tt.want)
			}
		})
	}
}
