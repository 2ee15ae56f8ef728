package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
	"github.com/shivam060404/News-Aggregation-System/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCollector struct {
	items []models.RawArticle
}

func (f *fakeCollector) Fetch(ctx context.Context, entities []string, windowDays int) []models.RawArticle {
	return f.items
}

type fakeScraper struct {
	failURLs map[string]bool
}

func (f *fakeScraper) Scrape(ctx context.Context, url string) models.ScrapedContent {
	if f.failURLs[url] {
		return models.ScrapedContent{
			ScrapedAt:    time.Now(),
			Success:      false,
			ErrorMessage: "HTTP error 404",
		}
	}
	return models.ScrapedContent{
		FullText:  "TCS reported strong quarterly results driven by sustained demand for cloud services.",
		ScrapedAt: time.Now(),
		Success:   true,
	}
}

type fakeClassifier struct {
	tags map[string][]string // keyed by title; missing means no match
}

func (f *fakeClassifier) Classify(title, body string) []string {
	return f.tags[title]
}

type fakeSummarizer struct {
	fail bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, content string, maxWords int) models.Summary {
	if f.fail {
		return models.Summary{Success: false, ErrorMessage: "AI summarization failed: rate limited"}
	}
	return models.Summary{
		Text:      "A concise description of the article covering its key facts and figures in a few words.",
		WordCount: 35,
		Success:   true,
	}
}

type fakeMetrics struct {
	mu        sync.Mutex
	completed map[string]int
	failed    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{completed: make(map[string]int), failed: make(map[string]int)}
}

func (m *fakeMetrics) StageCompleted(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[stage]++
}

func (m *fakeMetrics) StageFailed(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[stage]++
}

func rawArticle(n string) models.RawArticle {
	return models.RawArticle{
		Title:  "Article " + n,
		URL:    "https://example.com/" + n,
		Source: "Example News",
	}
}

type pipelineFixture struct {
	collector  *fakeCollector
	scraper    *fakeScraper
	classifier *fakeClassifier
	summarizer *fakeSummarizer
	store      *storage.MemoryStore
	metrics    *fakeMetrics
}

func newFixture(items ...models.RawArticle) *pipelineFixture {
	tags := make(map[string][]string)
	for _, item := range items {
		tags[item.Title] = []string{"TCS"}
	}

	return &pipelineFixture{
		collector:  &fakeCollector{items: items},
		scraper:    &fakeScraper{failURLs: make(map[string]bool)},
		classifier: &fakeClassifier{tags: tags},
		summarizer: &fakeSummarizer{},
		store:      storage.NewMemoryStore(),
		metrics:    newFakeMetrics(),
	}
}

func (f *pipelineFixture) build(logger *slog.Logger) *Pipeline {
	return New(Deps{
		Collector:  f.collector,
		Scraper:    f.scraper,
		Classifier: f.classifier,
		Summarizer: f.summarizer,
		Store:      f.store,
		Metrics:    f.metrics,
	}, Config{
		EntitySet:  models.EntitySet{Name: "Test", Entities: []string{"TCS"}},
		WindowDays: 7,
	}, logger)
}

func assertCounts(t *testing.T, report models.RunReport, collected, scraped, classified, summarized, stored int) {
	t.Helper()
	if report.Collected != collected {
		t.Errorf("collected = %d, want %d", report.Collected, collected)
	}
	if report.Scraped != scraped {
		t.Errorf("scraped = %d, want %d", report.Scraped, scraped)
	}
	if report.Classified != classified {
		t.Errorf("classified = %d, want %d", report.Classified, classified)
	}
	if report.Summarized != summarized {
		t.Errorf("summarized = %d, want %d", report.Summarized, summarized)
	}
	if report.Stored != stored {
		t.Errorf("stored = %d, want %d", report.Stored, stored)
	}
}

func TestRun_HappyPath(t *testing.T) {
	f := newFixture(rawArticle("1"))
	report := f.build(testLogger()).Run(context.Background())

	assertCounts(t, report, 1, 1, 1, 1, 1)
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors, got %v", report.Errors)
	}
	if report.RunID == "" {
		t.Error("expected run ID to be set")
	}
	if f.store.Size() != 1 {
		t.Errorf("expected 1 article persisted, got %d", f.store.Size())
	}
	if f.metrics.completed["stored"] != 1 {
		t.Errorf("expected stored metric 1, got %d", f.metrics.completed["stored"])
	}
}

func TestRun_ScrapeFailureRecorded(t *testing.T) {
	f := newFixture(rawArticle("1"), rawArticle("2"))
	f.scraper.failURLs["https://example.com/1"] = true

	report := f.build(testLogger()).Run(context.Background())

	assertCounts(t, report, 2, 1, 1, 1, 1)
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(report.Errors))
	}
	e := report.Errors[0]
	if e.Stage != models.StageScraping {
		t.Errorf("error stage = %q, want %q", e.Stage, models.StageScraping)
	}
	if e.ArticleURL != "https://example.com/1" {
		t.Errorf("error url = %q", e.ArticleURL)
	}
	if e.Message != "HTTP error 404" {
		t.Errorf("error message = %q", e.Message)
	}
	if f.metrics.failed[models.StageScraping] != 1 {
		t.Errorf("expected scraping failure metric 1, got %d", f.metrics.failed[models.StageScraping])
	}
}

func TestRun_UnclassifiedArticleSkippedSilently(t *testing.T) {
	f := newFixture(rawArticle("1"), rawArticle("2"))
	delete(f.classifier.tags, "Article 2")

	report := f.build(testLogger()).Run(context.Background())

	assertCounts(t, report, 2, 2, 1, 1, 1)
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors for unmatched article, got %v", report.Errors)
	}
}

func TestRun_SummarizeFailureRecorded(t *testing.T) {
	f := newFixture(rawArticle("1"))
	f.summarizer.fail = true

	report := f.build(testLogger()).Run(context.Background())

	assertCounts(t, report, 1, 1, 1, 0, 0)
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(report.Errors))
	}
	if report.Errors[0].Stage != models.StageSummarization {
		t.Errorf("error stage = %q, want %q", report.Errors[0].Stage, models.StageSummarization)
	}
}

func TestRun_StoreFailureRecorded(t *testing.T) {
	f := newFixture(rawArticle("1"))
	f.store.FailSaves = true

	report := f.build(testLogger()).Run(context.Background())

	assertCounts(t, report, 1, 1, 1, 1, 0)
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(report.Errors))
	}
	if report.Errors[0].Stage != models.StageStorage {
		t.Errorf("error stage = %q, want %q", report.Errors[0].Stage, models.StageStorage)
	}
}

func TestRun_NoArticlesCollected(t *testing.T) {
	f := newFixture()
	report := f.build(testLogger()).Run(context.Background())

	assertCounts(t, report, 0, 0, 0, 0, 0)
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors, got %v", report.Errors)
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("expected FinishedAt >= StartedAt")
	}
}

func TestRun_CancelledContextStopsNewItems(t *testing.T) {
	f := newFixture(rawArticle("1"), rawArticle("2"), rawArticle("3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.build(testLogger()).Run(ctx)

	// Items are collected, but none are processed after cancellation.
	if report.Collected != 3 {
		t.Errorf("collected = %d, want 3", report.Collected)
	}
	if report.Scraped != 0 {
		t.Errorf("scraped = %d, want 0", report.Scraped)
	}
	if report.Stored != 0 {
		t.Errorf("stored = %d, want 0", report.Stored)
	}
}

func TestRun_EffectivePublishedDate(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("scraped publish date preferred", func(t *testing.T) {
		f := newFixture(rawArticle("1"))

		p := New(Deps{
			Collector:  f.collector,
			Scraper:    scraperWithDate{&published},
			Classifier: f.classifier,
			Summarizer: f.summarizer,
			Store:      f.store,
		}, Config{EntitySet: models.EntitySet{Entities: []string{"TCS"}}}, testLogger())

		p.Run(context.Background())

		articles := f.store.List(context.Background(), nil)
		if len(articles) != 1 {
			t.Fatalf("expected 1 stored article, got %d", len(articles))
		}
		if !articles[0].PublishedAt.Equal(published) {
			t.Errorf("published = %v, want %v", articles[0].PublishedAt, published)
		}
	})

	t.Run("scrape timestamp used when no publish date", func(t *testing.T) {
		f := newFixture(rawArticle("1"))
		f.build(testLogger()).Run(context.Background())

		articles := f.store.List(context.Background(), nil)
		if len(articles) != 1 {
			t.Fatalf("expected 1 stored article, got %d", len(articles))
		}
		if articles[0].PublishedAt.IsZero() {
			t.Error("expected fallback to scrape timestamp")
		}
	})
}

type scraperWithDate struct {
	published *time.Time
}

func (s scraperWithDate) Scrape(ctx context.Context, url string) models.ScrapedContent {
	return models.ScrapedContent{
		FullText:    "TCS reported strong quarterly results driven by sustained demand for cloud services.",
		PublishedAt: s.published,
		ScrapedAt:   time.Now(),
		Success:     true,
	}
}

func TestRun_MetricsMayBeNil(t *testing.T) {
	f := newFixture(rawArticle("1"))

	p := New(Deps{
		Collector:  f.collector,
		Scraper:    f.scraper,
		Classifier: f.classifier,
		Summarizer: f.summarizer,
		Store:      f.store,
	}, Config{EntitySet: models.EntitySet{Entities: []string{"TCS"}}}, testLogger())

	report := p.Run(context.Background())
	assertCounts(t, report, 1, 1, 1, 1, 1)
}

func TestErrorsByStage(t *testing.T) {
	report := models.RunReport{
		Errors: []models.StageError{
			{Stage: models.StageScraping},
			{Stage: models.StageScraping},
			{Stage: models.StageStorage},
		},
	}

	counts := report.ErrorsByStage()
	if counts[models.StageScraping] != 2 {
		t.Errorf("scraping errors = %d, want 2", counts[models.StageScraping])
	}
	if counts[models.StageStorage] != 1 {
		t.Errorf("storage errors = %d, want 1", counts[models.StageStorage])
	}
	if counts[models.StageSummarization] != 0 {
		t.Errorf("summarization errors = %d, want 0", counts[models.StageSummarization])
	}
}
