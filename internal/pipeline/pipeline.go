package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
	"github.com/shivam060404/News-Aggregation-System/internal/storage"
	"github.com/shivam060404/News-Aggregation-System/internal/summarizer"
)

// Collector retrieves article references for the tracked entities.
type Collector interface {
	Fetch(ctx context.Context, entities []string, windowDays int) []models.RawArticle
}

// Scraper extracts full article text from a URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) models.ScrapedContent
}

// Classifier returns the tracked entities mentioned in an article.
type Classifier interface {
	Classify(title, body string) []string
}

// Summarizer generates a short summary of article content.
type Summarizer interface {
	Summarize(ctx context.Context, content string, maxWords int) models.Summary
}

// MetricsRecorder receives per-stage outcome events. Optional.
type MetricsRecorder interface {
	StageCompleted(stage string)
	StageFailed(stage string)
}

// Deps are the collaborators the pipeline drives.
type Deps struct {
	Collector  Collector
	Scraper    Scraper
	Classifier Classifier
	Summarizer Summarizer
	Store      storage.Store
	Metrics    MetricsRecorder // may be nil
}

// Config holds per-run pipeline parameters.
type Config struct {
	EntitySet       models.EntitySet
	WindowDays      int
	MaxSummaryWords int
}

// Pipeline orchestrates one collection-to-storage run. Items are processed
// strictly sequentially; a stage failure or empty classification skips the
// item and never aborts the run.
type Pipeline struct {
	deps   Deps
	config Config
	logger *slog.Logger
}

// New creates a pipeline. MaxSummaryWords defaults to the summarizer's
// standard bound when unset.
func New(deps Deps, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.MaxSummaryWords == 0 {
		cfg.MaxSummaryWords = summarizer.DefaultMaxWords
	}

	return &Pipeline{
		deps:   deps,
		config: cfg,
		logger: logger,
	}
}

// runState accumulates counters and errors for a single run. The counters are
// monotonic and mutually consistent: stored <= summarized <= classified <=
// scraped <= collected.
type runState struct {
	collected  int
	scraped    int
	classified int
	summarized int
	stored     int
	errors     []models.StageError
}

// Run executes the full pipeline and always returns a report, even when the
// context is cancelled mid-run: processed work is reported, no new items are
// started.
func (p *Pipeline) Run(ctx context.Context) models.RunReport {
	startedAt := time.Now()
	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID)

	logger.Info("starting pipeline run",
		"entity_set", p.config.EntitySet.Name,
		"entities", p.config.EntitySet.Entities,
		"window_days", p.config.WindowDays,
	)

	state := &runState{}

	raw := p.deps.Collector.Fetch(ctx, p.config.EntitySet.Entities, p.config.WindowDays)
	state.collected = len(raw)
	p.recordCompleted("collected", len(raw))

	if state.collected == 0 {
		logger.Warn("no articles collected")
		return p.buildReport(runID, startedAt, state)
	}

	logger.Info("processing collected articles", "count", state.collected)

	for i, item := range raw {
		if ctx.Err() != nil {
			logger.Warn("run cancelled, stopping item processing",
				"processed", i,
				"remaining", state.collected-i,
			)
			break
		}

		p.processItem(ctx, item, state, logger)
	}

	report := p.buildReport(runID, startedAt, state)

	logger.Info("pipeline run complete",
		"collected", report.Collected,
		"scraped", report.Scraped,
		"classified", report.Classified,
		"summarized", report.Summarized,
		"stored", report.Stored,
		"errors", len(report.Errors),
	)

	return report
}

// processItem runs one article through scrape, classify, summarize and store.
// The first failed stage records an error and skips the rest; an empty
// classification skips silently.
func (p *Pipeline) processItem(ctx context.Context, item models.RawArticle, state *runState, logger *slog.Logger) {
	scraped := p.deps.Scraper.Scrape(ctx, item.URL)
	if !scraped.Success {
		message := scraped.ErrorMessage
		if message == "" {
			message = "unknown scraping error"
		}
		p.recordError(state, models.StageScraping, item.URL, message, logger)
		return
	}
	state.scraped++
	p.recordCompleted("scraped", 1)

	entities := p.deps.Classifier.Classify(item.Title, scraped.FullText)
	if len(entities) == 0 {
		// Normal filtering, not an error.
		logger.Debug("article matched no tracked entities, skipping", "url", item.URL)
		return
	}
	state.classified++
	p.recordCompleted("classified", 1)

	summary := p.deps.Summarizer.Summarize(ctx, scraped.FullText, p.config.MaxSummaryWords)
	if !summary.Success {
		message := summary.ErrorMessage
		if message == "" {
			message = "unknown summarization error"
		}
		p.recordError(state, models.StageSummarization, item.URL, message, logger)
		return
	}
	state.summarized++
	p.recordCompleted("summarized", 1)

	published := scraped.ScrapedAt
	if scraped.PublishedAt != nil {
		published = *scraped.PublishedAt
	}

	article := models.ProcessedArticle{
		Title:       item.Title,
		URL:         item.URL,
		PublishedAt: published,
		EntityTags:  entities,
		Summary:     summary.Text,
		Source:      item.Source,
		CreatedAt:   time.Now(),
	}

	if p.deps.Store.Save(ctx, article) {
		state.stored++
		p.recordCompleted("stored", 1)
		logger.Info("article stored", "url", item.URL, "entities", entities)
	} else {
		p.recordError(state, models.StageStorage, item.URL, "failed to save article to storage", logger)
	}
}

func (p *Pipeline) recordError(state *runState, stage, url, message string, logger *slog.Logger) {
	state.errors = append(state.errors, models.StageError{
		Stage:      stage,
		ArticleURL: url,
		Message:    message,
		Timestamp:  time.Now(),
	})

	if p.deps.Metrics != nil {
		p.deps.Metrics.StageFailed(stage)
	}

	logger.Error("stage failed", "stage", stage, "url", url, "error", message)
}

func (p *Pipeline) recordCompleted(stage string, n int) {
	if p.deps.Metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		p.deps.Metrics.StageCompleted(stage)
	}
}

func (p *Pipeline) buildReport(runID string, startedAt time.Time, state *runState) models.RunReport {
	return models.RunReport{
		RunID:      runID,
		Collected:  state.collected,
		Scraped:    state.scraped,
		Classified: state.classified,
		Summarized: state.summarized,
		Stored:     state.stored,
		Errors:     state.errors,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
}
