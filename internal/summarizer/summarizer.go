package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

const (
	// maxContentLength caps the article text sent to the backend so the
	// prompt stays inside provider context limits.
	maxContentLength = 4000

	minSummaryWords = 30

	// DefaultMaxWords is the upper bound of the requested summary length.
	DefaultMaxWords = 40
)

// Config holds summarization client parameters.
type Config struct {
	Provider string
	APIKey   string
	Model    string // empty selects the provider's default model
}

// Summarizer generates short article summaries through a configurable
// text-generation backend. Backend faults are converted into failed Summary
// values and never propagate to the caller.
type Summarizer struct {
	provider Provider
	model    string
	generate GenerateFunc
	logger   *slog.Logger
}

// New builds a Summarizer for the configured provider. The dispatch table is
// constructed once here; Summarize only ever sees the generate function.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Summarizer, error) {
	provider := Provider(strings.ToLower(cfg.Provider))

	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	generate, err := newGenerator(ctx, provider, cfg.APIKey, model)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		provider: provider,
		model:    model,
		generate: generate,
		logger:   logger,
	}, nil
}

// NewWithGenerator builds a Summarizer around an explicit generate function.
// Intended for tests and custom backends.
func NewWithGenerator(generate GenerateFunc, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		provider: "custom",
		generate: generate,
		logger:   logger,
	}
}

// Summarize produces a 30-40 word summary of the article content. A word
// count outside the acceptable range is logged as a warning but the summary
// is still returned as successful.
func (s *Summarizer) Summarize(ctx context.Context, content string, maxWords int) models.Summary {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	prompt := buildPrompt(content, maxWords)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		message := fmt.Sprintf("AI summarization failed: %v", err)
		s.logger.Error("summarization failed", "provider", s.provider, "error", err)
		return models.Summary{
			Success:      false,
			ErrorMessage: message,
		}
	}

	text = strings.TrimSpace(text)
	wordCount := len(strings.Fields(text))

	if wordCount < minSummaryWords || wordCount > maxWords {
		s.logger.Warn("summary word count outside acceptable range",
			"words", wordCount,
			"min", minSummaryWords,
			"max", maxWords,
		)
	}

	s.logger.Info("generated summary", "provider", s.provider, "words", wordCount)
	return models.Summary{
		Text:      text,
		WordCount: wordCount,
		Success:   true,
	}
}

// buildPrompt truncates over-long content and wraps it in the summarization
// instruction. The cut lands on a rune boundary so the prompt stays valid
// UTF-8.
func buildPrompt(content string, maxWords int) string {
	if len(content) > maxContentLength {
		cut := maxContentLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "..."
	}

	return fmt.Sprintf(`Summarize the following news article in exactly %d-%d words.
Focus on key facts and main points. Use either a short paragraph or bullet points.

Article:
%s

Summary:`, minSummaryWords, maxWords, content)
}
