package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

var csvHeader = []string{"Title", "URL", "Published Date", "Entities", "Summary", "Source", "Created At"}

// CSVStore implements Store as an append-only comma-delimited file. Entity
// tags are comma-joined within their field; dates are stored as ISO-8601.
type CSVStore struct {
	path   string
	logger *slog.Logger
}

// NewCSVStore creates the output file with a header row when it is missing or
// empty, creating parent directories as needed.
func NewCSVStore(path string, logger *slog.Logger) (*CSVStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		if err := writeHeader(path); err != nil {
			return nil, err
		}
		logger.Info("created CSV file with headers", "path", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat output file: %w", err)
	}

	return &CSVStore{path: path, logger: logger}, nil
}

func writeHeader(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Save appends one article row. An existing URL is a no-op success; I/O
// faults are logged and return false.
func (s *CSVStore) Save(ctx context.Context, article models.ProcessedArticle) bool {
	if err := article.Validate(); err != nil {
		s.logger.Error("article validation failed", "url", article.URL, "error", err)
		return false
	}

	for _, existing := range s.List(ctx, nil) {
		if existing.URL == article.URL {
			s.logger.Info("article already exists in CSV", "url", article.URL)
			return true
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Error("failed to open CSV for append", "path", s.path, "error", err)
		return false
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		article.Title,
		article.URL,
		article.PublishedAt.Format(time.RFC3339),
		strings.Join(article.EntityTags, ","),
		article.Summary,
		article.Source,
		article.CreatedAt.Format(time.RFC3339),
	}

	if err := w.Write(record); err != nil {
		s.logger.Error("failed to write CSV row", "url", article.URL, "error", err)
		return false
	}

	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("failed to flush CSV row", "url", article.URL, "error", err)
		return false
	}

	s.logger.Info("saved article to CSV", "title", article.Title)
	return true
}

// List performs a full linear scan of the file, skipping rows that fail to
// parse. Faults are logged and produce an empty result.
func (s *CSVStore) List(ctx context.Context, filters *models.ArticleFilters) []models.ProcessedArticle {
	f, err := os.Open(s.path)
	if err != nil {
		s.logger.Error("failed to open CSV", "path", s.path, "error", err)
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// Skip the header row.
	if _, err := reader.Read(); err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Error("failed to read CSV header", "path", s.path, "error", err)
		}
		return nil
	}

	var result []models.ProcessedArticle

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping unreadable CSV row", "error", err)
			continue
		}

		article, err := parseRecord(record)
		if err != nil {
			s.logger.Warn("skipping malformed CSV row", "error", err)
			continue
		}

		if matchesFilters(article, filters) {
			result = append(result, article)
		}
	}

	return result
}

func parseRecord(record []string) (models.ProcessedArticle, error) {
	if len(record) != len(csvHeader) {
		return models.ProcessedArticle{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(record))
	}

	published, err := time.Parse(time.RFC3339, record[2])
	if err != nil {
		return models.ProcessedArticle{}, fmt.Errorf("bad published date: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, record[6])
	if err != nil {
		return models.ProcessedArticle{}, fmt.Errorf("bad created-at date: %w", err)
	}

	var tags []string
	for _, entity := range strings.Split(record[3], ",") {
		if trimmed := strings.TrimSpace(entity); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return models.ProcessedArticle{
		Title:       record[0],
		URL:         record[1],
		PublishedAt: published,
		EntityTags:  tags,
		Summary:     record[4],
		Source:      record[5],
		CreatedAt:   createdAt,
	}, nil
}
