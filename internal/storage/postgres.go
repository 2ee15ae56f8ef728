package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

// PostgresConfig holds database connection configuration.
type PostgresConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration
}

// DefaultPostgresConfig returns sensible defaults for database configuration.
func DefaultPostgresConfig(url string) PostgresConfig {
	return PostgresConfig{
		URL:                url,
		MaxConnections:     20,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    5 * time.Minute,
		ConnectTimeout:     10 * time.Second,
	}
}

// PostgresStore implements Store on PostgreSQL: one articles row per URL and
// one article_entities row per (article, entity) pair.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore connects to PostgreSQL, configures the connection pool and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			published_date TIMESTAMPTZ NOT NULL,
			source TEXT NOT NULL,
			summary TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS article_entities (
			id SERIAL PRIMARY KEY,
			article_id INTEGER NOT NULL REFERENCES articles(id),
			entity TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Save writes one article and its entity tags inside a single transaction.
// An existing URL is a no-op success; any database fault rolls back, is
// logged and returns false.
func (s *PostgresStore) Save(ctx context.Context, article models.ProcessedArticle) bool {
	if err := article.Validate(); err != nil {
		s.logger.Error("article validation failed", "url", article.URL, "error", err)
		return false
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", "error", err)
		return false
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)", article.URL,
	).Scan(&exists)
	if err != nil {
		s.logger.Error("failed to check for existing article", "url", article.URL, "error", err)
		return false
	}

	if exists {
		s.logger.Info("article already exists in database", "url", article.URL)
		return true
	}

	var articleID int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO articles (title, url, published_date, source, summary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		article.Title,
		article.URL,
		article.PublishedAt,
		article.Source,
		article.Summary,
		article.CreatedAt,
	).Scan(&articleID)
	if err != nil {
		s.logger.Error("failed to insert article", "url", article.URL, "error", err)
		return false
	}

	for _, entity := range article.EntityTags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO article_entities (article_id, entity) VALUES ($1, $2)",
			articleID, entity,
		); err != nil {
			s.logger.Error("failed to insert entity tag", "url", article.URL, "entity", entity, "error", err)
			return false
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit article", "url", article.URL, "error", err)
		return false
	}

	s.logger.Info("saved article to database", "title", article.Title)
	return true
}

// List retrieves stored articles matching the filters. Faults are logged and
// produce an empty result.
func (s *PostgresStore) List(ctx context.Context, filters *models.ArticleFilters) []models.ProcessedArticle {
	builder := sq.Select("a.id", "a.title", "a.url", "a.published_date", "a.source", "a.summary", "a.created_at").
		From("articles a").
		OrderBy("a.published_date DESC").
		PlaceholderFormat(sq.Dollar)

	if filters != nil {
		if len(filters.Entities) > 0 {
			builder = builder.
				Distinct().
				Join("article_entities e ON e.article_id = a.id").
				Where(sq.Eq{"e.entity": filters.Entities})
		}
		if filters.StartDate != nil {
			builder = builder.Where(sq.GtOrEq{"a.published_date": *filters.StartDate})
		}
		if filters.EndDate != nil {
			builder = builder.Where(sq.LtOrEq{"a.published_date": *filters.EndDate})
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		s.logger.Error("failed to build query", "error", err)
		return nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query articles", "error", err)
		return nil
	}
	defer rows.Close()

	var result []models.ProcessedArticle

	for rows.Next() {
		var id int
		var article models.ProcessedArticle

		if err := rows.Scan(&id, &article.Title, &article.URL, &article.PublishedAt,
			&article.Source, &article.Summary, &article.CreatedAt); err != nil {
			s.logger.Error("failed to scan article row", "error", err)
			return nil
		}

		tags, err := s.loadEntityTags(ctx, id)
		if err != nil {
			s.logger.Error("failed to load entity tags", "url", article.URL, "error", err)
			return nil
		}
		article.EntityTags = tags

		result = append(result, article)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("article row iteration failed", "error", err)
		return nil
	}

	return result
}

func (s *PostgresStore) loadEntityTags(ctx context.Context, articleID int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entity FROM article_entities WHERE article_id = $1 ORDER BY id", articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, err
		}
		tags = append(tags, entity)
	}

	return tags, rows.Err()
}
