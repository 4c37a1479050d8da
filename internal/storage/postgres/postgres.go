package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

// Storage implements storage.URLStorage on PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	s := &Storage{
		pool: pool,
	}

	if err := s.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) createTable(ctx context.Context) error {
	createTableQuery := `
		CREATE TABLE IF NOT EXISTS urls (
			short_code VARCHAR(32) PRIMARY KEY,
			original_url TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMP WITH TIME ZONE
		);
	`

	if _, err := s.pool.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("error creating urls table: %w", err)
	}

	// Duplicate detection looks links up by their original URL.
	createIndexQuery := `
		CREATE INDEX IF NOT EXISTS idx_urls_original_url ON urls(original_url);
	`

	if _, err := s.pool.Exec(ctx, createIndexQuery); err != nil {
		return fmt.Errorf("error creating original_url index: %w", err)
	}

	return nil
}

func (s *Storage) Save(ctx context.Context, url model.URL) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO urls (short_code, original_url, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		url.Code, url.OriginalURL, url.CreatedAt, url.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return storage.ErrCodeExists
		}
		return fmt.Errorf("error inserting URL into database: %w", err)
	}

	return nil
}

func (s *Storage) Get(ctx context.Context, code string) (model.URL, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT short_code, original_url, created_at, expires_at FROM urls WHERE short_code = $1",
		code,
	)

	return scanURL(row)
}

func (s *Storage) FindByOriginalURL(ctx context.Context, originalURL string, now time.Time) (model.URL, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT short_code, original_url, created_at, expires_at
		FROM urls
		WHERE original_url = $1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1`,
		originalURL, now,
	)

	return scanURL(row)
}

func (s *Storage) Delete(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM urls WHERE short_code = ANY($1)", codes); err != nil {
		return fmt.Errorf("error deleting URLs: %w", err)
	}

	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func scanURL(row pgx.Row) (model.URL, error) {
	var url model.URL
	if err := row.Scan(&url.Code, &url.OriginalURL, &url.CreatedAt, &url.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.URL{}, storage.ErrNotFound
		}
		return model.URL{}, fmt.Errorf("error querying database: %w", err)
	}
	return url, nil
}
