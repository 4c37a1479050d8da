package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/memory"
)

// record is one line of the storage file. Deletions are appended as
// records with IsDeleted set.
type record struct {
	UUID        string     `json:"uuid"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted,omitempty"`
}

// Storage implements storage.URLStorage backed by an append-only JSONL file.
// The file is replayed into memory on start.
type Storage struct {
	filePath  string
	index     *memory.Storage
	idCounter int
	mu        sync.Mutex
}

// NewStorage creates a file-backed storage at the provided path.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		index:    memory.NewStorage(),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) Save(ctx context.Context, url model.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Save(ctx, url); err != nil {
		return err
	}

	if err := s.appendRecord(record{
		ShortCode:   url.Code,
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
		ExpiresAt:   url.ExpiresAt,
	}); err != nil {
		_ = s.index.Delete(ctx, []string{url.Code})
		return err
	}

	return nil
}

func (s *Storage) Get(ctx context.Context, code string) (model.URL, error) {
	return s.index.Get(ctx, code)
}

func (s *Storage) FindByOriginalURL(ctx context.Context, originalURL string, now time.Time) (model.URL, error) {
	return s.index.FindByOriginalURL(ctx, originalURL, now)
}

func (s *Storage) Delete(ctx context.Context, codes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range codes {
		url, err := s.index.Get(ctx, code)
		if err != nil {
			continue
		}

		if err := s.appendRecord(record{
			ShortCode:   code,
			OriginalURL: url.OriginalURL,
			CreatedAt:   url.CreatedAt,
			IsDeleted:   true,
		}); err != nil {
			return fmt.Errorf("failed to save deletion record: %w", err)
		}

		if err := s.index.Delete(ctx, []string{code}); err != nil {
			return err
		}
	}

	return nil
}

// Ping checks that the storage file is still reachable.
func (s *Storage) Ping(context.Context) error {
	_, err := os.Stat(s.filePath)
	return err
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) loadFromFile() error {
	file, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(file)
	maxID := 0

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		if rec.IsDeleted {
			if err := s.index.Delete(ctx, []string{rec.ShortCode}); err != nil {
				return err
			}
		} else if err := s.index.Save(ctx, model.URL{
			Code:        rec.ShortCode,
			OriginalURL: rec.OriginalURL,
			CreatedAt:   rec.CreatedAt,
			ExpiresAt:   rec.ExpiresAt,
		}); err != nil {
			return fmt.Errorf("failed to replay record %s: %w", rec.UUID, err)
		}

		if id, err := strconv.Atoi(rec.UUID); err == nil && id > maxID {
			maxID = id
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	s.idCounter = maxID
	return nil
}

// appendRecord must be called with s.mu held.
func (s *Storage) appendRecord(rec record) error {
	file, err := os.OpenFile(s.filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: %w", err)
	}
	defer file.Close()

	s.idCounter++
	rec.UUID = strconv.Itoa(s.idCounter)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

var _ storage.URLStorage = (*Storage)(nil)
