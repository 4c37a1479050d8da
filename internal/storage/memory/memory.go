package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

// Storage implements storage.URLStorage in process memory.
type Storage struct {
	urls       map[string]model.URL
	byOriginal map[string][]string
	mutex      sync.RWMutex
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		urls:       make(map[string]model.URL),
		byOriginal: make(map[string][]string),
	}
}

// Save stores a new link.
func (s *Storage) Save(_ context.Context, url model.URL) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.urls[url.Code]; exists {
		return storage.ErrCodeExists
	}

	s.urls[url.Code] = url
	s.byOriginal[url.OriginalURL] = append(s.byOriginal[url.OriginalURL], url.Code)
	return nil
}

// Get retrieves the link for a given short code.
func (s *Storage) Get(_ context.Context, code string) (model.URL, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	url, found := s.urls[code]
	if !found {
		return model.URL{}, storage.ErrNotFound
	}

	return url, nil
}

// FindByOriginalURL returns the most recently saved live link for originalURL.
func (s *Storage) FindByOriginalURL(_ context.Context, originalURL string, now time.Time) (model.URL, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	codes := s.byOriginal[originalURL]
	for i := len(codes) - 1; i >= 0; i-- {
		url := s.urls[codes[i]]
		if !url.Expired(now) {
			return url, nil
		}
	}

	return model.URL{}, storage.ErrNotFound
}

// Delete removes links by code.
func (s *Storage) Delete(_ context.Context, codes []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, code := range codes {
		url, found := s.urls[code]
		if !found {
			continue
		}
		delete(s.urls, code)
		s.byOriginal[url.OriginalURL] = removeCode(s.byOriginal[url.OriginalURL], code)
		if len(s.byOriginal[url.OriginalURL]) == 0 {
			delete(s.byOriginal, url.OriginalURL)
		}
	}

	return nil
}

// Ping always succeeds for the in-memory storage.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// Len returns the number of stored links.
func (s *Storage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.urls)
}

func removeCode(codes []string, code string) []string {
	out := codes[:0]
	for _, c := range codes {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}
