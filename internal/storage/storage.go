package storage

import (
	"context"
	"errors"
	"time"

	"github.com/MikhailRaia/shortlink/internal/model"
)

var (
	// ErrNotFound is returned when no link exists for a code or URL.
	ErrNotFound = errors.New("link not found")
	// ErrCodeExists is returned by Save when the code is already stored.
	ErrCodeExists = errors.New("short code already exists")
)

// URLStorage persists short links.
type URLStorage interface {
	// Save stores a new link. It returns ErrCodeExists if the code is taken.
	Save(ctx context.Context, url model.URL) error
	// Get returns the link stored under code, expired or not.
	Get(ctx context.Context, code string) (model.URL, error)
	// FindByOriginalURL returns the newest link for originalURL that is
	// still live at now.
	FindByOriginalURL(ctx context.Context, originalURL string, now time.Time) (model.URL, error)
	// Delete removes the given codes. Unknown codes are ignored.
	Delete(ctx context.Context, codes []string) error
	Ping(ctx context.Context) error
	Close() error
}
