// Package storagetest holds behaviour tests shared by every storage.URLStorage
// implementation.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

// Run exercises a fresh storage returned by newStorage for each subtest.
func Run(t *testing.T, newStorage func(t *testing.T) storage.URLStorage) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Save and Get", func(t *testing.T) {
		s := newStorage(t)

		expires := now.Add(24 * time.Hour)
		url := model.URL{Code: "abc123", OriginalURL: "https://example.com", CreatedAt: now, ExpiresAt: &expires}
		require.NoError(t, s.Save(ctx, url))

		got, err := s.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", got.Code)
		assert.Equal(t, "https://example.com", got.OriginalURL)
		assert.True(t, got.CreatedAt.Equal(now))
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, got.ExpiresAt.Equal(expires))
	})

	t.Run("Get unknown code", func(t *testing.T) {
		s := newStorage(t)

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Save duplicate code", func(t *testing.T) {
		s := newStorage(t)

		require.NoError(t, s.Save(ctx, model.URL{Code: "dup", OriginalURL: "https://a.example", CreatedAt: now}))
		err := s.Save(ctx, model.URL{Code: "dup", OriginalURL: "https://b.example", CreatedAt: now})
		assert.ErrorIs(t, err, storage.ErrCodeExists)

		got, err := s.Get(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, "https://a.example", got.OriginalURL)
	})

	t.Run("FindByOriginalURL skips expired links", func(t *testing.T) {
		s := newStorage(t)

		past := now.Add(-time.Hour)
		require.NoError(t, s.Save(ctx, model.URL{Code: "old", OriginalURL: "https://example.com", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: &past}))

		_, err := s.FindByOriginalURL(ctx, "https://example.com", now)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, s.Save(ctx, model.URL{Code: "live", OriginalURL: "https://example.com", CreatedAt: now}))

		got, err := s.FindByOriginalURL(ctx, "https://example.com", now)
		require.NoError(t, err)
		assert.Equal(t, "live", got.Code)
	})

	t.Run("FindByOriginalURL unknown URL", func(t *testing.T) {
		s := newStorage(t)

		_, err := s.FindByOriginalURL(ctx, "https://nowhere.example", now)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStorage(t)

		require.NoError(t, s.Save(ctx, model.URL{Code: "one", OriginalURL: "https://one.example", CreatedAt: now}))
		require.NoError(t, s.Save(ctx, model.URL{Code: "two", OriginalURL: "https://two.example", CreatedAt: now}))

		require.NoError(t, s.Delete(ctx, []string{"one", "unknown"}))

		_, err := s.Get(ctx, "one")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.FindByOriginalURL(ctx, "https://one.example", now)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.Get(ctx, "two")
		assert.NoError(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStorage(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
