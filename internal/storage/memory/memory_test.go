package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.URLStorage {
		return NewStorage()
	})
}

func TestStorage_DeleteCleansOriginalIndex(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Save(ctx, model.URL{Code: "a", OriginalURL: "https://example.com", CreatedAt: now}))
	require.NoError(t, s.Save(ctx, model.URL{Code: "b", OriginalURL: "https://example.com", CreatedAt: now}))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Delete(ctx, []string{"b"}))

	got, err := s.FindByOriginalURL(ctx, "https://example.com", now)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Code)

	require.NoError(t, s.Delete(ctx, []string{"a"}))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.byOriginal)
}
