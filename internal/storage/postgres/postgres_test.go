package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/storagetest"
)

// The suite runs against a real database when TEST_DATABASE_DSN is set.
func TestStorage(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.URLStorage {
		s, err := NewStorage(context.Background(), dsn)
		require.NoError(t, err)

		_, err = s.pool.Exec(context.Background(), "TRUNCATE urls")
		require.NoError(t, err)

		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestNewStorage_EmptyDSN(t *testing.T) {
	_, err := NewStorage(context.Background(), "")
	assert.EqualError(t, err, "database connection string is empty")
}
