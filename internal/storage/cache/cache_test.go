package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/memory"
	"github.com/MikhailRaia/shortlink/internal/storage/storagetest"
)

// An unreachable Redis must leave the decorated storage fully usable.
func TestStorage_UnreachableRedis(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.URLStorage {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		t.Cleanup(func() { _ = client.Close() })

		return NewStorage(memory.NewStorage(), client)
	})
}
