package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

const (
	keyPrefix  = "link:"
	defaultTTL = time.Hour
)

// Storage is a read-through Redis cache in front of another URLStorage.
// Cache failures are logged and never fail the underlying operation.
type Storage struct {
	next  storage.URLStorage
	redis *redis.Client
	ttl   time.Duration
}

// NewStorage wraps next with a cache backed by client.
func NewStorage(next storage.URLStorage, client *redis.Client) *Storage {
	return &Storage{
		next:  next,
		redis: client,
		ttl:   defaultTTL,
	}
}

func (s *Storage) Save(ctx context.Context, url model.URL) error {
	if err := s.next.Save(ctx, url); err != nil {
		return err
	}

	s.set(ctx, url)
	return nil
}

func (s *Storage) Get(ctx context.Context, code string) (model.URL, error) {
	val, err := s.redis.Get(ctx, keyPrefix+code).Bytes()
	if err == nil {
		var url model.URL
		if err := json.Unmarshal(val, &url); err == nil {
			return url, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("code", code).Msg("Cache read failed")
	}

	url, err := s.next.Get(ctx, code)
	if err != nil {
		return model.URL{}, err
	}

	s.set(ctx, url)
	return url, nil
}

func (s *Storage) FindByOriginalURL(ctx context.Context, originalURL string, now time.Time) (model.URL, error) {
	return s.next.FindByOriginalURL(ctx, originalURL, now)
}

func (s *Storage) Delete(ctx context.Context, codes []string) error {
	if err := s.next.Delete(ctx, codes); err != nil {
		return err
	}

	if len(codes) == 0 {
		return nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = keyPrefix + code
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Int("count", len(keys)).Msg("Cache invalidation failed")
	}

	return nil
}

// Ping reports the health of the underlying storage only.
func (s *Storage) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Storage) Close() error {
	redisErr := s.redis.Close()
	if err := s.next.Close(); err != nil {
		return err
	}
	return redisErr
}

func (s *Storage) set(ctx context.Context, url model.URL) {
	ttl := s.ttl
	if url.ExpiresAt != nil {
		if left := time.Until(*url.ExpiresAt); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(url)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, keyPrefix+url.Code, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("code", url.Code).Msg("Cache write failed")
	}
}

var _ storage.URLStorage = (*Storage)(nil)
