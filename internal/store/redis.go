package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/parley-protocol/parley/internal/metrics"
	"github.com/parley-protocol/parley/internal/models"
)

const (
	historyTTL = 24 * time.Hour
	sessionTTL = 24 * time.Hour

	historyKey = "messages:history"
)

// RedisStore handles Redis operations for message history and bot session
// state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for middleware (rate limiting).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// sessionNameKey returns the key for a session's display name.
func sessionNameKey(session string) string {
	return fmt.Sprintf("session:%s:name", session)
}

// AddEnvelope stores a verified envelope in the history sorted set.
func (s *RedisStore) AddEnvelope(ctx context.Context, env *models.Envelope) error {
	// Generate ULID if not set
	if env.ID == "" {
		env.ID = ulid.Make().String()
	}

	// Set timestamp if not set
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() { metrics.RedisLatency.Observe(time.Since(start).Seconds()) }()

	err = s.client.ZAdd(ctx, historyKey, redis.Z{
		Score:  float64(env.Timestamp),
		Member: string(data),
	}).Err()
	if err != nil {
		return err
	}

	s.client.Expire(ctx, historyKey, historyTTL)

	return nil
}

// RecentEnvelopes retrieves history newest-first, optionally before a
// timestamp for pagination.
func (s *RedisStore) RecentEnvelopes(ctx context.Context, limit int, before int64) ([]models.Envelope, error) {
	var maxScore string
	if before > 0 {
		maxScore = fmt.Sprintf("(%d", before) // exclusive
	} else {
		maxScore = "+inf"
	}

	start := time.Now()
	defer func() { metrics.RedisLatency.Observe(time.Since(start).Seconds()) }()

	raw, err := s.client.ZRevRangeByScore(ctx, historyKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   maxScore,
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	envelopes := make([]models.Envelope, 0, len(raw))
	for _, member := range raw {
		var env models.Envelope
		if err := json.Unmarshal([]byte(member), &env); err != nil {
			continue // skip corrupt entries
		}
		envelopes = append(envelopes, env)
	}

	return envelopes, nil
}

// SessionName returns the display name stored for a session, or "" when the
// session has never set one.
func (s *RedisStore) SessionName(ctx context.Context, session string) (string, error) {
	name, err := s.client.Get(ctx, sessionNameKey(session)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// SetSessionName stores a session's display name.
func (s *RedisStore) SetSessionName(ctx context.Context, session, name string) error {
	return s.client.Set(ctx, sessionNameKey(session), name, sessionTTL).Err()
}

// TouchSession refreshes the session TTL on interaction.
func (s *RedisStore) TouchSession(ctx context.Context, session string) error {
	return s.client.Expire(ctx, sessionNameKey(session), sessionTTL).Err()
}
