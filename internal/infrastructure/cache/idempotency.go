package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempKeyPrefix = "idemp:pr:"
	// How long the "in-progress" marker lives if the handler never finishes.
	ProvisionalLockTTL = 60 * time.Second
)

var ErrNoEntry = errors.New("idempotency entry not found")

// IdempotencyEntry is what gets stored per Idempotency-Key.
type IdempotencyEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	Key        string    `json:"key"`
	CreatedAt  time.Time `json:"created_at"`
}

type IdempotencyStore struct{ rdb *redis.Client }

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

// Reserve writes e only if key is unused. false means someone got there first.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, e IdempotencyEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("encode idempotency entry: %w", err)
	}
	return s.rdb.SetNX(ctx, idempKeyPrefix+key, payload, ProvisionalLockTTL).Result()
}

func (s *IdempotencyStore) Load(ctx context.Context, key string) (IdempotencyEntry, error) {
	var e IdempotencyEntry
	v, err := s.rdb.Get(ctx, idempKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, ErrNoEntry
	}
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return e, nil
}

// Save overwrites key with the final response for ttl.
func (s *IdempotencyStore) Save(ctx context.Context, key string, e IdempotencyEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode idempotency entry: %w", err)
	}
	return s.rdb.Set(ctx, idempKeyPrefix+key, payload, ttl).Err()
}

// Release drops the key so the client can retry, e.g. after a 5xx.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempKeyPrefix+key).Err()
}
