package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/ports"
)

const (
	// defaultOpTimeout bounds every outbound Redis call so a stalled
	// backend surfaces as core.ErrStoreUnavailable instead of hanging
	// the request.
	defaultOpTimeout = 3 * time.Second

	// nonceGrace keeps redeemed-too-late nonces around briefly so they
	// can be reported as expired rather than unknown.
	nonceGrace = time.Minute
)

// RedisStore is a Redis implementation of the store ports. All keys
// live under an environment-derived partition prefix, so two
// deployments sharing one Redis never see each other's data.
type RedisStore struct {
	client    *redis.Client
	partition string
	nonceTTL  time.Duration
	opTimeout time.Duration
}

// NewRedisStore creates a new Redis store scoped to the given partition.
func NewRedisStore(client *redis.Client, partition string, nonceTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		partition: partition,
		nonceTTL:  nonceTTL,
		opTimeout: defaultOpTimeout,
	}
}

var _ ports.NonceStore = (*RedisStore)(nil)
var _ ports.KeyStore = (*RedisStore)(nil)
var _ ports.RecordStore = (*RedisStore)(nil)

func (s *RedisStore) nonceKey(value string) string {
	return s.partition + ":nonce:" + value
}

func (s *RedisStore) keysHash() string {
	return s.partition
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStoreUnavailable, op, err)
}

// Issue generates a fresh 128-bit nonce and stores it with the
// configured TTL. The stored value is the expiry timestamp, checked
// again on redemption.
func (s *RedisStore) Issue(ctx context.Context) (string, error) {
	value, err := generateNonce()
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	expiresAt := time.Now().Add(s.nonceTTL)
	err = s.client.Set(ctx, s.nonceKey(value), expiresAt.Format(time.RFC3339Nano), s.nonceTTL+nonceGrace).Err()
	if err != nil {
		return "", storeErr("issue nonce", err)
	}

	return value, nil
}

// Redeem consumes a nonce with a single GETDEL, so concurrent
// redeemers of the same value resolve to exactly one winner.
func (s *RedisStore) Redeem(ctx context.Context, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stored, err := s.client.GetDel(ctx, s.nonceKey(value)).Result()
	if errors.Is(err, redis.Nil) {
		return core.ErrNonceUnknown
	}
	if err != nil {
		return storeErr("redeem nonce", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, stored)
	if err != nil || time.Now().After(expiresAt) {
		return core.ErrNonceExpired
	}
	return nil
}

// Put writes a key record into the partition hash, keyed by the key
// value itself.
func (s *RedisStore) Put(ctx context.Context, key *core.APIKey) error {
	payload, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key record: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, s.keysHash(), key.Value, payload).Err(); err != nil {
		return storeErr("put key", err)
	}
	return nil
}

// Get loads a key record by value.
func (s *RedisStore) Get(ctx context.Context, value string) (*core.APIKey, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	payload, err := s.client.HGet(ctx, s.keysHash(), value).Result()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, storeErr("get key", err)
	}

	var key core.APIKey
	if err := json.Unmarshal([]byte(payload), &key); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key record: %w", err)
	}
	return &key, nil
}

// ListByOwner returns the owner's keys, newest first.
func (s *RedisStore) ListByOwner(ctx context.Context, owner string) ([]*core.APIKey, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	records, err := s.client.HGetAll(ctx, s.keysHash()).Result()
	if err != nil {
		return nil, storeErr("list keys", err)
	}

	var keys []*core.APIKey
	for _, payload := range records {
		var key core.APIKey
		if err := json.Unmarshal([]byte(payload), &key); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key record: %w", err)
		}
		if strings.EqualFold(key.Owner, owner) {
			keys = append(keys, &key)
		}
	}
	sortKeysNewestFirst(keys)

	return keys, nil
}

// Delete removes a key record by value.
func (s *RedisStore) Delete(ctx context.Context, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.HDel(ctx, s.keysHash(), value).Err(); err != nil {
		return storeErr("delete key", err)
	}
	return nil
}

// Document loads a single document from a collection hash.
func (s *RedisStore) Document(ctx context.Context, collection, id string) (map[string]any, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	payload, err := s.client.HGet(ctx, collection, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, storeErr("get document", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Collection loads every document in a collection hash. A missing
// collection reads as empty, matching an empty query result.
func (s *RedisStore) Collection(ctx context.Context, collection string) ([]map[string]any, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	records, err := s.client.HGetAll(ctx, collection).Result()
	if err != nil {
		return nil, storeErr("list documents", err)
	}

	docs := make([]map[string]any, 0, len(records))
	for _, payload := range records {
		var doc map[string]any
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
