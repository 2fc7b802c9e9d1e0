package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/ports"
)

// keyValueBytes sizes generated key values at 128 bits. Uniqueness is
// probabilistic: creation never pre-checks for collision, the keyspace
// makes one negligible.
const keyValueBytes = 16

// KeyService manages the lifecycle of per-owner API keys. Every read
// and mutation checks record ownership against the caller's proven
// address before touching the record.
type KeyService struct {
	keys     ports.KeyStore
	eventPub ports.EventPublisher
}

// NewKeyService creates a new key lifecycle service.
func NewKeyService(keys ports.KeyStore, eventPub ports.EventPublisher) *KeyService {
	return &KeyService{keys: keys, eventPub: eventPub}
}

// Create generates a new high-entropy key owned by owner.
func (s *KeyService) Create(ctx context.Context, owner string) (*core.APIKey, error) {
	valueBytes := make([]byte, keyValueBytes)
	if _, err := rand.Read(valueBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key value: %w", err)
	}

	key := &core.APIKey{
		Value:     hex.EncodeToString(valueBytes),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.keys.Put(ctx, key); err != nil {
		return nil, err
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishKeyCreated(ctx, owner, Fingerprint(key.Value)); err != nil {
			slog.Warn("failed to publish key created event", "error", err)
		}
	}

	return key, nil
}

// List returns the owner's keys, newest first. Keys of other owners are
// never part of the result.
func (s *KeyService) List(ctx context.Context, owner string) ([]*core.APIKey, error) {
	return s.keys.ListByOwner(ctx, owner)
}

// Delete removes a key after re-checking ownership. A second delete of
// the same value reports core.ErrKeyNotFound, never silent success.
func (s *KeyService) Delete(ctx context.Context, owner, value string) error {
	key, err := s.keys.Get(ctx, value)
	if err != nil {
		return err
	}

	if !strings.EqualFold(key.Owner, owner) {
		return core.ErrKeyForbidden
	}

	if err := s.keys.Delete(ctx, value); err != nil {
		return err
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishKeyDeleted(ctx, owner, Fingerprint(value)); err != nil {
			slog.Warn("failed to publish key deleted event", "error", err)
		}
	}

	return nil
}

// Fingerprint returns a short non-reversible identifier for a key
// value, safe to log and publish.
func Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}

func isStoreErr(err error) bool {
	return errors.Is(err, core.ErrStoreUnavailable)
}
