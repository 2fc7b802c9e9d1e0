package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/ports"
)

// MemoryStore is an in-memory implementation of the store ports.
// It is primarily intended for tests and single-instance development.
type MemoryStore struct {
	nonceTTL time.Duration

	mu     sync.Mutex
	nonces map[string]time.Time
	keys   map[string]*core.APIKey
	docs   map[string]map[string]map[string]any
}

// NewMemoryStore creates a new in-memory store with the given nonce TTL.
func NewMemoryStore(nonceTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		nonceTTL: nonceTTL,
		nonces:   make(map[string]time.Time),
		keys:     make(map[string]*core.APIKey),
		docs:     make(map[string]map[string]map[string]any),
	}
}

var _ ports.NonceStore = (*MemoryStore)(nil)
var _ ports.KeyStore = (*MemoryStore)(nil)
var _ ports.RecordStore = (*MemoryStore)(nil)

// Issue generates a fresh 128-bit nonce and stores it with the
// configured TTL.
func (s *MemoryStore) Issue(ctx context.Context) (string, error) {
	value, err := generateNonce()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[value] = time.Now().Add(s.nonceTTL)

	return value, nil
}

// Redeem consumes a nonce. The check-and-delete happens under one lock
// acquisition, so concurrent redeemers of the same value resolve to
// exactly one winner.
func (s *MemoryStore) Redeem(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.nonces[value]
	if !ok {
		return core.ErrNonceUnknown
	}
	delete(s.nonces, value)

	if time.Now().After(expiresAt) {
		return core.ErrNonceExpired
	}
	return nil
}

// Put writes a key record keyed by its value.
func (s *MemoryStore) Put(ctx context.Context, key *core.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *key
	s.keys[key.Value] = &cp
	return nil
}

// Get loads a key record by value.
func (s *MemoryStore) Get(ctx context.Context, value string) (*core.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[value]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	cp := *key
	return &cp, nil
}

// ListByOwner returns the owner's keys, newest first.
func (s *MemoryStore) ListByOwner(ctx context.Context, owner string) ([]*core.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []*core.APIKey
	for _, key := range s.keys {
		if strings.EqualFold(key.Owner, owner) {
			cp := *key
			keys = append(keys, &cp)
		}
	}
	sortKeysNewestFirst(keys)

	return keys, nil
}

// Delete removes a key record by value.
func (s *MemoryStore) Delete(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, value)
	return nil
}

// Document loads a single seeded document.
func (s *MemoryStore) Document(ctx context.Context, collection, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	return doc, nil
}

// Collection loads every document in a collection, ordered by id.
func (s *MemoryStore) Collection(ctx context.Context, collection string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.docs[collection][id])
	}
	return docs, nil
}

// SeedDocument stores a document for the records surface. Used by tests
// and development setups.
func (s *MemoryStore) SeedDocument(collection, id string, doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]map[string]any)
	}
	s.docs[collection][id] = doc
}

// sortKeysNewestFirst orders keys by CreatedAt descending, ties broken
// by key value so the order is stable within one query.
func sortKeysNewestFirst(keys []*core.APIKey) {
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].CreatedAt.After(keys[j].CreatedAt)
		}
		return keys[i].Value < keys[j].Value
	})
}

// generateNonce generates a 128-bit random hex nonce.
func generateNonce() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
