package ports

import (
	"context"

	"github.com/layer-3/keygate/core"
)

// NonceStore issues and redeems single-use authentication nonces.
type NonceStore interface {
	// Issue generates and persists a fresh nonce and returns its value.
	Issue(ctx context.Context) (string, error)

	// Redeem atomically consumes a nonce. Exactly one concurrent caller
	// may succeed for a given value; all others observe
	// core.ErrNonceUnknown. Expired nonces fail with core.ErrNonceExpired.
	Redeem(ctx context.Context, value string) error
}

// KeyStore persists API key records inside one environment partition.
type KeyStore interface {
	// Put writes a key record keyed by its value.
	Put(ctx context.Context, key *core.APIKey) error

	// Get loads a key record by value, core.ErrKeyNotFound if absent.
	Get(ctx context.Context, value string) (*core.APIKey, error)

	// ListByOwner returns the owner's keys ordered by CreatedAt
	// descending, ties broken by key value so the order is stable.
	ListByOwner(ctx context.Context, owner string) ([]*core.APIKey, error)

	// Delete removes a key record by value.
	Delete(ctx context.Context, value string) error
}

// RecordStore reads raw documents for the generic records surface.
type RecordStore interface {
	// Document loads a single document by id,
	// core.ErrRecordNotFound if absent.
	Document(ctx context.Context, collection, id string) (map[string]any, error)

	// Collection loads every document in a collection.
	Collection(ctx context.Context, collection string) ([]map[string]any, error)
}
