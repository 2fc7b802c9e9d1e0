package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/keygate/adapters/store"
	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/service"
)

const (
	ownerA = "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	ownerB = "0xBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBb"
)

func newKeys(t *testing.T) (*service.KeyService, *store.MemoryStore) {
	t.Helper()
	memory := store.NewMemoryStore(time.Minute)
	return service.NewKeyService(memory, nil), memory
}

func TestCreateAndList(t *testing.T) {
	keys, _ := newKeys(t)
	ctx := context.Background()

	key, err := keys.Create(ctx, ownerA)
	require.NoError(t, err)
	assert.Len(t, key.Value, 32) // 128 bits, hex-encoded
	assert.Equal(t, ownerA, key.Owner)
	assert.False(t, key.CreatedAt.IsZero())

	listed, err := keys.List(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, key.Value, listed[0].Value)
}

func TestCreateTwiceDistinctValues(t *testing.T) {
	keys, _ := newKeys(t)
	ctx := context.Background()

	first, err := keys.Create(ctx, ownerA)
	require.NoError(t, err)
	second, err := keys.Create(ctx, ownerA)
	require.NoError(t, err)
	assert.NotEqual(t, first.Value, second.Value)

	listed, err := keys.List(ctx, ownerA)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestOwnerIsolation(t *testing.T) {
	keys, memory := newKeys(t)
	ctx := context.Background()

	key, err := keys.Create(ctx, ownerA)
	require.NoError(t, err)

	listed, err := keys.List(ctx, ownerB)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// B cannot delete A's key, and the record stays untouched.
	err = keys.Delete(ctx, ownerB, key.Value)
	assert.ErrorIs(t, err, core.ErrKeyForbidden)

	stored, err := memory.Get(ctx, key.Value)
	require.NoError(t, err)
	assert.Equal(t, ownerA, stored.Owner)
}

func TestDeleteTwice(t *testing.T) {
	keys, _ := newKeys(t)
	ctx := context.Background()

	key, err := keys.Create(ctx, ownerA)
	require.NoError(t, err)

	require.NoError(t, keys.Delete(ctx, ownerA, key.Value))
	assert.ErrorIs(t, keys.Delete(ctx, ownerA, key.Value), core.ErrKeyNotFound)
}

func TestDeleteUnknownKey(t *testing.T) {
	keys, _ := newKeys(t)

	err := keys.Delete(context.Background(), ownerA, "no-such-key")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestDeleteOwnerCaseInsensitive(t *testing.T) {
	keys, _ := newKeys(t)
	ctx := context.Background()

	key, err := keys.Create(ctx, ownerA)
	require.NoError(t, err)

	require.NoError(t, keys.Delete(ctx, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", key.Value))
}

func TestFingerprintStableAndOpaque(t *testing.T) {
	fp := service.Fingerprint("secret-key-value")
	assert.Equal(t, fp, service.Fingerprint("secret-key-value"))
	assert.NotContains(t, fp, "secret")
	assert.Len(t, fp, 16)
}
