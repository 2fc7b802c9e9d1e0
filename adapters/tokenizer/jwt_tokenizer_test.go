package tokenizer_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/keygate/adapters/tokenizer"
	"github.com/layer-3/keygate/core"
)

func newSignKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func testSession(ttl time.Duration) *core.Session {
	now := time.Now()
	return &core.Session{
		ID:        "session-1",
		Address:   "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(newSignKey(t))

	session := testSession(time.Hour)
	token, err := tk.SessionToToken(session)
	require.NoError(t, err)

	got, err := tk.TokenToSession(token)
	require.NoError(t, err)
	assert.Equal(t, session.Address, got.Address)
	assert.Equal(t, session.ID, got.ID)
	assert.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestExpiredSession(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(newSignKey(t))

	token, err := tk.SessionToToken(testSession(-time.Minute))
	require.NoError(t, err)

	_, err = tk.TokenToSession(token)
	assert.ErrorIs(t, err, core.ErrSessionExpired)
}

func TestGarbageToken(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(newSignKey(t))

	_, err := tk.TokenToSession("not-a-jwt")
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestTokenFromDifferentKey(t *testing.T) {
	token, err := tokenizer.NewJWTTokenizer(newSignKey(t)).SessionToToken(testSession(time.Hour))
	require.NoError(t, err)

	_, err = tokenizer.NewJWTTokenizer(newSignKey(t)).TokenToSession(token)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestTamperedToken(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(newSignKey(t))

	token, err := tk.SessionToToken(testSession(time.Hour))
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = tk.TokenToSession(tampered)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}
