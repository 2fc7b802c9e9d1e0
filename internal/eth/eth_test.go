package eth_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/keygate/internal/eth"
)

func TestRecoverAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	msg := []byte("hello keygate")
	sig, err := crypto.Sign(eth.PersonalSignHash(msg), key)
	require.NoError(t, err)

	recovered, err := eth.RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, address, recovered)
}

func TestRecoverAddressWalletRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	msg := []byte("hello keygate")
	sig, err := crypto.Sign(eth.PersonalSignHash(msg), key)
	require.NoError(t, err)

	// Wallets report the recovery id as 27/28.
	sig[64] += 27

	recovered, err := eth.RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, address, recovered)
}

func TestRecoverAddressTamperedMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	sig, err := crypto.Sign(eth.PersonalSignHash([]byte("original")), key)
	require.NoError(t, err)

	recovered, err := eth.RecoverAddress([]byte("tampered"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, address, recovered)
}

func TestRecoverAddressBadLength(t *testing.T) {
	_, err := eth.RecoverAddress([]byte("msg"), []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestVerifySignatureAgainstAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	msg := []byte("prove it")
	sig, err := crypto.Sign(eth.PersonalSignHash(msg), key)
	require.NoError(t, err)

	ok, err := eth.VerifySignatureAgainstAddress(msg, sig, crypto.PubkeyToAddress(key.PublicKey))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eth.VerifySignatureAgainstAddress(msg, sig, crypto.PubkeyToAddress(otherKey.PublicKey))
	require.NoError(t, err)
	assert.False(t, ok)
}
