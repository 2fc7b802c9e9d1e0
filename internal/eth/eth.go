// Package eth wraps the go-ethereum primitives used for personal_sign
// (EIP-191) signature verification.
package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the byte length of a secp256k1 signature with
// recovery id, as produced by eth_sign/personal_sign.
const SignatureLength = 65

// PersonalSignHash returns the EIP-191 hash of msg:
// keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg).
func PersonalSignHash(msg []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	return crypto.Keccak256(append([]byte(prefix), msg...))
}

// RecoverAddress recovers the address that produced a personal_sign
// signature over msg.
func RecoverAddress(msg []byte, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}

	// Wallets encode the recovery id as 27/28; go-ethereum expects 0/1.
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pubKey, err := crypto.SigToPub(PersonalSignHash(msg), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignatureAgainstAddress reports whether sig over msg was
// produced by the holder of expected.
func VerifySignatureAgainstAddress(msg []byte, sig []byte, expected common.Address) (bool, error) {
	recovered, err := RecoverAddress(msg, sig)
	if err != nil {
		return false, err
	}
	return recovered == expected, nil
}
