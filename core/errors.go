package core

import "errors"

var (
	// Authentication message verification
	ErrInvalidMessage    = errors.New("invalid authentication message")
	ErrInvalidAddress    = errors.New("invalid ethereum address")
	ErrDomainMismatch    = errors.New("message domain does not match service domain")
	ErrMessageExpired    = errors.New("authentication message has expired")
	ErrInvalidNonce      = errors.New("invalid nonce")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrSignatureMismatch = errors.New("signature does not match claimed address")

	// Nonce lifecycle
	ErrNonceExpired = errors.New("nonce has expired")
	ErrNonceUnknown = errors.New("nonce is unknown or already consumed")

	// Session lifecycle
	ErrSessionInvalid = errors.New("session is invalid")
	ErrSessionExpired = errors.New("session has expired")

	// Key lifecycle
	ErrKeyNotFound  = errors.New("key not found")
	ErrKeyForbidden = errors.New("key belongs to another owner")

	// Records
	ErrRecordNotFound = errors.New("record not found")

	// Backend
	ErrStoreUnavailable = errors.New("store unavailable")
)
