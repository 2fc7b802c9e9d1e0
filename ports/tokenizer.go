package ports

import "github.com/layer-3/keygate/core"

// Tokenizer converts between sessions and their wire tokens.
type Tokenizer interface {
	// SessionToToken encodes a session as a signed, tamper-evident token.
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession verifies a token's signature and expiry and returns
	// the session it carries. Fails with core.ErrSessionExpired or
	// core.ErrSessionInvalid.
	TokenToSession(token string) (*core.Session, error)
}
