package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the registered claims of a session token. The
// subject is the verified address; nothing else is trusted from the
// client side.
type SessionClaims struct {
	jwt.RegisteredClaims
}
