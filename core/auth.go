package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Message is a Sign-In with Ethereum (EIP-4361) authentication message.
// The client fills it, signs its prepared form with personal_sign and
// submits both halves to the login endpoint.
type Message struct {
	Domain         string     `json:"domain" binding:"required"`
	Address        string     `json:"address" binding:"required"`
	Statement      string     `json:"statement,omitempty"`
	URI            string     `json:"uri" binding:"required"`
	Version        string     `json:"version" binding:"required"`
	ChainID        int64      `json:"chainId" binding:"required"`
	Nonce          string     `json:"nonce" binding:"required"`
	IssuedAt       time.Time  `json:"issuedAt" binding:"required"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
}

// Prepare renders the canonical EIP-4361 text the wallet signs.
func (m *Message) Prepare() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", m.Domain)
	fmt.Fprintf(&b, "%s\n", m.Address)
	b.WriteString("\n")
	if m.Statement != "" {
		fmt.Fprintf(&b, "%s\n", m.Statement)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "URI: %s\n", m.URI)
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", m.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", m.IssuedAt.UTC().Format(time.RFC3339))
	if m.ExpirationTime != nil {
		fmt.Fprintf(&b, "\nExpiration Time: %s", m.ExpirationTime.UTC().Format(time.RFC3339))
	}

	return b.String()
}

// Validate checks the message for syntactic validity. Semantic checks
// (domain ownership, nonce freshness, signature) belong to the verifier.
func (m *Message) Validate() error {
	if m.Domain == "" || m.Nonce == "" || m.URI == "" {
		return ErrInvalidMessage
	}
	if m.Version != "1" {
		return ErrInvalidMessage
	}
	if !common.IsHexAddress(m.Address) {
		return ErrInvalidAddress
	}
	if m.IssuedAt.IsZero() {
		return ErrInvalidMessage
	}
	return nil
}

// Session represents an authenticated user session bound to one
// verified address. The address never changes for the session's
// lifetime; an address change on the client side means a new session.
type Session struct {
	ID        string    // Unique session identifier
	Address   string    // Verified Ethereum address of the user
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}
