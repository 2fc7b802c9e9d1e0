package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/internal/eth"
	"github.com/layer-3/keygate/ports"
)

const (
	// DefaultSessionTTL bounds session exposure; there is no server-side
	// revocation list, expiry is the only limit.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultMessageMaxAge is how far in the past a message's Issued At
	// may lie before verification rejects it.
	DefaultMessageMaxAge = 10 * time.Minute

	// issuedAtSkew tolerates client clocks running slightly ahead.
	issuedAtSkew = 2 * time.Minute
)

// Credential is one of the two accepted proofs of identity. A request
// presents exactly one form; the guard never mixes strategies within a
// single resolution.
type Credential interface {
	credential()
}

// SessionCredential carries a previously issued session token.
type SessionCredential struct {
	Token string
}

// SignedMessageCredential carries a one-shot signed authentication
// message. Resolving it consumes the embedded nonce.
type SignedMessageCredential struct {
	Message   *core.Message
	Signature string
}

func (SessionCredential) credential()       {}
func (SignedMessageCredential) credential() {}

// AuthConfig carries the authentication parameters loaded at startup.
type AuthConfig struct {
	// Domain is the service's own domain; messages claiming any other
	// domain are rejected.
	Domain string

	SessionTTL    time.Duration
	MessageMaxAge time.Duration
}

// AuthService handles wallet authentication: nonce issuance, signed
// message verification and session issuance.
type AuthService struct {
	nonces    ports.NonceStore
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher

	domain        string
	sessionTTL    time.Duration
	messageMaxAge time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(nonces ports.NonceStore, tokenizer ports.Tokenizer, eventPub ports.EventPublisher, cfg AuthConfig) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MessageMaxAge <= 0 {
		cfg.MessageMaxAge = DefaultMessageMaxAge
	}

	return &AuthService{
		nonces:        nonces,
		tokenizer:     tokenizer,
		eventPub:      eventPub,
		domain:        cfg.Domain,
		sessionTTL:    cfg.SessionTTL,
		messageMaxAge: cfg.MessageMaxAge,
	}
}

// CreateNonce issues a single-use challenge nonce for the client to
// embed in its authentication message.
func (s *AuthService) CreateNonce(ctx context.Context) (string, error) {
	return s.nonces.Issue(ctx)
}

// Login verifies a signed authentication message and, on success,
// issues a session token bound to the verified address.
func (s *AuthService) Login(ctx context.Context, msg *core.Message, signature string) (string, *core.Session, error) {
	address, err := s.verifyMessage(ctx, msg, signature)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Address:   address,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, address); err != nil {
			slog.Warn("failed to publish login event", "error", err)
		}
	}

	return token, session, nil
}

// Logout notifies other instances; sessions are stateless, so the
// credential itself simply stops being sent by the client.
func (s *AuthService) Logout(ctx context.Context, address string) {
	if s.eventPub == nil {
		return
	}
	if err := s.eventPub.PublishLogout(ctx, address); err != nil {
		slog.Warn("failed to publish logout event", "error", err)
	}
}

// ResolveCaller derives the caller's verified address from exactly one
// credential form. This is the only path by which protected operations
// learn an identity; addresses arriving in request bodies are never
// authoritative.
func (s *AuthService) ResolveCaller(ctx context.Context, cred Credential) (string, error) {
	switch c := cred.(type) {
	case SessionCredential:
		session, err := s.tokenizer.TokenToSession(c.Token)
		if err != nil {
			return "", err
		}
		return session.Address, nil

	case SignedMessageCredential:
		return s.verifyMessage(ctx, c.Message, c.Signature)

	default:
		return "", fmt.Errorf("%w: unsupported credential type %T", core.ErrSessionInvalid, cred)
	}
}

// verifyMessage runs the full verification chain: syntax, domain,
// freshness, nonce redemption, signature recovery. Nonce redemption is
// a side effect, so a second verification of the same message fails
// even with a valid signature.
func (s *AuthService) verifyMessage(ctx context.Context, msg *core.Message, signature string) (string, error) {
	if msg == nil {
		return "", core.ErrInvalidMessage
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}

	if msg.Domain != s.domain {
		return "", core.ErrDomainMismatch
	}

	now := time.Now()
	if msg.IssuedAt.After(now.Add(issuedAtSkew)) {
		return "", core.ErrMessageExpired
	}
	if now.Sub(msg.IssuedAt) > s.messageMaxAge {
		return "", core.ErrMessageExpired
	}
	if msg.ExpirationTime != nil && now.After(*msg.ExpirationTime) {
		return "", core.ErrMessageExpired
	}

	if err := s.nonces.Redeem(ctx, msg.Nonce); err != nil {
		if isStoreErr(err) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", core.ErrInvalidNonce, err)
	}

	decodedSig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if len(decodedSig) != eth.SignatureLength {
		return "", fmt.Errorf("%w: signature must be %d bytes", core.ErrInvalidSignature, eth.SignatureLength)
	}

	expected := common.HexToAddress(msg.Address)
	verified, err := eth.VerifySignatureAgainstAddress([]byte(msg.Prepare()), decodedSig, expected)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if !verified {
		return "", core.ErrSignatureMismatch
	}

	return expected.Hex(), nil
}
