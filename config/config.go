// Package config loads process configuration from the environment.
package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config carries everything the process reads at startup. Nothing in
// here is recomputed per request; in particular the key partition is
// fixed for the process lifetime.
type Config struct {
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:":9000"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ServiceDomain string        `env:"SERVICE_DOMAIN" envDefault:"localhost:3000"`
	Environment   string        `env:"ENVIRONMENT" envDefault:"production"`
	NonceTTL      time.Duration `env:"NONCE_TTL" envDefault:"5m"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	MessageMaxAge time.Duration `env:"MESSAGE_MAX_AGE" envDefault:"10m"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"true"`

	// SessionKeyPEM holds the PEM-encoded EC private key that signs
	// session tokens. Leave empty to generate an ephemeral key, which
	// invalidates all sessions on restart.
	SessionKeyPEM string `env:"SESSION_KEY_PEM"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// KeyPartition derives the store partition for this deployment
// environment. Two environments never share a partition.
func (c *Config) KeyPartition() string {
	return "rpckeys:" + c.Environment
}

// SessionSigningKey loads the session signing key, generating an
// ephemeral one when none is configured.
func (c *Config) SessionSigningKey() (*ecdsa.PrivateKey, bool, error) {
	if c.SessionKeyPEM == "" {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate session key: %w", err)
		}
		return key, true, nil
	}

	block, _ := pem.Decode([]byte(c.SessionKeyPEM))
	if block == nil {
		return nil, false, fmt.Errorf("SESSION_KEY_PEM is not valid PEM")
	}

	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse session key: %w", err)
	}
	return key, false, nil
}
