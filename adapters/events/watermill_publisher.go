package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/keygate/ports"
)

const (
	LoginTopic      = "keygate.auth.login"
	LogoutTopic     = "keygate.auth.logout"
	KeyCreatedTopic = "keygate.keys.created"
	KeyDeletedTopic = "keygate.keys.deleted"
)

// AuthEvent notifies other instances about a login or logout.
type AuthEvent struct {
	Address string `json:"address"`
}

// KeyEvent notifies other instances about a key lifecycle change.
// Only a fingerprint travels on the wire, never the key value.
type KeyEvent struct {
	Owner          string `json:"owner"`
	KeyFingerprint string `json:"key_fingerprint"`
}

// WatermillPublisher implements the EventPublisher port using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string) error {
	return p.publish(LoginTopic, AuthEvent{Address: address})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	return p.publish(LogoutTopic, AuthEvent{Address: address})
}

// PublishKeyCreated publishes a key creation event.
func (p *WatermillPublisher) PublishKeyCreated(ctx context.Context, owner, keyFingerprint string) error {
	return p.publish(KeyCreatedTopic, KeyEvent{Owner: owner, KeyFingerprint: keyFingerprint})
}

// PublishKeyDeleted publishes a key deletion event.
func (p *WatermillPublisher) PublishKeyDeleted(ctx context.Context, owner, keyFingerprint string) error {
	return p.publish(KeyDeletedTopic, KeyEvent{Owner: owner, KeyFingerprint: keyFingerprint})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
