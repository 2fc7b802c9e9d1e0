package ports

import "context"

// EventPublisher publishes auth and key lifecycle events to notify
// other instances. Publication is best-effort; failures must not fail
// the originating request.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string) error
	PublishLogout(ctx context.Context, address string) error
	PublishKeyCreated(ctx context.Context, owner, keyFingerprint string) error
	PublishKeyDeleted(ctx context.Context, owner, keyFingerprint string) error
}
