package core

import "time"

// APIKey is an opaque secret token owned by exactly one address.
// The key value doubles as the record identifier in the store.
type APIKey struct {
	Value     string            `json:"keyValue"`
	Owner     string            `json:"ethereumAddress"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
