package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// Keys used by the client for its locally persisted entries
const (
	ConfigKey  = "spiderConfig"
	SessionKey = "spiderUser"
)

// Storage is the client's local persisted key/value store. It plays the role
// browser local storage plays for the web client: small entries that survive
// a restart and are private to one client.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
