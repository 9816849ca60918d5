// ABOUTME: Durable local key-value slot for the cached session
// ABOUTME: Backed by BadgerDB locally or by Charm KV when synced across devices
package slot

import "errors"

// UserKey is the slot key holding the serialized session.
const UserKey = "user"

var ErrNotFound = errors.New("slot key not found")

// Slot is a small durable key-value store.
type Slot interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
