// Package storage provides the durable key-value port used to persist client state.
package storage

import (
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no value is stored under the key
var ErrNotFound = errors.New("storage: key not found")

// Store is a small durable key-value port.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Clear removes every value held by the store.
	Clear() error
}
