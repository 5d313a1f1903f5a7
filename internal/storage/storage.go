package storage

import (
	"context"
	"errors"
)

// Store is a durable client-side key-value blob store, the moral
// equivalent of browser localStorage. Values are opaque to the store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")
