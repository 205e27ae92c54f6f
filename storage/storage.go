package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable key/value blob store. The cart and session are each
// serialized as a single JSON blob under a fixed key, last write wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Fixed storage keys. There is no versioning or migration scheme yet; adding
// one is tracked as future work.
const (
	KeyCart         = "picommerce:cart"
	KeySessionToken = "picommerce:session:token"
	KeySessionUser  = "picommerce:session:user"
)
