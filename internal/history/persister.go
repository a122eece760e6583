package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Persister when nothing is stored under a key
var ErrNotFound = errors.New("history: key not found")

// Persister is the durable key-value store histories are saved to
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
