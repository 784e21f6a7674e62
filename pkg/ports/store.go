package ports

import (
	"context"

	"github.com/aretw0/simplebot/pkg/domain"
)

// StateStore defines the key-value abstraction used to persist state bags.
// Keys are scope keys (e.g. "console/users/u-1"). Writes are last-write-wins.
type StateStore interface {
	// Save persists the bag under the given key, replacing any previous value.
	Save(ctx context.Context, key string, bag domain.Bag) error

	// Load retrieves the bag for the given key.
	// Returns domain.ErrStateNotFound if the key does not exist.
	Load(ctx context.Context, key string) (domain.Bag, error)

	// Delete removes the bag for the given key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored.
	List(ctx context.Context) ([]string, error)
}
