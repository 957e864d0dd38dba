package providers

import (
	"context"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Append appends a member to a list-valued key, trimming it to maxLen
	Append(ctx context.Context, key string, value []byte, maxLen int, expirationSeconds int) error

	// List returns all members of a list-valued key, oldest first
	List(ctx context.Context, key string) ([][]byte, error)
}
