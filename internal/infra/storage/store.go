// Package storage abstracts the object store that holds binary assets
// (cover images) referenced by key from database rows. Assets are weak
// references: a missing blob degrades gracefully, it never fails a page.
package storage

import "context"

type Store interface {
	// Put stores data under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the object's bytes, or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
