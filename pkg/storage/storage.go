package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested slot does not exist.
var ErrNotFound = errors.New("not found")

// Storage is a key/value style blob store. Paths are forward-slash
// separated and relative to the store's root.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}
