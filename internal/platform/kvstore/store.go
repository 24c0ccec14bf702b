// Package kvstore is the key-value storage capability behind the persistence
// layer. Values are opaque JSON documents addressed by a fixed key; the
// backends differ only in where the bytes live.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set or was cleared.
var ErrNotFound = errors.New("key not found")

// Store is the minimal get/set/clear contract of a device key-value storage.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by backends holding a connection.
type Closer interface {
	Close(ctx context.Context) error
}

// UpdateFunc receives the current value (nil when absent) and returns the
// value to store.
type UpdateFunc func(current []byte) ([]byte, error)

// Updater is implemented by backends able to run a read-modify-write of one
// key atomically. Callers fall back to Get followed by Set when a backend
// does not implement it.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Update runs fn against key, atomically when the backend supports it.
func Update(ctx context.Context, s Store, key string, fn UpdateFunc) error {
	if u, ok := s.(Updater); ok {
		return u.Update(ctx, key, fn)
	}
	current, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, next)
}
