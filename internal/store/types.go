package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("key already exists")
	ErrConflict = errors.New("value changed concurrently")
)

// Storage is a byte-oriented key-value store with per-key expiry. An expiry of
// zero means the key never expires.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, expiresIn time.Duration) error
	SetNX(ctx context.Context, key string, val []byte, expiresIn time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	// CompareAndSwap replaces the value of key with newVal only if it still
	// equals oldVal. A nil newVal deletes the key.
	CompareAndSwap(ctx context.Context, key string, oldVal, newVal []byte, expiresIn time.Duration) error
}

type Store[T any] interface {
	Get(ctx context.Context, key string) (*T, error)
	Set(ctx context.Context, key string, val *T, expiresIn time.Duration) error
	Create(ctx context.Context, key string, val *T, expiresIn time.Duration) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc[T]) (*T, error)
	Take(ctx context.Context, key string, fn TakeFunc[T]) (*T, error)
}

// UpdateFunc mutates val in place and returns the expiry to store it with.
// Returning an error aborts the update.
type UpdateFunc[T any] func(val *T) (time.Duration, error)

// TakeFunc decides whether val may be consumed. Returning an error leaves the
// entry untouched.
type TakeFunc[T any] func(val *T) error
