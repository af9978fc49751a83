package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/khanghh/clubhub/params"
)

type store[T any] struct {
	storage Storage
}

func (s *store[T]) load(ctx context.Context, key string) (*T, []byte, error) {
	raw, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	var obj T
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, err
	}
	return &obj, raw, nil
}

func (s *store[T]) Get(ctx context.Context, key string) (*T, error) {
	obj, _, err := s.load(ctx, key)
	return obj, err
}

func (s *store[T]) Set(ctx context.Context, key string, val *T, expiresIn time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, key, raw, expiresIn)
}

// Create stores val only if key is absent.
func (s *store[T]) Create(ctx context.Context, key string, val *T, expiresIn time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	ok, err := s.storage.SetNX(ctx, key, raw, expiresIn)
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *store[T]) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

func (s *store[T]) Update(ctx context.Context, key string, fn UpdateFunc[T]) (*T, error) {
	for range params.StoreMaxRetries {
		obj, raw, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}
		expiresIn, err := fn(obj)
		if err != nil {
			return obj, err
		}
		newRaw, err := json.Marshal(obj)
		if err != nil {
			return nil, err
		}
		err = s.storage.CompareAndSwap(ctx, key, raw, newRaw, expiresIn)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, ErrConflict
}

// Take removes the entry at key once fn accepts it. Concurrent callers race on
// the same stored bytes, so at most one of them observes success.
func (s *store[T]) Take(ctx context.Context, key string, fn TakeFunc[T]) (*T, error) {
	for range params.StoreMaxRetries {
		obj, raw, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}
		if fn != nil {
			if err := fn(obj); err != nil {
				return obj, err
			}
		}
		err = s.storage.CompareAndSwap(ctx, key, raw, nil, 0)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, ErrConflict
}

func New[T any](storage Storage, keyPrefix string) Store[T] {
	return &store[T]{
		storage: StorageWithPrefix(storage, keyPrefix),
	}
}
