package store

import (
	"context"
	"time"
)

type prefixedStorage struct {
	underlying Storage
	prefix     string
}

func (p *prefixedStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return p.underlying.Get(ctx, p.prefix+key)
}

func (p *prefixedStorage) Set(ctx context.Context, key string, val []byte, expiresIn time.Duration) error {
	return p.underlying.Set(ctx, p.prefix+key, val, expiresIn)
}

func (p *prefixedStorage) SetNX(ctx context.Context, key string, val []byte, expiresIn time.Duration) (bool, error) {
	return p.underlying.SetNX(ctx, p.prefix+key, val, expiresIn)
}

func (p *prefixedStorage) Delete(ctx context.Context, key string) error {
	return p.underlying.Delete(ctx, p.prefix+key)
}

func (p *prefixedStorage) CompareAndSwap(ctx context.Context, key string, oldVal, newVal []byte, expiresIn time.Duration) error {
	return p.underlying.CompareAndSwap(ctx, p.prefix+key, oldVal, newVal, expiresIn)
}

func StorageWithPrefix(storage Storage, prefix string) Storage {
	return &prefixedStorage{
		underlying: storage,
		prefix:     prefix,
	}
}
