package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/gofiber/storage/memory/v2"
)

// MemoryStorage keeps entries in process memory. Writes are serialized so
// SetNX and CompareAndSwap are atomic within a single process.
type MemoryStorage struct {
	mu  sync.Mutex
	mem *memory.Storage
}

func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.mem.Get(key)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, ErrNotFound
	}
	return bytes.Clone(val), nil
}

func (s *MemoryStorage) Set(ctx context.Context, key string, val []byte, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem.Set(key, bytes.Clone(val), expiresIn)
}

func (s *MemoryStorage) SetNX(ctx context.Context, key string, val []byte, expiresIn time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.mem.Get(key)
	if err != nil {
		return false, err
	}
	if cur != nil {
		return false, nil
	}
	return true, s.mem.Set(key, bytes.Clone(val), expiresIn)
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	return s.mem.Delete(key)
}

func (s *MemoryStorage) CompareAndSwap(ctx context.Context, key string, oldVal, newVal []byte, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.mem.Get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if !bytes.Equal(cur, oldVal) {
		return ErrConflict
	}
	if newVal == nil {
		return s.mem.Delete(key)
	}
	return s.mem.Set(key, bytes.Clone(newVal), expiresIn)
}

func (s *MemoryStorage) Close() error {
	return s.mem.Close()
}

func NewMemoryStorage(gcInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{
		mem: memory.New(memory.Config{GCInterval: gcInterval}),
	}
}
