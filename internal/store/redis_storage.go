package store

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	rdb redis.UniversalClient
}

func (s *RedisStorage) Conn() redis.UniversalClient {
	return s.rdb
}

func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return val, err
}

func (s *RedisStorage) Set(ctx context.Context, key string, val []byte, expiresIn time.Duration) error {
	return s.rdb.Set(ctx, key, val, expiresIn).Err()
}

func (s *RedisStorage) SetNX(ctx context.Context, key string, val []byte, expiresIn time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, val, expiresIn).Result()
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	deleted, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStorage) CompareAndSwap(ctx context.Context, key string, oldVal, newVal []byte, expiresIn time.Duration) error {
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(cur, oldVal) {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if newVal == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, newVal, expiresIn)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func NewRedisStorage(db redis.UniversalClient) *RedisStorage {
	return &RedisStorage{
		rdb: db,
	}
}
