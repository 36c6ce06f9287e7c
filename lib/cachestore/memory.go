package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Memory struct {
	cache *expirable.LRU[string, []byte]
}

func NewMemory(size int, ttl time.Duration) Memory {
	return Memory{
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (m Memory) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (m Memory) Set(ctx context.Context, key string, value []byte) error {
	m.cache.Add(key, value)
	return nil
}

func (m Memory) Close() error {
	m.cache.Purge()
	return nil
}
