package cachestore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"dbxbridge/lib/telemetry"
)

var tracer = telemetry.Tracer("dbxbridge/lib/cachestore")

var ErrNotFound = errors.New("cache: key not found")

const DefaultTTL = time.Minute * 15
const DefaultSize = 2048

// Store is a key/value cache with a fixed time to live per entry.
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound for missing and expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type Backend string

const (
	BackendNone   Backend = "none"
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendSqlite Backend = "sqlite"
	BackendLibsql Backend = "libsql"
)

type Config struct {
	Backend Backend `json:"backend"`
	// badger directory or sqlite file, may start with <dev_state>.
	// empty means in-memory.
	Path      string `json:"path"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
	// 0 means DefaultTTL
	TtlSeconds int `json:"ttl_seconds"`
	// memory backend only, 0 means DefaultSize
	Size int `json:"size"`
}

func (c Config) TTL() time.Duration {
	if c.TtlSeconds <= 0 {
		return DefaultTTL
	}
	return time.Duration(c.TtlSeconds) * time.Second
}

// Open creates the store selected by the config. An empty backend is
// treated as BackendNone.
func Open(ctx context.Context, config Config) (Store, error) {
	switch config.Backend {
	case "", BackendNone:
		return None{}, nil
	case BackendMemory:
		size := config.Size
		if size <= 0 {
			size = DefaultSize
		}
		return NewMemory(size, config.TTL()), nil
	case BackendBadger:
		return OpenBadger(config.Path, config.TTL())
	case BackendSqlite:
		return OpenSqlite(ctx, config.Path, config.TTL())
	case BackendLibsql:
		return OpenLibsql(ctx, config.Url, config.AuthToken, config.TTL())
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Backend)
	}
}

// None caches nothing.
type None struct{}

func (None) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }
func (None) Set(context.Context, string, []byte) error  { return nil }
func (None) Close() error                               { return nil }

func GetGob[T any](ctx context.Context, store Store, key string) (T, error) {
	var out T
	serialized, err := store.Get(ctx, key)
	if err != nil {
		return out, err
	}
	err = gob.NewDecoder(bytes.NewReader(serialized)).Decode(&out)
	if err != nil {
		return out, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}

func SetGob[T any](ctx context.Context, store Store, key string, value T) error {
	serialized := bytes.NewBuffer(nil)
	err := gob.NewEncoder(serialized).Encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, serialized.Bytes())
}
