package cachestore

import (
	"context"
	"errors"
	"time"

	devenv "dbxbridge/dev/env"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens a badger database at `dir`, or an in-memory one if `dir`
// is empty.
func OpenBadger(dir string, ttl time.Duration) (Badger, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		resolved, err := devenv.ResolvePath(dir)
		if err != nil {
			return Badger{}, err
		}
		opts = badger.DefaultOptions(resolved)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return Badger{}, err
	}
	return Badger{db: db, ttl: ttl}, nil
}

func (b Badger) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "badger:Get")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key))

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, err
	}
	return value, nil
}

func (b Badger) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := tracer.Start(ctx, "badger:Set")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key))

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(b.ttl))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write item to badger")
		return err
	}
	return nil
}

func (b Badger) Close() error {
	return b.db.Close()
}
