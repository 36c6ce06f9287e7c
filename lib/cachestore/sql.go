package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	devenv "dbxbridge/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "modernc.org/sqlite"
)

const Schema = `create table if not exists cache_entry (
	key text primary key,
	value blob not null,
	expires_at integer not null
);`

// SQL keeps entries in a single table, expired rows are skipped on read and
// overwritten on the next write of the same key.
type SQL struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func newSQL(ctx context.Context, db *sql.DB, ttl time.Duration) (SQL, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return SQL{}, fmt.Errorf("create cache schema: %w", err)
	}
	return SQL{db: db, ttl: ttl, now: time.Now}, nil
}

// OpenSqlite opens a local sqlite file, an empty path means ":memory:".
func OpenSqlite(ctx context.Context, path string, ttl time.Duration) (SQL, error) {
	dbpath := ":memory:"
	if path != "" && path != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(path)
		if err != nil {
			return SQL{}, err
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return SQL{}, err
	}
	// sqlite only allows a single writer, and an in-memory database only
	// exists on the connection that created it.
	db.SetMaxOpenConns(1)
	if dbpath != ":memory:" {
		_, err = db.ExecContext(ctx, "pragma journal_mode = wal")
		if err != nil {
			db.Close()
			return SQL{}, err
		}
	}
	return newSQL(ctx, db, ttl)
}

// OpenLibsql connects to a remote libsql database, which allows several
// processes to share a cache.
func OpenLibsql(ctx context.Context, dburl, authToken string, ttl time.Duration) (SQL, error) {
	if dburl == "" {
		return SQL{}, fmt.Errorf("libsql cache requires a url")
	}
	if authToken != "" {
		values := url.Values{}
		values.Add("authToken", authToken)
		dburl = dburl + "?" + values.Encode()
	}
	db, err := sql.Open("libsql", dburl)
	if err != nil {
		return SQL{}, err
	}
	return newSQL(ctx, db, ttl)
}

func (s SQL) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "sql:Get")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key))

	var value []byte
	err := s.db.QueryRowContext(
		ctx,
		"select value from cache_entry where key = ? and expires_at > ?",
		key, s.now().Unix(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query cache entry")
		return nil, err
	}
	return value, nil
}

func (s SQL) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := tracer.Start(ctx, "sql:Set")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key))

	_, err := s.db.ExecContext(
		ctx,
		"insert or replace into cache_entry (key, value, expires_at) values (?, ?, ?)",
		key, value, s.now().Add(s.ttl).Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cache entry")
		return err
	}
	return nil
}

func (s SQL) Close() error {
	return s.db.Close()
}
