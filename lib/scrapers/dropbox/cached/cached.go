package cached

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dbxbridge/lib/cachestore"
	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/scrapers/dropbox/scrape"
	"dbxbridge/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("dbxbridge/lib/scrapers/dropbox/cached")

// Inner is the service being cached, it must accept listings that did not
// come from itself so that cached listings still make tokens known.
type Inner interface {
	core.Service
	RememberEntries(entries []scrape.Entry)
}

// Client is a read-through cache in front of listings and file contents.
// Cache failures are logged and otherwise ignored.
type Client struct {
	inner Inner
	store cachestore.Store
}

var _ core.Service = Client{}

func New(inner Inner, store cachestore.Store) Client {
	return Client{inner: inner, store: store}
}

func ListingKey(dir string) string {
	return "dropbox_files_" + core.Escape(core.CleanPath(dir))
}

func FileKey(path string) string {
	return "dropbox_file_" + core.Escape(core.CleanPath(path))
}

func cacheEvent(ctx context.Context, name, key string) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(
		attribute.String("cache_key", key),
	))
}

func (c Client) ListFiles(ctx context.Context, dir string) ([]scrape.Entry, error) {
	ctx, span := tracer.Start(ctx, "cached:ListFiles")
	defer span.End()

	key := ListingKey(dir)
	entries, err := cachestore.GetGob[[]scrape.Entry](ctx, c.store, key)
	if err == nil {
		cacheEvent(ctx, "cache hit", key)
		c.inner.RememberEntries(entries)
		return entries, nil
	}
	if !errors.Is(err, cachestore.ErrNotFound) {
		slog.WarnContext(ctx, "failed to read cached listing", "key", key, "err", err)
	}
	cacheEvent(ctx, "cache miss", key)

	entries, err = c.inner.ListFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	err = cachestore.SetGob(ctx, c.store, key, entries)
	if err != nil {
		slog.WarnContext(ctx, "failed to cache listing", "key", key, "err", err)
	}
	return entries, nil
}

func (c Client) FetchFile(ctx context.Context, path, token string) (core.File, error) {
	ctx, span := tracer.Start(ctx, "cached:FetchFile")
	defer span.End()

	key := FileKey(path)
	file, err := cachestore.GetGob[core.File](ctx, c.store, key)
	if err == nil {
		cacheEvent(ctx, "cache hit", key)
		return file, nil
	}
	if !errors.Is(err, cachestore.ErrNotFound) {
		slog.WarnContext(ctx, "failed to read cached file", "key", key, "err", err)
	}
	cacheEvent(ctx, "cache miss", key)

	file, err = c.inner.FetchFile(ctx, path, token)
	if err != nil {
		return core.File{}, err
	}
	err = cachestore.SetGob(ctx, c.store, key, file)
	if err != nil {
		slog.WarnContext(ctx, "failed to cache file", "key", key, "err", err)
	}
	return file, nil
}

// Download goes through the file cache, unlike the inner Download.
func (c Client) Download(ctx context.Context, remotePath, localPath, token string) error {
	file, err := c.FetchFile(ctx, remotePath, token)
	if err != nil {
		return err
	}
	if len(file.Data) == 0 {
		return fmt.Errorf("%s: %w (empty body)", file.Path, core.ErrFetchFailed)
	}
	return core.WriteLocal(localPath, file.Data)
}

// Upload is not cached, listings of the destination may be stale until
// they expire.
func (c Client) Upload(ctx context.Context, localPath, remoteDir string) error {
	return c.inner.Upload(ctx, localPath, remoteDir)
}
