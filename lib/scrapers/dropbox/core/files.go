package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dbxbridge/lib/scrapers/dropbox/scrape"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// File is the content of a remote file.
type File struct {
	Path        string
	Token       string
	Data        []byte
	ContentType string
}

// ListFiles returns the entries of a remote directory and remembers their
// download tokens for FetchFile.
func (c *Client) ListFiles(ctx context.Context, dir string) ([]scrape.Entry, error) {
	ctx, span := tracer.Start(ctx, "client:ListFiles")
	defer span.End()

	dir = CleanPath(dir)
	span.SetAttributes(attribute.String("dir", dir))

	res, err := c.session.Request(ctx, c.endpoints.listingUrl(dir))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return nil, err
	}

	entries, err := scrape.ParseDirectoryListing(ctx, dir, res.Body)
	if errors.Is(err, scrape.ErrNoListing) {
		slog.WarnContext(
			ctx, "listing has no filename blocks, the directory is empty or the page changed",
			"dir", dir,
			"status", res.StatusCode,
		)
		span.SetStatus(codes.Error, ErrNoEntries.Error())
		return nil, fmt.Errorf("list %s: %w", dir, ErrNoEntries)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse listing")
		return nil, err
	}

	c.tokens.Remember(entries)
	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

// RememberEntries fills the token cache from a listing obtained elsewhere,
// eg. a cached one.
func (c *Client) RememberEntries(entries []scrape.Entry) {
	c.tokens.Remember(entries)
}

// FetchFile downloads a remote file. When `token` is empty the token seen
// in an earlier listing is used.
func (c *Client) FetchFile(ctx context.Context, path, token string) (File, error) {
	ctx, span := tracer.Start(ctx, "client:FetchFile")
	defer span.End()

	path = CleanPath(path)
	span.SetAttributes(attribute.String("path", path))

	if token == "" {
		var ok bool
		token, ok = c.tokens.Lookup(path)
		if !ok {
			span.SetStatus(codes.Error, ErrNoToken.Error())
			return File{}, fmt.Errorf("%s: %w", path, ErrNoToken)
		}
	}

	res, err := c.session.Request(ctx, c.endpoints.contentUrl(path, token))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch file")
		return File{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		span.SetStatus(codes.Error, ErrFetchFailed.Error())
		return File{}, fmt.Errorf("%s: %w (status %d)", path, ErrFetchFailed, res.StatusCode)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(res.Body).String()
	}
	span.SetAttributes(
		attribute.String("content_type", contentType),
		attribute.Int("size", len(res.Body)),
	)

	return File{
		Path:        path,
		Token:       token,
		Data:        res.Body,
		ContentType: contentType,
	}, nil
}
