package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"dbxbridge/lib/scrapers/dropbox/scrape"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// WriteLocal writes data to `localPath` through a temporary file in the
// same directory, which must already exist.
func WriteLocal(localPath string, data []byte) error {
	dir := filepath.Dir(localPath)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	suffix, err := random.String(8)
	if err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.part", filepath.Base(localPath), suffix))
	err = os.WriteFile(tmp, data, 0644)
	if err != nil {
		return err
	}
	err = os.Rename(tmp, localPath)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Download fetches a remote file into `localPath`. Empty files are treated
// as failed fetches.
func (c *Client) Download(ctx context.Context, remotePath, localPath, token string) error {
	ctx, span := tracer.Start(ctx, "client:Download")
	defer span.End()
	span.SetAttributes(
		attribute.String("remote", remotePath),
		attribute.String("local", localPath),
	)

	file, err := c.FetchFile(ctx, remotePath, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch file")
		return err
	}
	if len(file.Data) == 0 {
		span.SetStatus(codes.Error, "empty file")
		return fmt.Errorf("%s: %w (empty body)", file.Path, ErrFetchFailed)
	}

	err = WriteLocal(localPath, file.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write local file")
		return err
	}
	return nil
}

// Upload sends a local file into a remote directory through the upload
// form on the home page.
func (c *Client) Upload(ctx context.Context, localPath, remoteDir string) error {
	ctx, span := tracer.Start(ctx, "client:Upload")
	defer span.End()

	remoteDir = CleanPath(remoteDir)
	span.SetAttributes(
		attribute.String("local", localPath),
		attribute.String("remote_dir", remoteDir),
	)

	info, err := os.Stat(localPath)
	if errors.Is(err, os.ErrNotExist) {
		span.SetStatus(codes.Error, ErrLocalFileMissing.Error())
		return fmt.Errorf("%s: %w", localPath, ErrLocalFileMissing)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat local file")
		return err
	}
	if info.IsDir() {
		span.SetStatus(codes.Error, ErrLocalFileMissing.Error())
		return fmt.Errorf("%s is a directory: %w", localPath, ErrLocalFileMissing)
	}

	res, err := c.session.Request(ctx, c.endpoints.Home)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch home page")
		return err
	}
	token, ok := scrape.ParseFormToken(res.Body, c.endpoints.Upload)
	if !ok {
		span.SetStatus(codes.Error, ErrFormTokenNotFound.Error())
		return fmt.Errorf("upload form (%s): %w", c.endpoints.Upload, ErrFormTokenNotFound)
	}

	c.session.SetPostFields(map[string]string{
		"plain": "yes",
		"dest":  remoteDir,
		"t":     token,
	})
	c.session.AttachFile("file", localPath)
	res, err = c.session.Request(ctx, c.endpoints.Upload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make upload request")
		return err
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode))
	if res.StatusCode != http.StatusFound {
		span.SetStatus(codes.Error, ErrUploadFailed.Error())
		return fmt.Errorf("%s: %w (status %d)", localPath, ErrUploadFailed, res.StatusCode)
	}
	return nil
}
