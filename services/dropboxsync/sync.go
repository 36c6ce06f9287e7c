package dropboxsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/scrapers/dropbox/scrape"
	"dbxbridge/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("dbxbridge/services/dropboxsync")

type Remote interface {
	ListFiles(ctx context.Context, dir string) ([]scrape.Entry, error)
	Download(ctx context.Context, remotePath, localPath, token string) error
	Upload(ctx context.Context, localPath, remoteDir string) error
}

type Report struct {
	Downloaded []string
	Uploaded   []string
	Failed     []string
}

// listLocal returns the names of regular files in dir, skipping dotfiles
// and directories.
func listLocal(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil || info.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func listRemote(ctx context.Context, remote Remote, dir string) ([]scrape.Entry, error) {
	entries, err := remote.ListFiles(ctx, dir)
	if errors.Is(err, core.ErrNoEntries) {
		slog.WarnContext(ctx, "remote listing is empty or unreadable, treating it as empty", "dir", dir)
		return nil, nil
	}
	return entries, err
}

// Sync copies files that only exist remotely into localDir and uploads
// files that only exist locally into remoteDir. Files are compared by name
// only. Every transfer is attempted, failures are returned together.
func Sync(ctx context.Context, remote Remote, localDir, remoteDir string) (Report, error) {
	ctx, span := tracer.Start(ctx, "Sync")
	defer span.End()
	span.SetAttributes(
		attribute.String("local", localDir),
		attribute.String("remote", remoteDir),
	)

	info, err := os.Stat(localDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat local directory")
		return Report{}, err
	}
	if !info.IsDir() {
		span.SetStatus(codes.Error, core.ErrNotDirectory.Error())
		return Report{}, fmt.Errorf("%s: %w", localDir, core.ErrNotDirectory)
	}

	remoteEntries, err := listRemote(ctx, remote, remoteDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list remote directory")
		return Report{}, err
	}
	localNames, err := listLocal(localDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list local directory")
		return Report{}, err
	}

	local := map[string]struct{}{}
	for _, name := range localNames {
		local[name] = struct{}{}
	}
	remoteNames := map[string]struct{}{}

	var report Report
	var errs []error
	fail := func(name string, err error) {
		slog.WarnContext(ctx, "sync transfer failed", "name", name, "err", err)
		span.RecordError(err)
		report.Failed = append(report.Failed, name)
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	for _, entry := range remoteEntries {
		if !entry.Fetchable() {
			continue
		}
		remoteNames[entry.Name] = struct{}{}
		_, exists := local[entry.Name]
		if exists {
			continue
		}
		err := remote.Download(
			ctx,
			core.JoinPath(remoteDir, entry.Name),
			filepath.Join(localDir, entry.Name),
			entry.Token,
		)
		if err != nil {
			fail(entry.Name, err)
			continue
		}
		slog.InfoContext(ctx, "downloaded", "name", entry.Name)
		report.Downloaded = append(report.Downloaded, entry.Name)
	}

	for _, name := range localNames {
		_, exists := remoteNames[name]
		if exists {
			continue
		}
		err := remote.Upload(ctx, filepath.Join(localDir, name), remoteDir)
		if err != nil {
			fail(name, err)
			continue
		}
		slog.InfoContext(ctx, "uploaded", "name", name)
		report.Uploaded = append(report.Uploaded, name)
	}

	span.SetAttributes(
		attribute.Int("downloaded", len(report.Downloaded)),
		attribute.Int("uploaded", len(report.Uploaded)),
		attribute.Int("failed", len(report.Failed)),
	)
	if len(errs) > 0 {
		span.SetStatus(codes.Error, "some transfers failed")
		return report, errors.Join(errs...)
	}
	return report, nil
}
