package dropboxsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/scrapers/dropbox/scrape"
	"dbxbridge/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type download struct {
	remote string
	local  string
	token  string
}

type upload struct {
	local string
	dir   string
}

type mockRemote struct {
	entries   []scrape.Entry
	listErr   error
	failNames map[string]bool

	downloads []download
	uploads   []upload
}

func (m *mockRemote) ListFiles(ctx context.Context, dir string) ([]scrape.Entry, error) {
	return m.entries, m.listErr
}

func (m *mockRemote) Download(ctx context.Context, remotePath, localPath, token string) error {
	if m.failNames[filepath.Base(localPath)] {
		return core.ErrFetchFailed
	}
	m.downloads = append(m.downloads, download{remote: remotePath, local: localPath, token: token})
	return nil
}

func (m *mockRemote) Upload(ctx context.Context, localPath, remoteDir string) error {
	if m.failNames[filepath.Base(localPath)] {
		return core.ErrUploadFailed
	}
	m.uploads = append(m.uploads, upload{local: localPath, dir: remoteDir})
	return nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0600)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestSync(t *testing.T) {
	cleanup := testutil.Setup(t, "services/dropboxsync")
	defer cleanup()

	dir := t.TempDir()
	writeFiles(t, dir, "a", "b", ".hidden")
	err := os.Mkdir(filepath.Join(dir, "subdir"), 0755)
	if err != nil {
		t.Fatal(err)
	}

	remote := &mockRemote{
		entries: []scrape.Entry{
			{Path: "/backup", Name: "b", Kind: scrape.KindFile, Token: "wb"},
			{Path: "/backup", Name: "c", Kind: scrape.KindFile, Token: "wc"},
			{Path: "/backup", Name: "photos", Kind: scrape.KindFolder},
		},
	}
	report, err := Sync(context.Background(), remote, dir, "/backup")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]download{{
		remote: "/backup/c",
		local:  filepath.Join(dir, "c"),
		token:  "wc",
	}}, remote.downloads, cmp.AllowUnexported(download{})); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]upload{{
		local: filepath.Join(dir, "a"),
		dir:   "/backup",
	}}, remote.uploads, cmp.AllowUnexported(upload{})); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, Report{Downloaded: []string{"c"}, Uploaded: []string{"a"}}, report)
}

func TestSyncCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "d")

	remote := &mockRemote{
		entries: []scrape.Entry{
			{Name: "c", Token: "wc"},
			{Name: "e", Token: "we"},
		},
		failNames: map[string]bool{"c": true, "a": true},
	}
	report, err := Sync(context.Background(), remote, dir, "/")
	require.ErrorIs(t, err, core.ErrFetchFailed)
	require.ErrorIs(t, err, core.ErrUploadFailed)
	require.Equal(t, Report{
		Downloaded: []string{"e"},
		Uploaded:   []string{"d"},
		Failed:     []string{"c", "a"},
	}, report)
}

func TestSyncEmptyRemote(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a")

	remote := &mockRemote{listErr: core.ErrNoEntries}
	report, err := Sync(context.Background(), remote, dir, "/")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"a"}, report.Uploaded)

	remote = &mockRemote{listErr: errors.New("connection reset")}
	_, err = Sync(context.Background(), remote, dir, "/")
	require.Error(t, err)
	require.Empty(t, remote.uploads)
}

func TestSyncNotDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "file")

	_, err := Sync(context.Background(), &mockRemote{}, filepath.Join(dir, "file"), "/")
	require.ErrorIs(t, err, core.ErrNotDirectory)
}

func TestSyncAgainstFakeDropbox(t *testing.T) {
	fake := testutil.NewFakeDropbox(t)
	fake.AddFile("/backup", "b", []byte("remote b"), "text/plain")
	fake.AddFile("/backup", "c", []byte("remote c"), "text/plain")

	ctx := context.Background()
	client, err := core.Connect(ctx, fake.ClientOptions())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	writeFiles(t, dir, "a", "b")

	report, err := Sync(ctx, client, dir, "/backup")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Report{Downloaded: []string{"c"}, Uploaded: []string{"a"}}, report)

	contents, err := os.ReadFile(filepath.Join(dir, "c"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "remote c", string(contents))

	contents, err = os.ReadFile(filepath.Join(dir, "b"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "b", string(contents))

	uploaded, ok := fake.File("/backup", "a")
	require.True(t, ok)
	require.Equal(t, "a", string(uploaded.Data))
}
