package scrape

import (
	"context"
	"testing"

	"dbxbridge/lib/telemetry"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/browse_plain.html
var browsePlain []byte

func TestParseDirectoryListing(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/dropbox/scrape")
	defer cleanup()

	entries, err := ParseDirectoryListing(context.Background(), "/docs", browsePlain)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Entry{
		{
			Path:     "/docs",
			Name:     "images",
			Kind:     KindFolder,
			Icon:     "folder",
			Size:     "--",
			Modified: "2 days ago",
		},
		{
			Path:     "/docs",
			Name:     "index.html",
			Kind:     KindFile,
			Icon:     "page_white_code",
			Size:     "1.2KB",
			Modified: "10 mins ago",
			Token:    "a1b2c3",
		},
		{
			Path:     "/docs",
			Name:     "release notes.txt",
			Kind:     KindFile,
			Icon:     UnknownIcon,
			Modified: "3 hours ago",
			Token:    "d4e5f6",
		},
		{
			Path:     "/docs",
			Name:     "notes.md",
			Kind:     KindFile,
			Icon:     "page_white",
			Size:     "120 bytes",
			Modified: "1 week ago",
		},
	}
	if diff := cmp.Diff(expected, entries); diff != "" {
		t.Fatal(diff)
	}
	require.False(t, entries[3].Fetchable())
	require.Equal(t, "/docs/index.html", entries[1].FullPath())
}

func TestParseDirectoryListingRowsWithoutContainers(t *testing.T) {
	contents := []byte(`<table>
		<tr><td class="details-filename"><a href="/get/a.txt?w=1">a.txt</a></td><td class="details-size">1KB</td></tr>
		<tr><td class="details-filename"><a href="/get/b.txt?w=2">b.txt</a></td></tr>
		<tr><td class="details-filename"><a href="/get/c.txt?w=3">c.txt</a></td><td class="details-size">3KB</td></tr>
	</table>`)

	entries, err := ParseDirectoryListing(context.Background(), "/", contents)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, entries, 3)

	sizes := []string{}
	for _, e := range entries {
		sizes = append(sizes, e.Size)
	}
	// metadata never leaks from a neighbouring row
	require.Equal(t, []string{"1KB", "", "3KB"}, sizes)
}

func TestParseDirectoryListingEmpty(t *testing.T) {
	_, err := ParseDirectoryListing(context.Background(), "/", []byte(`<html><body>Nothing here</body></html>`))
	require.ErrorIs(t, err, ErrNoListing)

	entries, err := ParseDirectoryListing(context.Background(), "/", []byte(
		`<div class="details-filename"><a href="/browse_plain/?no_js=true">Parent folder</a></div>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, entries)
}
