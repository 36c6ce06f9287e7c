package commands

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/scrapers/dropbox/scrape"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// findRemote lists the parent of `remotePath` and returns its entry, with
// close matches in the error when there is none.
func findRemote(ctx context.Context, remote core.Service, remotePath string) (scrape.Entry, error) {
	remotePath = core.CleanPath(remotePath)
	dir, name := path.Split(remotePath)

	entries, err := remote.ListFiles(ctx, dir)
	if err != nil {
		return scrape.Entry{}, err
	}
	entry, ok := core.FindEntry(entries, name)
	if ok {
		return entry, nil
	}

	suggestions := core.Suggest(entries, name, 3)
	if len(suggestions) == 0 {
		return scrape.Entry{}, fmt.Errorf("%s was not found", remotePath)
	}
	return scrape.Entry{}, fmt.Errorf(
		"%s was not found, did you mean: %s?",
		remotePath, strings.Join(suggestions, ", "),
	)
}
