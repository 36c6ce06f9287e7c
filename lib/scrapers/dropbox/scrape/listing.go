package scrape

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"dbxbridge/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoListing means the page had no filename blocks at all, which is the
// case for both an empty directory and a page of an unexpected shape.
var ErrNoListing = errors.New("no filename blocks in listing")

const (
	filenameSelector = "[class*=details-filename]"
	iconSelector     = "[class*=details-icon]"
	sizeSelector     = "[class*=details-size]"
	modifiedSelector = "[class*=details-modified]"
	metadataSelector = iconSelector + ", " + sizeSelector + ", " + modifiedSelector
)

// findRow returns the closest ancestor of a filename block that holds
// metadata for that block alone. It returns an empty selection when the
// block has no metadata of its own.
func findRow(block *goquery.Selection) *goquery.Selection {
	for parent := block.Parent(); parent.Length() > 0; parent = parent.Parent() {
		if parent.Find(filenameSelector).Length() > 1 {
			break
		}
		if parent.Find(metadataSelector).Length() > 0 {
			return parent
		}
	}
	return block.Slice(0, 0)
}

func parseIcon(row *goquery.Selection) string {
	icon := ""
	row.Find(iconSelector).Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		for _, class := range htmlutil.ClassTokens(img) {
			if strings.HasPrefix(class, "s_") && len(class) > 2 {
				icon = strings.TrimPrefix(class, "s_")
				return false
			}
		}
		return true
	})
	return icon
}

func isParentLink(block *goquery.Selection) bool {
	contents, err := goquery.OuterHtml(block)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(contents), "parent folder")
}

func parseLink(ctx context.Context, block *goquery.Selection) (name, token string, ok bool) {
	links := block.Filter("a[href]").AddSelection(block.Find("a[href]"))
	anchors := htmlutil.GetAnchors(ctx, links)
	if len(anchors) == 0 {
		return "", "", false
	}
	link, err := url.Parse(anchors[0].Href)
	if err != nil {
		return "", "", false
	}
	name = path.Base(link.Path)
	if name == "." || name == "/" {
		return "", "", false
	}
	return name, link.Query().Get("w"), true
}

// ParseDirectoryListing extracts the entries of a listing page in document
// order. `dir` is recorded as the Path of every entry.
func ParseDirectoryListing(ctx context.Context, dir string, contents []byte) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "ParseDirectoryListing")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	blocks := doc.Find(filenameSelector)
	if blocks.Length() == 0 {
		span.SetStatus(codes.Error, ErrNoListing.Error())
		return nil, ErrNoListing
	}

	entries := []Entry{}
	blocks.Each(func(_ int, block *goquery.Selection) {
		if isParentLink(block) {
			return
		}
		name, token, ok := parseLink(ctx, block)
		if !ok {
			span.AddEvent("skipped row without link")
			return
		}

		row := findRow(block)
		icon := parseIcon(row)
		entry := Entry{
			Path:     dir,
			Name:     name,
			Kind:     kindOf(icon, token),
			Icon:     icon,
			Size:     htmlutil.GetCleanText(row.Find(sizeSelector).First()),
			Modified: htmlutil.GetCleanText(row.Find(modifiedSelector).First()),
			Token:    token,
		}
		if entry.Icon == "" {
			entry.Icon = UnknownIcon
		}
		entries = append(entries, entry)

		span.AddEvent("entry", trace.WithAttributes(
			attribute.String("name", entry.Name),
			attribute.String("kind", string(entry.Kind)),
			attribute.Bool("token", entry.Fetchable()),
		))
	})

	return entries, nil
}
