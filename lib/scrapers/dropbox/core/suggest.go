package core

import (
	"sort"
	"strings"

	"dbxbridge/lib/scrapers/dropbox/scrape"

	"github.com/antzucaro/matchr"
)

const suggestThreshold = 0.7

// Suggest returns up to `limit` entry names that look like `name`, most
// similar first.
func Suggest(entries []scrape.Entry, name string, limit int) []string {
	type candidate struct {
		name       string
		similarity float64
	}

	var candidates []candidate
	target := strings.ToLower(name)
	for _, e := range entries {
		similarity := matchr.JaroWinkler(strings.ToLower(e.Name), target, false)
		if similarity < suggestThreshold {
			continue
		}
		candidates = append(candidates, candidate{name: e.Name, similarity: similarity})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	out := []string{}
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		out = append(out, c.name)
	}
	return out
}

// FindEntry returns the entry named `name`, or false.
func FindEntry(entries []scrape.Entry, name string) (scrape.Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return scrape.Entry{}, false
}
