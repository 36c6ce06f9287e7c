package core

import (
	"dbxbridge/lib/scrapers/dropbox/scrape"
)

// TokenCache remembers the last download token seen for each file in a
// listing, keyed by the escaped full path. Entries are never invalidated.
type TokenCache map[string]string

func tokenKey(fullPath string) string {
	return Escape(CleanPath(fullPath))
}

func (c TokenCache) Remember(entries []scrape.Entry) {
	for _, e := range entries {
		if !e.Fetchable() {
			continue
		}
		c[tokenKey(JoinPath(e.Path, e.Name))] = e.Token
	}
}

func (c TokenCache) Lookup(fullPath string) (string, bool) {
	token, ok := c[tokenKey(fullPath)]
	return token, ok
}
