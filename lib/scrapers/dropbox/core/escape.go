package core

import (
	"net/url"
	"path"
	"strings"
)

var escapeReplacer = strings.NewReplacer(
	"+", "%20",
	"_", "%5F",
	"%2E", ".",
	"-", "%2D",
	"%2F", "/",
	"%3A", ":",
)

// Escape encodes a remote path the way the web UI expects it in URLs:
// query escaping with spaces as %20, "_" and "-" always escaped, and "/",
// ":" and "." left readable. "~" is left as is.
func Escape(s string) string {
	return escapeReplacer.Replace(url.QueryEscape(s))
}

// CleanPath returns the canonical absolute form of a remote path,
// "docs/" and "/docs" both become "/docs".
func CleanPath(p string) string {
	return path.Clean("/" + p)
}

// JoinPath joins a remote directory and a name into a canonical path.
func JoinPath(dir, name string) string {
	return path.Join(CleanPath(dir), name)
}
