package scrape

import (
	"path"
	"strings"
)

type Kind string

const (
	KindFile    Kind = "file"
	KindFolder  Kind = "folder"
	KindUnknown Kind = "unknown"
)

const UnknownIcon = "unknown"

// Entry is a single row of a directory listing.
type Entry struct {
	// the listed directory, unescaped
	Path string
	Name string
	Kind Kind
	// icon class without the "s_" prefix, eg. "page_white_text" or "folder"
	Icon     string
	Size     string
	Modified string
	// the "w" parameter required to download the entry, may be empty
	Token string
}

func (e Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// Fetchable reports whether the entry carries a download token.
func (e Entry) Fetchable() bool {
	return e.Token != ""
}

func (e Entry) FullPath() string {
	return path.Join("/", e.Path, e.Name)
}

func kindOf(icon, token string) Kind {
	if strings.Contains(icon, "folder") {
		return KindFolder
	}
	if icon != "" || token != "" {
		return KindFile
	}
	return KindUnknown
}
