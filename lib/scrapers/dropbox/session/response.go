package session

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

type Response struct {
	StatusCode int
	// e.g. "302 Found"
	Status string
	Proto  string
	Header http.Header
	Body   []byte
}

// Location returns the redirect target, resolved against `base` when it is
// relative. The empty string is returned when there is none.
func (r *Response) Location(base string) string {
	location := r.Header.Get("Location")
	if location == "" {
		return ""
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return location
	}
	resolved, err := baseUrl.Parse(location)
	if err != nil {
		return location
	}
	return resolved.String()
}

// Raw renders the response as it looked on the wire: status line, headers,
// a blank line, then the body.
func (r *Response) Raw() string {
	var sb strings.Builder
	proto := r.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	sb.WriteString(proto)
	sb.WriteByte(' ')
	sb.WriteString(r.Status)
	sb.WriteString("\r\n")

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\r\n")
		}
	}
	sb.WriteString("\r\n")
	sb.Write(r.Body)
	return sb.String()
}
