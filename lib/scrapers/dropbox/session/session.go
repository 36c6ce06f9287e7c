package session

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"dbxbridge/lib/restyutil"
	"dbxbridge/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
const DefaultTimeout = time.Second * 30

type Options struct {
	// defaults to DefaultUserAgent
	UserAgent string
	// defaults to DefaultTimeout
	Timeout          time.Duration
	CloudflareBypass bool
	// replaces the default transport, mostly for tests
	Transport http.RoundTripper
	// receives a dump of every exchange while debug logging is enabled
	DumpOutput restyutil.InstrumentOutput
}

// Session is an HTTP client that keeps a flat cookie map across requests
// and can attach a one-shot POST body to the next request.
//
// Redirects are never followed so that callers can inspect Location.
// A Session is not safe for concurrent use.
type Session struct {
	http *resty.Client

	cookieOrder []string
	cookies     map[string]string

	fields map[string]string
	files  map[string]string
}

func New(opts Options) *Session {
	client := resty.New()
	// resty installs a cookie jar by default, cookies are tracked manually
	client.SetCookieJar(nil)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	telemetry.InstrumentResty(client, "dbxbridge/lib/scrapers/dropbox/http")
	restyutil.InstrumentClient(client, opts.DumpOutput)

	return &Session{
		http:    client,
		cookies: map[string]string{},
		fields:  map[string]string{},
		files:   map[string]string{},
	}
}

// SetPostFields adds form fields to the pending POST body.
func (s *Session) SetPostFields(fields map[string]string) {
	for k, v := range fields {
		s.fields[k] = v
	}
}

// AttachFile adds a file upload to the pending POST body, which makes the
// next request multipart/form-data.
func (s *Session) AttachFile(field, localPath string) {
	s.files[field] = localPath
}

// HasPendingBody reports whether the next request will be a POST.
func (s *Session) HasPendingBody() bool {
	return len(s.fields) > 0 || len(s.files) > 0
}

func (s *Session) SetCookie(name, value string) {
	_, exists := s.cookies[name]
	if !exists {
		s.cookieOrder = append(s.cookieOrder, name)
	}
	s.cookies[name] = value
}

func (s *Session) Cookie(name string) (string, bool) {
	value, ok := s.cookies[name]
	return value, ok
}

// Cookies returns a copy of the known cookies.
func (s *Session) Cookies() map[string]string {
	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out
}

func (s *Session) cookieHeader() string {
	pairs := make([]string, 0, len(s.cookieOrder))
	for _, name := range s.cookieOrder {
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, s.cookies[name]))
	}
	return strings.Join(pairs, "; ")
}

func (s *Session) takeBody(req *resty.Request) bool {
	if !s.HasPendingBody() {
		return false
	}
	if len(s.fields) > 0 {
		req.SetFormData(s.fields)
	}
	if len(s.files) > 0 {
		fields := make([]string, 0, len(s.files))
		for field := range s.files {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			req.SetFile(field, s.files[field])
		}
	}
	s.fields = map[string]string{}
	s.files = map[string]string{}
	return true
}

// Request sends a GET, or a POST when a body is pending, to `url`.
// The pending body is cleared whether or not the request succeeds.
func (s *Session) Request(ctx context.Context, url string) (*Response, error) {
	req := s.http.R().SetContext(ctx)
	if len(s.cookies) > 0 {
		req.SetHeader("Cookie", s.cookieHeader())
	}

	method := http.MethodGet
	if s.takeBody(req) {
		method = http.MethodPost
	}

	res, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	for _, cookie := range res.Cookies() {
		s.SetCookie(cookie.Name, cookie.Value)
	}

	return &Response{
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
		Proto:      res.Proto(),
		Header:     res.Header(),
		Body:       res.Body(),
	}, nil
}
