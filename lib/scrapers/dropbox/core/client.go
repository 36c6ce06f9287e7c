package core

import (
	"context"
	"net/url"
	"strings"

	"dbxbridge/lib/scrapers/dropbox/scrape"
	"dbxbridge/lib/scrapers/dropbox/session"
)

type Endpoints struct {
	Login   string `json:"login"`
	Home    string `json:"home"`
	Listing string `json:"listing"`
	Content string `json:"content"`
	Upload  string `json:"upload"`
	// the path a successful login redirects to
	HomeLocation string `json:"home_location"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:        "https://www.dropbox.com/login",
		Home:         "https://www.dropbox.com/home",
		Listing:      "https://www.dropbox.com/browse_plain",
		Content:      "https://dl-web.dropbox.com/get",
		Upload:       "https://dl-web.dropbox.com/upload",
		HomeLocation: "/home",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	defaults := DefaultEndpoints()
	if e.Login == "" {
		e.Login = defaults.Login
	}
	if e.Home == "" {
		e.Home = defaults.Home
	}
	if e.Listing == "" {
		e.Listing = defaults.Listing
	}
	if e.Content == "" {
		e.Content = defaults.Content
	}
	if e.Upload == "" {
		e.Upload = defaults.Upload
	}
	if e.HomeLocation == "" {
		e.HomeLocation = defaults.HomeLocation
	}
	return e
}

func (e Endpoints) listingUrl(dir string) string {
	escaped := strings.TrimLeft(Escape(CleanPath(dir)), "/")
	return strings.TrimRight(e.Listing, "/") + "/" + escaped + "?no_js=true"
}

func (e Endpoints) contentUrl(fullPath, token string) string {
	escaped := strings.TrimLeft(Escape(CleanPath(fullPath)), "/")
	return strings.TrimRight(e.Content, "/") + "/" + escaped + "?w=" + url.QueryEscape(token)
}

// the path of the login endpoint, used to find the login form
func (e Endpoints) loginAction() string {
	parsed, err := url.Parse(e.Login)
	if err != nil || parsed.Path == "" {
		return "/login"
	}
	return parsed.Path
}

type ClientOptions struct {
	Email     string
	Password  string
	Endpoints Endpoints
	Session   session.Options
}

// Client talks to the web UI through a single session. It is not safe for
// concurrent use.
type Client struct {
	endpoints Endpoints
	email     string
	password  string

	session  *session.Session
	loggedIn bool
	tokens   TokenCache
}

func NewClient(opts ClientOptions) *Client {
	return &Client{
		endpoints: opts.Endpoints.withDefaults(),
		email:     opts.Email,
		password:  opts.Password,
		session:   session.New(opts.Session),
		tokens:    TokenCache{},
	}
}

// Connect creates a client and logs in.
func Connect(ctx context.Context, opts ClientOptions) (*Client, error) {
	client := NewClient(opts)
	err := client.Login(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

// Service is the remote file surface of a Client, implemented by decorators
// such as the read-through cache.
type Service interface {
	ListFiles(ctx context.Context, dir string) ([]scrape.Entry, error)
	FetchFile(ctx context.Context, path, token string) (File, error)
	Download(ctx context.Context, remotePath, localPath, token string) error
	Upload(ctx context.Context, localPath, remoteDir string) error
}

var _ Service = (*Client)(nil)
