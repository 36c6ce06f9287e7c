package globals

import (
	"errors"
	"log/slog"
	"os"
	"slices"
	"time"

	"dbxbridge/lib/cachestore"
	"dbxbridge/lib/configutil"
	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/scrapers/dropbox/session"
	"dbxbridge/services/webserver"
)

type HttpConfig struct {
	TimeoutSeconds   int    `json:"timeout_seconds"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// request dumps are written here when verbose, may start with <dev_state>
	DumpDir string `json:"dump_dir"`
}

type ServerConfig struct {
	Port int `json:"port"`
}

type Config struct {
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	Endpoints core.Endpoints    `json:"endpoints"`
	Cache     cachestore.Config `json:"cache"`

	RootFolder       string   `json:"root_folder"`
	DefaultDocuments []string `json:"default_documents"`

	Http   HttpConfig   `json:"http"`
	Server ServerConfig `json:"server"`
}

func DefaultConfig() Config {
	return Config{
		Endpoints: core.DefaultEndpoints(),
		Cache: cachestore.Config{
			Backend:    cachestore.BackendMemory,
			TtlSeconds: int(cachestore.DefaultTTL / time.Second),
			Size:       cachestore.DefaultSize,
		},
		RootFolder:       "/",
		DefaultDocuments: slices.Clone(webserver.DefaultDocuments),
		Http: HttpConfig{
			TimeoutSeconds: int(session.DefaultTimeout / time.Second),
			UserAgent:      session.DefaultUserAgent,
			DumpDir:        "<dev_state>/resty",
		},
		Server: ServerConfig{
			Port: 8000,
		},
	}
}

// LoadConfig reads `path` (and its .local override) over the defaults.
// A missing file is not an error. DBXBRIDGE_EMAIL and DBXBRIDGE_PASSWORD
// take precedence over the file.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfigOver(DefaultConfig(), path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		cfg = DefaultConfig()
	} else if err != nil {
		return Config{}, err
	}

	email, ok := os.LookupEnv("DBXBRIDGE_EMAIL")
	if ok {
		cfg.Email = email
	}
	password, ok := os.LookupEnv("DBXBRIDGE_PASSWORD")
	if ok {
		cfg.Password = password
	}
	return cfg, nil
}

func (c Config) ClientOptions() core.ClientOptions {
	return core.ClientOptions{
		Email:     c.Email,
		Password:  c.Password,
		Endpoints: c.Endpoints,
		Session: session.Options{
			UserAgent:        c.Http.UserAgent,
			Timeout:          time.Duration(c.Http.TimeoutSeconds) * time.Second,
			CloudflareBypass: c.Http.CloudflareBypass,
		},
	}
}

func (c Config) ServerOptions() webserver.Options {
	return webserver.Options{
		RootFolder:       c.RootFolder,
		DefaultDocuments: c.DefaultDocuments,
	}
}
