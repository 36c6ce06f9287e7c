package globals

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dbxbridge/lib/cachestore"
	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/services/webserver"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, DefaultConfig().Endpoints, cfg.Endpoints)
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, []string{"index.html", "index.htm", "index.php"}, cfg.DefaultDocuments)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	err := os.WriteFile(path, []byte(`{
		email: "someone@example.com",
		password: "from file",
		endpoints: {listing: "http://localhost:9000/browse_plain"},
		cache: {backend: "sqlite", path: "cache.db"},
		default_documents: ["home.html"],
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("DBXBRIDGE_PASSWORD", "from env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "someone@example.com", cfg.Email)
	require.Equal(t, "from env", cfg.Password)
	require.Equal(t, "http://localhost:9000/browse_plain", cfg.Endpoints.Listing)
	require.Equal(t, core.DefaultEndpoints().Login, cfg.Endpoints.Login)
	require.Equal(t, cachestore.BackendSqlite, cfg.Cache.Backend)
	require.Equal(t, cachestore.DefaultTTL, cfg.Cache.TTL())
	require.Equal(t, []string{"home.html"}, cfg.DefaultDocuments)
	require.Equal(t, "/", cfg.RootFolder)

	opts := cfg.ClientOptions()
	require.Equal(t, 30*time.Second, opts.Session.Timeout)
	require.Equal(t, "from env", opts.Password)
}

func TestLoadConfigEmptyDefaultDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	err := os.WriteFile(path, []byte(`{default_documents: []}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, cfg.DefaultDocuments)
	require.Empty(t, cfg.DefaultDocuments)
	require.NotNil(t, cfg.ServerOptions().DefaultDocuments)
	require.Equal(t, 8000, cfg.Server.Port)

	// decoding over the defaults leaves the package defaults untouched
	require.Equal(t, []string{"index.html", "index.htm", "index.php"}, webserver.DefaultDocuments)
}
