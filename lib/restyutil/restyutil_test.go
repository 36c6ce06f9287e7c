package restyutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func TestRedactCookie(t *testing.T) {
	require.Equal(t, "gvc=<redacted>; jar=<redacted>", redactCookie("gvc=abc; jar=123"))
	require.Equal(t, "t=<redacted>; Path=<redacted>; HttpOnly", redactCookie("t=xyz; Path=/; HttpOnly"))
}

func TestFormatHeaders(t *testing.T) {
	formatted := formatHeaders(http.Header{
		"X-Test": {"1"},
		"Cookie": {"jar=secret"},
		"Accept": {"text/html"},
	})
	require.Equal(t, "Accept: text/html\nCookie: jar=<redacted>\nX-Test: 1", formatted)
	require.NotContains(t, formatted, "secret")
}

func TestInstrumentClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "jar=hidden")
		w.Write([]byte("listing body"))
	}))
	defer srv.Close()

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	output := &memoryOutput{}
	client := resty.New()
	InstrumentClient(client, output)

	_, err := client.R().Get(srv.URL + "/browse_plain/docs")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, output.messages, 1)
	message := output.messages["1"]
	require.Contains(t, message, "---- REQUEST ----")
	require.Contains(t, message, "GET "+srv.URL+"/browse_plain/docs")
	require.Contains(t, message, "listing body")
	require.Contains(t, message, "Set-Cookie: jar=<redacted>")
	require.False(t, strings.Contains(message, "hidden"))
}

func TestFormatRequestBody(t *testing.T) {
	require.Equal(t, "", formatRequestBody(nil))

	req := httptest.NewRequest(http.MethodGet, "/browse_plain/docs", nil)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("t=abc"))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("t=abc")), nil
	}
	require.Equal(t, "t=abc", formatRequestBody(req))
}

func TestInstrumentClientBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	output := &memoryOutput{}
	client := resty.New()
	InstrumentClient(client, output)

	_, err := client.R().Get(srv.URL + "/login")
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.R().
		SetFormData(map[string]string{"login_email": "someone@example.com"}).
		Post(srv.URL + "/login")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, output.messages, 2)
	require.Contains(t, output.messages["1"], "GET "+srv.URL+"/login")
	require.Contains(t, output.messages["2"], "POST "+srv.URL+"/login")
}

func TestInstrumentClientNilOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := resty.New()
	InstrumentClient(client, nil)
	res, err := client.R().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "ok", res.String())
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dir, "stale")
	err = os.WriteFile(stale, []byte("old"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	output, err := NewFilesystemOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	_, err = os.Stat(stale)
	require.ErrorIs(t, err, os.ErrNotExist)

	output.Write("7", "contents")
	written, err := os.ReadFile(filepath.Join(dir, "7"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "contents", string(written))
}
