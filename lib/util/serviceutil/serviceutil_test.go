package serviceutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHttpServer(t *testing.T) {
	server := NewHttpServer(8080, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Proto))
	}))
	require.Equal(t, "0.0.0.0:8080", server.Addr)

	res := httptest.NewRecorder()
	server.Handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	body, err := io.ReadAll(res.Result().Body)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "HTTP/1.1", string(body))
}
