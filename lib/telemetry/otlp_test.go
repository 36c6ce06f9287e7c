package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOtlpEndpoint(t *testing.T) {
	proto, url, err := OtlpConnConfig{
		GrpcEndpoint: "http://localhost:4317",
		HttpEndpoint: "http://localhost:4318",
	}.endpoint()
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, protocolGrpc, proto)
	require.Equal(t, "http://localhost:4317", url)

	proto, url, err = OtlpConnConfig{HttpEndpoint: "http://localhost:4318"}.endpoint()
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, protocolHttp, proto)
	require.Equal(t, "http://localhost:4318", url)

	_, _, err = OtlpConnConfig{}.endpoint()
	require.ErrorIs(t, err, ErrNoEndpoint)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	_, err := Setup(context.Background(), "dbxbridge-test", Config{})
	require.ErrorIs(t, err, ErrNoEndpoint)
}
