package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/pkg/registry"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestAdminEndpoints(t *testing.T) {
	reg := registry.New("us-east-1", "000000000000")
	require.NoError(t, reg.Register("sqs", 9324, http.NotFoundHandler()))

	s := New(reg, 0, time.Second)
	ts := httptest.NewServer(s.adminRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health/services")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health registry.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	require.Len(t, health.Services, 1)
	assert.Equal(t, "sqs", health.Services[0].Name)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeAndGracefulShutdown(t *testing.T) {
	svcPort := freePort(t)
	adminPort := freePort(t)

	reg := registry.New("us-east-1", "000000000000")
	require.NoError(t, reg.Register("echo", svcPort, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		})))

	srv := New(reg, adminPort, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	waitForOK(t, fmt.Sprintf("http://127.0.0.1:%d/health", adminPort))

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/anything", svcPort))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	srv := New(registry.New("us-east-1", "000000000000"), freePort(t), time.Second)
	ctx := context.Background()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx))
}

func waitForOK(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("endpoint %s never became healthy", url)
}
