package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(t *testing.T, h http.HandlerFunc) *VSCOResolver {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewVSCOResolver(VSCOResolverConfig{Endpoint: srv.URL + "/vsco/", Logger: testLogger()})
}

func TestVSCOResolver_PostsFormAndDecodes(t *testing.T) {
	const text = "check this out https://vsco.co/alice/media/abc123"
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/vsco/", req.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
		require.NoError(t, req.ParseForm())
		assert.Equal(t, text, req.PostForm.Get("uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":{"image":"http://x/a.mp4","description":"d","profileLink":"p","name":"n"}}`)
	})

	media, err := r.Resolve(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "http://x/a.mp4", media.Image)
	assert.Equal(t, "d", media.Description)
	assert.Equal(t, "p", media.ProfileLink)
	assert.Equal(t, "n", media.Name)
}

func TestVSCOResolver_MissingResult(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	})

	media, err := r.Resolve(context.Background(), "https://vsco.co/a/media/1")
	require.NoError(t, err)
	assert.Empty(t, media.Image)
}

func TestVSCOResolver_NonJSON(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	_, err := r.Resolve(context.Background(), "https://vsco.co/a/media/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode resolver response")
}

func TestVSCOResolver_NonJSONErrorStatus(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := r.Resolve(context.Background(), "https://vsco.co/a/media/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestVSCOResolver_SingleAttempt(t *testing.T) {
	calls := 0
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := r.Resolve(context.Background(), "https://vsco.co/a/media/1")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestVSCOResolver_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	r := NewVSCOResolver(VSCOResolverConfig{Endpoint: endpoint, Logger: testLogger()})
	_, err := r.Resolve(context.Background(), "https://vsco.co/a/media/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve request")
}

func TestNewVSCOResolver_Defaults(t *testing.T) {
	r := NewVSCOResolver(VSCOResolverConfig{Logger: testLogger()})
	assert.Equal(t, DefaultVSCOEndpoint, r.endpoint)
	assert.Equal(t, defaultHTTPTimeout, r.client.Timeout)
}

func TestVSCOResolver_Ping(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodGet, req.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	status, err := r.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestVSCOResolver_PingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	r := NewVSCOResolver(VSCOResolverConfig{Endpoint: srv.URL, Logger: testLogger()})

	_, err := r.Ping(context.Background())
	assert.Error(t, err)
}
