package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets2dash/tdashboard/internal/api"
	"github.com/ets2dash/tdashboard/internal/api/apitest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fastRetry(tries uint) SignalROption {
	return WithRetry(time.Millisecond, 5*time.Millisecond, tries)
}

func TestSignalR_NegotiatesOnce(t *testing.T) {
	srv := apitest.NewServer(t, map[string]any{"truck": map[string]any{"id": "scania"}})
	src := NewSignalR(api.New(srv.URL), quietLogger(), fastRetry(3))
	t.Cleanup(func() { _ = src.Close() })

	for range 3 {
		snap, err := src.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "scania", snap.Truck.ID)
	}

	assert.Equal(t, 1, srv.Requests("/signalr/negotiate"))
	assert.Equal(t, 1, srv.Requests("/signalr/start"))
	assert.Equal(t, 3, srv.Requests("/signalr/send"))
	assert.Equal(t, TypeSignalR, src.Name())
}

func TestSignalR_RenegotiatesAfterFailure(t *testing.T) {
	srv := apitest.NewServer(t, map[string]any{"truck": map[string]any{"id": "daf"}})
	src := NewSignalR(api.New(srv.URL), quietLogger(), fastRetry(5))

	_, err := src.Next(context.Background())
	require.NoError(t, err)

	srv.FailNext("/signalr/send", 2)
	snap, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "daf", snap.Truck.ID)
	assert.Equal(t, 3, srv.Requests("/signalr/negotiate"))
}

func TestSignalR_GivesUpAfterMaxTries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	src := NewSignalR(api.New(srv.URL), quietLogger(), fastRetry(2))
	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signalr source")
	assert.Contains(t, err.Error(), "status 503")
}

func TestSignalR_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSignalR(api.New(srv.URL), quietLogger(), fastRetry(0))
	_, err := src.Next(ctx)
	require.Error(t, err)
}

func TestSignalR_CloseAborts(t *testing.T) {
	srv := apitest.NewServer(t, map[string]any{})
	src := NewSignalR(api.New(srv.URL), quietLogger())

	require.NoError(t, src.Close(), "close before connect is a no-op")
	assert.Equal(t, 0, srv.Requests("/signalr/abort"))

	_, err := src.Next(context.Background())
	require.NoError(t, err)
	require.NoError(t, src.Close())
	assert.Equal(t, 1, srv.Requests("/signalr/abort"))
}
