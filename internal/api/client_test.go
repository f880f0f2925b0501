package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets2dash/tdashboard/internal/api/apitest"
)

func testSnapshot() map[string]any {
	return map[string]any{
		"game":  map[string]any{"connected": true, "gameName": "ETS", "maxTrailerCount": 1},
		"truck": map[string]any{"id": "scania", "speed": 72.4, "electricOn": true},
		"trailers": map[string]any{
			"0": map[string]any{"present": true, "wearBody": 0.2},
		},
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:25555/")
	assert.Equal(t, "http://localhost:25555", c.BaseURL())
	assert.Empty(t, c.Token())
}

func TestHealthcheck(t *testing.T) {
	srv := apitest.NewServer(t, testSnapshot())
	c := New(srv.URL)

	require.NoError(t, c.Healthcheck(context.Background()))
	assert.Equal(t, 1, srv.Requests("/config.json"))

	srv.FailNext("/config.json", 1)
	err := c.Healthcheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHealthcheck_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Healthcheck(context.Background())
	assert.Error(t, err)
}

func TestSkins(t *testing.T) {
	srv := apitest.NewServer(t, testSnapshot())

	skins, err := New(srv.URL).Skins(context.Background())
	require.NoError(t, err)
	require.Len(t, skins, 1)
	assert.Equal(t, "t-dashboard-4x", skins[0].Name)
	assert.Equal(t, 2048.0, skins[0].Width)
}

func TestNegotiateConnectStart(t *testing.T) {
	srv := apitest.NewServer(t, testSnapshot())
	c := New(srv.URL)
	ctx := context.Background()

	n, err := c.Negotiate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", n.ConnectionToken)
	assert.Equal(t, "1.5", n.ProtocolVersion)
	assert.Equal(t, "1", c.Token())

	msgID, err := c.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s-0,1", msgID)

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Abort(ctx))
	assert.Empty(t, c.Token())
}

func TestNegotiate_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"ConnectionToken": ""})
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).Negotiate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty connection token")
}

func TestRequestData(t *testing.T) {
	srv := apitest.NewServer(t, testSnapshot())
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.RequestData(ctx)
	require.Error(t, err, "send without a token is rejected")

	_, err = c.Negotiate(ctx)
	require.NoError(t, err)

	snap, err := c.RequestData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ETS", snap.Game.GameName)
	assert.Equal(t, "scania", snap.Truck.ID)
	assert.InDelta(t, 72.4, snap.Truck.Speed, 1e-9)
	require.Len(t, snap.Trailers, 1)
	assert.True(t, snap.Trailers[0].Present)

	srv.SetSnapshot(map[string]any{"game": map[string]any{"gameName": "ATS"}})
	snap, err = c.RequestData(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Game.IsATS())
}

func TestRequestData_InvocationIDMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/signalr/negotiate":
			_ = json.NewEncoder(w).Encode(map[string]string{"ConnectionToken": "7"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"I": "999", "R": map[string]any{}})
		}
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Negotiate(context.Background())
	require.NoError(t, err)

	_, err = c.RequestData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invocation id mismatch")
}

func TestPoll(t *testing.T) {
	srv := apitest.NewServer(t, testSnapshot())
	c := New(srv.URL)
	ctx := context.Background()
	_, err := c.Negotiate(ctx)
	require.NoError(t, err)

	snap, next, err := c.Poll(ctx, "s-0,1")
	require.NoError(t, err)
	assert.Nil(t, snap, "keep-alive carries no snapshot")
	assert.Equal(t, "s-0,1", next)

	srv.Push(map[string]any{"truck": map[string]any{"id": "volvo", "odometer": 1200.5}})
	snap, next, err = c.Poll(ctx, "s-0,1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "volvo", snap.Truck.ID)
	assert.Equal(t, "s-0,11", next)
}

func TestPoll_ContextCancelled(t *testing.T) {
	srv := apitest.NewServer(t, testSnapshot())
	c := New(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, next, err := c.Poll(ctx, "m1")
	require.Error(t, err)
	assert.Equal(t, "m1", next)
}

func TestDecodeUpdate(t *testing.T) {
	quoted, err := json.Marshal(`{"truck":{"id":"daf"}}`)
	require.NoError(t, err)

	snap, err := decodeUpdate(quoted)
	require.NoError(t, err)
	assert.Equal(t, "daf", snap.Truck.ID)

	snap, err = decodeUpdate(json.RawMessage(`{"truck":{"id":"man"}}`))
	require.NoError(t, err)
	assert.Equal(t, "man", snap.Truck.ID)

	_, err = decodeUpdate(json.RawMessage(`"not json"`))
	assert.Error(t, err)
}
