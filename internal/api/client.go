// Package api is a client for the telemetry server's HTTP and SignalR
// long-polling endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// Hub is the SignalR hub name exposed by the telemetry server.
const Hub = "ets2telemetryhub"

// Poll requests are held open by the server for up to 10s.
const pollTimeout = 15 * time.Second

// SkinConfig describes one dashboard skin installed on the server.
type SkinConfig struct {
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Negotiation is the server's reply to /signalr/negotiate.
type Negotiation struct {
	URL                     string  `json:"Url"`
	ConnectionToken         string  `json:"ConnectionToken"`
	ConnectionID            string  `json:"ConnectionId"`
	KeepAliveTimeout        float64 `json:"KeepAliveTimeout"`
	DisconnectTimeout       float64 `json:"DisconnectTimeout"`
	ConnectionTimeout       float64 `json:"ConnectionTimeout"`
	TryWebSockets           bool    `json:"TryWebSockets"`
	ProtocolVersion         string  `json:"ProtocolVersion"`
	TransportConnectTimeout float64 `json:"TransportConnectTimeout"`
	LongPollDelay           float64 `json:"LongPollDelay"`
}

type invocation struct {
	Hub    string `json:"H"`
	Method string `json:"M"`
	Args   []any  `json:"A"`
	ID     string `json:"I"`
}

type invocationResult struct {
	ID     string          `json:"I"`
	Result json.RawMessage `json:"R"`
}

type hubMessage struct {
	Hub    string            `json:"H"`
	Method string            `json:"M"`
	Args   []json.RawMessage `json:"A"`
}

type persistentResponse struct {
	MessageID string       `json:"C"`
	Messages  []hubMessage `json:"M"`
}

// Client talks to one telemetry server. Negotiate must succeed before the
// SignalR calls are used.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pollClient *http.Client

	mu    sync.RWMutex
	token string

	invocationID atomic.Uint64
}

// New creates a client for the server at baseURL, e.g. http://localhost:25555.
func New(baseURL string) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport)
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second, Transport: transport},
		pollClient: &http.Client{Timeout: pollTimeout, Transport: transport},
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the connection token from the last negotiation.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Healthcheck checks that the telemetry server answers.
func (c *Client) Healthcheck(ctx context.Context) error {
	resp, err := c.do(ctx, c.httpClient, http.MethodGet, "/config.json", nil, nil)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Skins lists the dashboard skins the server hosts.
func (c *Client) Skins(ctx context.Context) ([]SkinConfig, error) {
	var body struct {
		Skins []SkinConfig `json:"skins"`
	}
	if err := c.getJSON(ctx, "/config.json", nil, &body); err != nil {
		return nil, fmt.Errorf("fetch skins: %w", err)
	}
	return body.Skins, nil
}

// Negotiate opens a SignalR connection and stores its token.
func (c *Client) Negotiate(ctx context.Context) (Negotiation, error) {
	var n Negotiation
	q := url.Values{"clientProtocol": {"1.5"}, "connectionData": {hubData()}}
	if err := c.getJSON(ctx, "/signalr/negotiate", q, &n); err != nil {
		return Negotiation{}, fmt.Errorf("negotiate: %w", err)
	}
	if n.ConnectionToken == "" {
		return Negotiation{}, fmt.Errorf("negotiate: empty connection token")
	}

	c.mu.Lock()
	c.token = n.ConnectionToken
	c.mu.Unlock()
	return n, nil
}

// Connect starts the long-polling transport and returns the initial message id.
func (c *Client) Connect(ctx context.Context) (string, error) {
	var r persistentResponse
	if err := c.getJSON(ctx, "/signalr/connect", c.transportQuery(), &r); err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	return r.MessageID, nil
}

// Start confirms the connection.
func (c *Client) Start(ctx context.Context) error {
	var r struct {
		Response string `json:"Response"`
	}
	if err := c.getJSON(ctx, "/signalr/start", c.transportQuery(), &r); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if r.Response != "started" {
		return fmt.Errorf("start: unexpected response %q", r.Response)
	}
	return nil
}

// Ping keeps the connection alive.
func (c *Client) Ping(ctx context.Context) error {
	var r struct {
		Response string `json:"Response"`
	}
	if err := c.getJSON(ctx, "/signalr/ping", nil, &r); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if r.Response != "pong" {
		return fmt.Errorf("ping: unexpected response %q", r.Response)
	}
	return nil
}

// Abort closes the connection on the server side.
func (c *Client) Abort(ctx context.Context) error {
	resp, err := c.do(ctx, c.httpClient, http.MethodPost, "/signalr/abort", c.transportQuery(), nil)
	if err != nil {
		return fmt.Errorf("abort: %w", err)
	}
	resp.Body.Close()

	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return nil
}

// RequestData invokes the hub's RequestData method and returns the current snapshot.
func (c *Client) RequestData(ctx context.Context) (*core.Snapshot, error) {
	inv := invocation{
		Hub:    Hub,
		Method: "RequestData",
		Args:   []any{},
		ID:     fmt.Sprint(c.invocationID.Add(1) - 1),
	}
	data, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("encode invocation: %w", err)
	}

	resp, err := c.do(ctx, c.httpClient, http.MethodPost, "/signalr/send", c.transportQuery(), url.Values{"data": {string(data)}})
	if err != nil {
		return nil, fmt.Errorf("request data: %w", err)
	}
	defer resp.Body.Close()

	var res invocationResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode invocation result: %w", err)
	}
	if res.ID != inv.ID {
		return nil, fmt.Errorf("invocation id mismatch: sent %s, got %s", inv.ID, res.ID)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(res.Result, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Poll waits for the next UpdateData push. It returns a nil snapshot on a
// keep-alive, together with the message id to send on the next poll.
func (c *Client) Poll(ctx context.Context, messageID string) (*core.Snapshot, string, error) {
	resp, err := c.do(ctx, c.pollClient, http.MethodPost, "/signalr/poll", c.transportQuery(), url.Values{"messageId": {messageID}})
	if err != nil {
		return nil, messageID, fmt.Errorf("poll: %w", err)
	}
	defer resp.Body.Close()

	var r persistentResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, messageID, fmt.Errorf("decode poll response: %w", err)
	}
	if r.MessageID != "" {
		messageID = r.MessageID
	}

	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if !strings.EqualFold(m.Hub, Hub) || m.Method != "UpdateData" || len(m.Args) == 0 {
			continue
		}
		snap, err := decodeUpdate(m.Args[0])
		if err != nil {
			return nil, messageID, err
		}
		return snap, messageID, nil
	}
	return nil, messageID, nil
}

// decodeUpdate accepts the telemetry either as a JSON string holding the
// document or as the document itself.
func decodeUpdate(arg json.RawMessage) (*core.Snapshot, error) {
	raw := []byte(arg)
	var s string
	if err := json.Unmarshal(arg, &s); err == nil {
		raw = []byte(s)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}
	return &snap, nil
}

func hubData() string {
	return `[{"name":"` + Hub + `"}]`
}

func (c *Client) transportQuery() url.Values {
	return url.Values{
		"transport":       {"longPolling"},
		"clientProtocol":  {"1.5"},
		"connectionToken": {c.Token()},
		"connectionData":  {hubData()},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, c.httpClient, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends the request and fails on any non-200 status.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, query, form url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
	}
	return resp, nil
}
