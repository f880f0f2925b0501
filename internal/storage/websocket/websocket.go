// Package websocket streams frames to a remote collector as JSON envelopes.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ets2dash/tdashboard/pkg/core"
	"github.com/ets2dash/tdashboard/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string

	// Zero values use the defaults below.
	AckTimeout       time.Duration
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	MaxReconnects    uint
}

const (
	defaultAckTimeout       = 10 * time.Second
	defaultReconnectInitial = time.Second
	defaultReconnectMax     = 30 * time.Second
	defaultMaxReconnects    = 10
)

// Backend streams session and frame envelopes over WebSocket.
// It implements storage.Backend but not storage.Exporter.
type Backend struct {
	conn   *connection
	cfg    Config
	frames atomic.Uint64
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	if cfg.ReconnectInitial <= 0 {
		cfg.ReconnectInitial = defaultReconnectInitial
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = defaultReconnectMax
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = defaultMaxReconnects
	}
	return &Backend{
		conn: newConnection(logger.With("backend", "websocket"), retryPolicy{
			initial:  cfg.ReconnectInitial,
			max:      cfg.ReconnectMax,
			maxTries: cfg.MaxReconnects,
		}),
		cfg: cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	env, err := streaming.NewEnvelope(msgType, payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartSession announces the session and waits for the server ack. The
// message is cached and replayed after every reconnect.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}
	b.conn.setStart(data)
	b.frames.Store(0)
	return b.conn.sendAndWait(data, streaming.TypeStartSession, b.cfg.AckTimeout)
}

// EndSession sends end_session and waits for the server ack.
func (b *Backend) EndSession(s *core.Session) error {
	payload := streaming.EndSessionPayload{FrameCount: b.frames.Load()}
	if s != nil {
		payload.SessionID = s.ID
	}
	data, err := marshalEnvelope(streaming.TypeEndSession, payload)
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndSession, b.cfg.AckTimeout)

	b.conn.setStart(nil)
	return err
}

// RecordFrame sends the frame without waiting.
func (b *Backend) RecordFrame(f *core.Frame) error {
	data, err := marshalEnvelope(streaming.TypeFrame, streaming.FramePayload{Frame: f})
	if err != nil {
		return err
	}
	b.frames.Add(1)
	b.conn.send(data)
	return nil
}

// Stats returns the number of messages written and dropped.
func (b *Backend) Stats() (sent, dropped uint64) {
	return b.conn.sent.Load(), b.conn.dropped.Load()
}
