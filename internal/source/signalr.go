package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ets2dash/tdashboard/internal/api"
	"github.com/ets2dash/tdashboard/pkg/core"
)

const (
	defaultRetryInterval = 500 * time.Millisecond
	defaultMaxRetry      = 5 * time.Second
	defaultMaxTries      = 10
	abortTimeout         = 2 * time.Second
)

// SignalR polls a live telemetry server. The connection is negotiated on
// first use and again after any failed request.
type SignalR struct {
	client *api.Client
	logger *slog.Logger

	initialInterval time.Duration
	maxInterval     time.Duration
	maxTries        uint

	mu        sync.Mutex
	connected bool
	messageID string
}

// SignalROption configures a SignalR source.
type SignalROption func(*SignalR)

// WithRetry sets the reconnect backoff. maxTries of 0 retries until ctx is done.
func WithRetry(initial, maxInterval time.Duration, maxTries uint) SignalROption {
	return func(s *SignalR) {
		s.initialInterval = initial
		s.maxInterval = maxInterval
		s.maxTries = maxTries
	}
}

// NewSignalR creates a source reading from client.
func NewSignalR(client *api.Client, logger *slog.Logger, opts ...SignalROption) *SignalR {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SignalR{
		client:          client,
		logger:          logger,
		initialInterval: defaultRetryInterval,
		maxInterval:     defaultMaxRetry,
		maxTries:        defaultMaxTries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SignalR) Name() string { return TypeSignalR }

// Next requests the current snapshot, reconnecting with exponential backoff.
func (s *SignalR) Next(ctx context.Context) (*core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := backoff.Retry(ctx, func() (*core.Snapshot, error) {
		if !s.connected {
			if err := s.connect(ctx); err != nil {
				return nil, err
			}
		}
		snap, err := s.client.RequestData(ctx)
		if err != nil {
			s.connected = false
			return nil, err
		}
		return snap, nil
	}, s.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("signalr source %s: %w", s.client.BaseURL(), err)
	}
	return snap, nil
}

func (s *SignalR) retryOptions() []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxInterval = s.maxInterval

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.logger.Warn("Telemetry request failed, retrying", "error", err, "wait", wait)
		}),
	}
	if s.maxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(s.maxTries))
	}
	return opts
}

func (s *SignalR) connect(ctx context.Context) error {
	if _, err := s.client.Negotiate(ctx); err != nil {
		return err
	}
	messageID, err := s.client.Connect(ctx)
	if err != nil {
		return err
	}
	if err := s.client.Start(ctx); err != nil {
		return err
	}
	s.messageID = messageID
	s.connected = true
	s.logger.Info("Connected to telemetry server", "url", s.client.BaseURL())
	return nil
}

// Close aborts the server connection if one is open.
func (s *SignalR) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	s.connected = false

	ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()
	return s.client.Abort(ctx)
}
