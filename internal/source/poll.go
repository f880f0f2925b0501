package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v5"

	"github.com/ets2dash/tdashboard/internal/api"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Push waits for the UpdateData messages the telemetry server broadcasts
// over the long-poll transport. It shares connection handling and retry
// settings with SignalR.
type Push struct {
	*SignalR
}

// NewPush creates a push source reading from client.
func NewPush(client *api.Client, logger *slog.Logger, opts ...SignalROption) *Push {
	return &Push{SignalR: NewSignalR(client, logger, opts...)}
}

func (p *Push) Name() string { return TypePoll }

// Next blocks until the server pushes a snapshot. Keep-alive answers are
// skipped; the message id of every answer is carried into the next poll.
func (p *Push) Next(ctx context.Context) (*core.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, err := backoff.Retry(ctx, func() (*core.Snapshot, error) {
		for {
			if !p.connected {
				if err := p.connect(ctx); err != nil {
					return nil, err
				}
			}
			snap, messageID, err := p.client.Poll(ctx, p.messageID)
			if err != nil {
				p.connected = false
				if ctx.Err() != nil {
					return nil, backoff.Permanent(ctx.Err())
				}
				return nil, err
			}
			p.messageID = messageID
			if snap != nil {
				return snap, nil
			}
		}
	}, p.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("poll source %s: %w", p.client.BaseURL(), err)
	}
	return snap, nil
}

// MessageID returns the id the next poll will send.
func (p *Push) MessageID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messageID
}
