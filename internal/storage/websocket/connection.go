package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	ws "github.com/gorilla/websocket"

	"github.com/ets2dash/tdashboard/pkg/streaming"
)

const (
	sendChSize = 4096
	ackChSize  = 16
	writeWait  = 10 * time.Second
)

// connection owns one live WebSocket at a time. Each socket gets its own
// read and write loop; a failing loop hands the socket to reconnect, which
// ignores sockets that were already replaced.
type connection struct {
	mu       sync.Mutex
	conn     *ws.Conn
	connDone chan struct{} // closed when conn is replaced
	closed   bool
	startMsg []byte

	sendCh chan []byte
	ackCh  chan streaming.AckMessage
	ctx    context.Context
	cancel context.CancelFunc

	wsURL  string
	secret string
	retry  retryPolicy

	sent    atomic.Uint64
	dropped atomic.Uint64

	logger *slog.Logger
}

type retryPolicy struct {
	initial  time.Duration
	max      time.Duration
	maxTries uint
}

func newConnection(logger *slog.Logger, retry retryPolicy) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		sendCh: make(chan []byte, sendChSize),
		ackCh:  make(chan streaming.AckMessage, ackChSize),
		ctx:    ctx,
		cancel: cancel,
		retry:  retry,
		logger: logger,
	}
}

// dial connects once and starts the loops. Later failures reconnect on their own.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}

	c.mu.Lock()
	done := c.attach(conn)
	c.mu.Unlock()

	go c.writeLoop(conn, done)
	go c.readLoop(conn)
	return nil
}

// attach makes conn the live socket. Callers hold mu.
func (c *connection) attach(conn *ws.Conn) chan struct{} {
	c.conn = conn
	c.connDone = make(chan struct{})
	return c.connDone
}

func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.secret != "" {
		q := u.Query()
		q.Set("secret", c.secret)
		u.RawQuery = q.Encode()
	}

	dialer := *ws.DefaultDialer
	conn, _, err := dialer.DialContext(c.ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func writeMessage(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// writeLoop drains sendCh into conn until conn is replaced. A message that
// could not be written goes back on the queue for the next socket.
func (c *connection) writeLoop(conn *ws.Conn, done <-chan struct{}) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-done:
			return
		case data := <-c.sendCh:
			select {
			case <-done:
				c.send(data)
				return
			default:
			}
			if err := writeMessage(conn, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				c.send(data)
				go c.reconnect(conn)
				return
			}
			c.sent.Add(1)
		}
	}
}

// readLoop routes acks to ackCh. Anything else from the server is ignored.
func (c *connection) readLoop(conn *ws.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Warn("WebSocket read error", "error", err)
			go c.reconnect(conn)
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}
		select {
		case c.ackCh <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

// reconnect replaces failed with a new socket, replaying the cached
// start_session message first so the server can attach the frames that follow.
func (c *connection) reconnect(failed *ws.Conn) {
	c.mu.Lock()
	if c.closed || c.conn != failed {
		c.mu.Unlock()
		return
	}
	_ = failed.Close()
	close(c.connDone)
	c.conn = nil
	c.mu.Unlock()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.initial
	b.MaxInterval = c.retry.max

	attempt := 0
	conn, err := backoff.Retry(c.ctx, func() (*ws.Conn, error) {
		attempt++
		conn, err := c.dialOnce()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		start := c.startMsg
		c.mu.Unlock()
		if start != nil {
			if err := writeMessage(conn, start); err != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("replay start_session: %w", err)
			}
		}
		return conn, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.retry.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", wait, "error", err)
		}),
	)
	if err != nil {
		c.logger.Error("WebSocket reconnect failed", "attempts", attempt, "error", err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	done := c.attach(conn)
	c.mu.Unlock()

	c.logger.Info("WebSocket reconnected", "attempts", attempt)
	go c.writeLoop(conn, done)
	go c.readLoop(conn)
}

// send queues data for the write loop. It never blocks; a full queue drops.
func (c *connection) send(data []byte) {
	select {
	case c.sendCh <- data:
	default:
		c.dropped.Add(1)
		c.logger.Warn("WebSocket send channel full, dropping message")
	}
}

// sendAndWait sends data and blocks until the server acks ackFor or the
// timeout expires. Stale acks from earlier replays are discarded first.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	for drained := false; !drained; {
		select {
		case <-c.ackCh:
		default:
			drained = true
		}
	}

	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.ackCh:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.ctx.Done():
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

func (c *connection) setStart(data []byte) {
	c.mu.Lock()
	c.startMsg = data
	c.mu.Unlock()
}

// close sends a close frame and stops all loops.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}
	return nil
}
