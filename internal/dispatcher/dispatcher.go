// Package dispatcher routes pipeline events to storage backends, each
// behind its own optional queue.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// Kind identifies what an event carries.
type Kind string

const (
	KindStartSession Kind = "start_session"
	KindFrame        Kind = "frame"
	KindEndSession   Kind = "end_session"
)

// Event is one unit of work for a backend. Frame is set for KindFrame,
// Session for the session kinds.
type Event struct {
	Backend   string
	Kind      Kind
	Frame     *core.Frame
	Session   *core.Session
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("dispatcher closed")

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged logs every event at debug level and every failure at error level.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to the handler registered for their backend.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	failed    metric.Int64Counter
	dropped   metric.Int64Counter

	mu      sync.RWMutex
	closed  bool
	buffers map[string]chan Event
	wg      sync.WaitGroup
}

// New creates a Dispatcher using the global OTel meter (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Event),
		logger:   logger,
	}

	m := meter()
	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events waiting per backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for backend, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("backend", backend)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.events.failed",
		metric.WithDescription("Total events whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for backend. Registration is not safe to run
// concurrently with Dispatch.
func (d *Dispatcher) Register(backend string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := d.withMetrics(backend, h)

	if cfg.logged {
		handler = d.withLogging(backend, handler)
	}

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(backend, cfg.bufferSize, cfg.blocking, handler)
	}

	d.handlers[backend] = handler
}

// Dispatch routes an event to the handler of e.Backend.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", e.Backend)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

// Broadcast sends a copy of e to every registered backend and joins the errors.
func (d *Dispatcher) Broadcast(e Event) error {
	var errs []error
	for _, backend := range d.Backends() {
		e.Backend = backend
		if _, err := d.Dispatch(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HasHandler returns true if a handler is registered for backend.
func (d *Dispatcher) HasHandler(backend string) bool {
	_, ok := d.handlers[backend]
	return ok
}

// Backends returns the registered backend names in sorted order.
func (d *Dispatcher) Backends() []string {
	names := lo.Keys(d.handlers)
	slices.Sort(names)
	return names
}

// QueueLen returns the number of events waiting for backend.
func (d *Dispatcher) QueueLen(backend string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.buffers[backend])
}

// Close stops accepting events and waits until every queued event is handled.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) withBuffer(backend string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	d.mu.Lock()
	d.buffers[backend] = buffer
	d.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("backend", backend))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for e := range buffer {
			_, _ = h(e)
		}
	}()

	return func(e Event) (any, error) {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return nil, ErrClosed
		}

		if blocking {
			buffer <- e
			return "queued", nil
		}

		select {
		case buffer <- e:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, attrs)
			return nil, fmt.Errorf("queue full: %s", backend)
		}
	}
}

func (d *Dispatcher) withMetrics(backend string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		result, err := h(e)
		attrs := metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("kind", string(e.Kind)),
		)
		if err != nil {
			d.failed.Add(context.Background(), 1, attrs)
		} else {
			d.processed.Add(context.Background(), 1, attrs)
		}
		return result, err
	}
}

func (d *Dispatcher) withLogging(backend string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "backend", backend, "kind", e.Kind)

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "backend", backend, "kind", e.Kind, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "backend", backend, "kind", e.Kind, "duration", time.Since(start))
		}

		return result, err
	}
}
