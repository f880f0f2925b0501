// Package pipeline runs the tick loop: it pulls snapshots from a source,
// formats and renders them and hands the resulting frames to the dispatcher.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ets2dash/tdashboard/internal/dispatcher"
	"github.com/ets2dash/tdashboard/internal/formatter"
	"github.com/ets2dash/tdashboard/internal/render"
	"github.com/ets2dash/tdashboard/internal/session"
	"github.com/ets2dash/tdashboard/internal/source"
	"github.com/ets2dash/tdashboard/pkg/core"
)

const defaultInterval = 250 * time.Millisecond

// Broadcaster sends an event to every registered backend.
type Broadcaster interface {
	Broadcast(e dispatcher.Event) error
}

// Config controls the tick loop.
type Config struct {
	Interval time.Duration
	Controls render.ControlsConfig
}

// Stats is a point-in-time copy of the pipeline counters.
type Stats struct {
	SessionID      string
	FramesProduced uint64
	SourceErrors   uint64
	DispatchErrors uint64
	LastTick       time.Duration
}

// Pipeline owns the session lifecycle and the render controls.
type Pipeline struct {
	cfg       Config
	src       source.Source
	formatter *formatter.Formatter
	out       Broadcaster
	sessions  *session.Context
	controls  *render.Controls
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []core.Command

	produced     atomic.Uint64
	sourceErrs   atomic.Uint64
	dispatchErrs atomic.Uint64
	lastTick     atomic.Int64
}

// New creates a pipeline. sessions may be shared with the logging context.
func New(cfg Config, src source.Source, f *formatter.Formatter, out Broadcaster, sessions *session.Context, logger *slog.Logger) *Pipeline {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		sessions = session.NewContext()
	}
	p := &Pipeline{
		cfg:       cfg,
		src:       src,
		formatter: f,
		out:       out,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
	p.controls = render.NewControls(cfg.Controls, p.queue)
	return p
}

// Run ticks until ctx is done or the source is exhausted. The active session
// is ended before Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	p.controls.Start()
	defer p.controls.Stop()
	defer p.endSession()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.logger.Info("Pipeline started", "source", p.src.Name(), "interval", p.cfg.Interval, "locale", p.formatter.Locale().String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := p.Tick(ctx)
			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				p.logger.Info("Source exhausted", "source", p.src.Name())
				return nil
			case ctx.Err() != nil:
				return nil
			default:
				return err
			}
		}
	}
}

// Tick processes one snapshot. Source errors other than io.EOF and context
// cancellation are counted and logged, not returned.
func (p *Pipeline) Tick(ctx context.Context) error {
	start := time.Now()
	snap, err := p.src.Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return err
		}
		p.sourceErrs.Add(1)
		p.logger.Warn("Error reading snapshot", "source", p.src.Name(), "error", err)
		return nil
	}
	if snap == nil {
		return nil
	}

	if cur, ok := p.sessions.Current(); !ok {
		p.startSession(snap)
	} else if cur.TruckMake == "" && snap.Truck.Make != "" {
		p.sessions.SetTruck(snap.Truck.Make)
	}

	d := p.formatter.Format(snap)
	l := p.formatter.Locale()
	cmds := render.Render(snap, d, l)
	cmds = append(cmds, p.drainPending()...)

	frame := &core.Frame{
		Seq:       p.sessions.CountFrame(),
		Time:      p.now().UTC(),
		SessionID: p.sessions.ID(),
		Locale:    l.String(),
		Game:      gameOf(snap),
		Snapshot:  snap,
		Derived:   d,
		Commands:  cmds,
	}
	p.broadcast(dispatcher.Event{Kind: dispatcher.KindFrame, Frame: frame, Timestamp: frame.Time})

	p.produced.Add(1)
	p.lastTick.Store(int64(time.Since(start)))
	return nil
}

// SwitchDial rotates the big dial. The commands are returned and also
// attached to the next frame.
func (p *Pipeline) SwitchDial() []core.Command {
	cmds := p.controls.SwitchDial()
	p.queue(cmds)
	return cmds
}

// SwitchSpeed toggles the speed unit. The commands are returned and also
// attached to the next frame.
func (p *Pipeline) SwitchSpeed() []core.Command {
	cmds := p.controls.SwitchSpeed()
	p.queue(cmds)
	return cmds
}

// CloseTips hides the tips overlay on the next frame.
func (p *Pipeline) CloseTips() []core.Command {
	cmds := p.controls.CloseTips()
	p.queue(cmds)
	return cmds
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		SessionID:      p.sessions.ID(),
		FramesProduced: p.produced.Load(),
		SourceErrors:   p.sourceErrs.Load(),
		DispatchErrors: p.dispatchErrs.Load(),
		LastTick:       time.Duration(p.lastTick.Load()),
	}
}

// Sessions returns the session context.
func (p *Pipeline) Sessions() *session.Context {
	return p.sessions
}

func (p *Pipeline) startSession(snap *core.Snapshot) {
	s := p.sessions.Start(gameOf(snap), p.formatter.Locale().String(), snap.Truck.Make, p.src.Name(), p.now())
	p.logger.Info("Session started", "sessionId", s.ID, "game", s.Game, "truck", s.TruckMake)
	p.broadcast(dispatcher.Event{Kind: dispatcher.KindStartSession, Session: &s, Timestamp: s.StartTime})
}

func (p *Pipeline) endSession() {
	s, frames, ok := p.sessions.End(p.now())
	if !ok {
		return
	}
	p.logger.Info("Session ended", "sessionId", s.ID, "frames", frames, "duration", s.EndTime.Sub(s.StartTime))
	p.broadcast(dispatcher.Event{Kind: dispatcher.KindEndSession, Session: &s, Timestamp: s.EndTime})
}

func (p *Pipeline) broadcast(e dispatcher.Event) {
	if err := p.out.Broadcast(e); err != nil {
		p.dispatchErrs.Add(1)
		p.logger.Error("Error dispatching event", "kind", e.Kind, "error", fmt.Errorf("broadcast: %w", err))
	}
}

func (p *Pipeline) queue(cmds []core.Command) {
	if len(cmds) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, cmds...)
}

func (p *Pipeline) drainPending() []core.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	cmds := p.pending
	p.pending = nil
	return cmds
}

func gameOf(s *core.Snapshot) string {
	if s.Game.IsATS() {
		return core.GameATS
	}
	return core.GameETS
}
