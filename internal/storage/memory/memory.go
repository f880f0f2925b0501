package memory

import (
	"sync"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/queue"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Backend keeps the latest frame and a bounded history in memory and
// exports the history to JSON when the session ends.
type Backend struct {
	cfg config.MemoryConfig

	mu             sync.RWMutex
	session        *core.Session
	latest         *core.Frame
	history        *queue.Queue[core.Frame]
	frames         uint64
	dropped        uint64
	lastExportPath string
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		history: queue.New[core.Frame](cfg.HistorySize),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session and clears the history.
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := *s
	b.session = &cp
	b.latest = nil
	b.history.Clear()
	b.frames = 0
	b.dropped = 0
	return nil
}

// EndSession exports the recorded history. It is a no-op without an active
// session.
func (b *Backend) EndSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	if s != nil {
		cp := *s
		b.session = &cp
	}
	err := b.exportJSON()
	b.session = nil
	return err
}

// RecordFrame stores f as the latest frame and appends it to the history.
func (b *Backend) RecordFrame(f *core.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := *f
	b.latest = &cp
	b.frames++
	b.dropped += uint64(b.history.Push(cp))
	return nil
}

// Latest returns the most recent frame.
func (b *Backend) Latest() (core.Frame, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return core.Frame{}, false
	}
	return *b.latest, true
}

// History returns the retained frames, oldest first.
func (b *Backend) History() []core.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.Items()
}

// FrameCount returns how many frames were recorded in the current session
// and how many of them were evicted from the history.
func (b *Backend) FrameCount() (recorded, evicted uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frames, b.dropped
}

// ExportedFilePath returns the path of the last export.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
