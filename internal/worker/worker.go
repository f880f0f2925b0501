// Package worker connects storage backends to the dispatcher.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ets2dash/tdashboard/internal/storage"
)

// WriteDurationProvider is an optional interface that backends can implement
// to expose their last write duration for monitoring.
type WriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// QueueLenProvider is implemented by backends with an internal write queue.
type QueueLenProvider interface {
	QueueLen() int
}

type namedBackend struct {
	name    string
	backend storage.Backend
}

// Manager owns the enabled storage backends.
type Manager struct {
	logger   *slog.Logger
	backends []namedBackend
}

// NewManager creates a worker manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Add registers a backend under name. Names must be unique.
func (m *Manager) Add(name string, b storage.Backend) error {
	if _, ok := m.Backend(name); ok {
		return fmt.Errorf("backend %s already added", name)
	}
	m.backends = append(m.backends, namedBackend{name: name, backend: b})
	return nil
}

// Backend returns the backend registered as name.
func (m *Manager) Backend(name string) (storage.Backend, bool) {
	for _, nb := range m.backends {
		if nb.name == name {
			return nb.backend, true
		}
	}
	return nil, false
}

// Names returns backend names in the order they were added.
func (m *Manager) Names() []string {
	names := make([]string, len(m.backends))
	for i, nb := range m.backends {
		names[i] = nb.name
	}
	return names
}

// InitAll initializes every backend. On failure the backends initialized so
// far are closed again.
func (m *Manager) InitAll() error {
	for i, nb := range m.backends {
		if err := nb.backend.Init(); err != nil {
			for _, done := range m.backends[:i] {
				_ = done.backend.Close()
			}
			return fmt.Errorf("init %s backend: %w", nb.name, err)
		}
		m.logger.Info("Storage backend initialized", "backend", nb.name)
	}
	return nil
}

// CloseAll closes every backend and joins the errors.
func (m *Manager) CloseAll() error {
	var errs []error
	for _, nb := range m.backends {
		if err := nb.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s backend: %w", nb.name, err))
		}
	}
	return errors.Join(errs...)
}

// ExportedFiles returns the files written by backends that implement
// storage.Exporter, keyed by backend name. Empty paths are skipped.
func (m *Manager) ExportedFiles() map[string]string {
	files := make(map[string]string)
	for _, nb := range m.backends {
		if e, ok := nb.backend.(storage.Exporter); ok {
			if p := e.ExportedFilePath(); p != "" {
				files[nb.name] = p
			}
		}
	}
	return files
}

// LastWriteDuration returns the last write duration reported by name, or 0.
func (m *Manager) LastWriteDuration(name string) time.Duration {
	b, ok := m.Backend(name)
	if !ok {
		return 0
	}
	if p, ok := b.(WriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}

// BackendQueueLen returns the internal queue length of name, or 0.
func (m *Manager) BackendQueueLen(name string) int {
	b, ok := m.Backend(name)
	if !ok {
		return 0
	}
	if p, ok := b.(QueueLenProvider); ok {
		return p.QueueLen()
	}
	return 0
}
