// Package monitor periodically samples pipeline health, logs it and writes
// it to the optional database and InfluxDB sinks.
package monitor

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"gorm.io/gorm"

	"github.com/ets2dash/tdashboard/internal/influx"
	"github.com/ets2dash/tdashboard/internal/model"
	"github.com/ets2dash/tdashboard/internal/pipeline"
	"github.com/ets2dash/tdashboard/internal/storage"
)

// MeasurementPerformance is the InfluxDB measurement written by the monitor.
const MeasurementPerformance = "dashboard_performance"

const defaultInterval = time.Minute

// QueueLener reports the dispatcher queue length of a backend.
type QueueLener interface {
	QueueLen(backend string) int
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Stats    func() pipeline.Stats
	Queues   QueueLener
	DB       *gorm.DB
	Influx   *influx.Manager
	Logger   *slog.Logger
	Interval time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample collects the current status.
func (s *Service) Sample() model.Performance {
	var stats pipeline.Stats
	if s.deps.Stats != nil {
		stats = s.deps.Stats()
	}

	perf := model.Performance{
		Time:           time.Now().UTC(),
		SessionID:      stats.SessionID,
		FramesProduced: stats.FramesProduced,
		SourceErrors:   stats.SourceErrors,
		DispatchErrors: stats.DispatchErrors,
		LastTickMs:     float32(stats.LastTick.Microseconds()) / 1000,
	}
	if q := s.deps.Queues; q != nil {
		perf.QueueLengths = model.QueueLengths{
			Memory:    q.QueueLen(storage.NameMemory),
			WebSocket: q.QueueLen(storage.NameWebSocket),
			SQLite:    q.QueueLen(storage.NameSQLite),
			Postgres:  q.QueueLen(storage.NamePostgres),
			Influx:    q.QueueLen(storage.NameInflux),
		}
	}
	return perf
}

// Report samples once, logs the result and writes it to the configured sinks.
func (s *Service) Report() model.Performance {
	perf := s.Sample()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s.deps.Logger.Info("Pipeline status",
		"frames", humanize.Comma(int64(perf.FramesProduced)),
		"sourceErrors", perf.SourceErrors,
		"dispatchErrors", perf.DispatchErrors,
		"lastTickMs", perf.LastTickMs,
		"heap", humanize.Bytes(mem.HeapAlloc),
		"goroutines", runtime.NumGoroutine(),
	)

	if s.deps.DB != nil && perf.SessionID != "" {
		if err := s.deps.DB.Create(&perf).Error; err != nil {
			s.deps.Logger.Error("Error writing performance row", "error", err)
		}
	}
	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(Point(perf, mem.HeapAlloc)); err != nil {
			s.deps.Logger.Error("Error writing performance point", "error", err)
		}
	}
	return perf
}

// Point builds the dashboard_performance point for perf.
func Point(perf model.Performance, heapBytes uint64) *influxdb2_write.Point {
	tags := map[string]string{}
	if perf.SessionID != "" {
		tags["session"] = perf.SessionID
	}
	return influxdb2_write.NewPoint(MeasurementPerformance,
		tags,
		map[string]any{
			"frames_produced": int64(perf.FramesProduced),
			"source_errors":   int64(perf.SourceErrors),
			"dispatch_errors": int64(perf.DispatchErrors),
			"last_tick_ms":    perf.LastTickMs,
			"heap_bytes":      int64(heapBytes),
			"queue_memory":    perf.QueueLengths.Memory,
			"queue_websocket": perf.QueueLengths.WebSocket,
			"queue_sqlite":    perf.QueueLengths.SQLite,
			"queue_postgres":  perf.QueueLengths.Postgres,
			"queue_influx":    perf.QueueLengths.Influx,
		},
		perf.Time)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Report()
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
