// Package gormstorage implements the storage.Backend interface using GORM
// with an internal queue and a background writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ets2dash/tdashboard/internal/database"
	"github.com/ets2dash/tdashboard/internal/model"
	"github.com/ets2dash/tdashboard/internal/model/convert"
	"github.com/ets2dash/tdashboard/internal/queue"
	"github.com/ets2dash/tdashboard/pkg/core"
)

const (
	defaultFlushInterval = 2 * time.Second
	defaultBatchSize     = 500
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	// DB is used as is. When nil, Init connects to Postgres using the db.* config.
	DB            *gorm.DB
	Logger        zerolog.Logger
	FlushInterval time.Duration
	BatchSize     int
}

// Backend implements storage.Backend with queued batch inserts.
type Backend struct {
	deps   Dependencies
	frames *queue.Queue[model.Frame]

	writeMu   sync.Mutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
	written   atomic.Uint64
	lastWrite atomic.Int64
	stopOnce  sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}
	return &Backend{
		deps:   deps,
		frames: queue.New[model.Frame](0),
	}
}

// DB returns the connection in use.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init connects if needed, migrates the schema and starts the writer.
func (b *Backend) Init() error {
	mgr := database.NewManager(b.deps.Logger)
	if b.deps.DB == nil {
		if err := mgr.OpenPostgres(); err != nil {
			return err
		}
		b.deps.DB = mgr.DB
	}
	mgr.DB = b.deps.DB

	if err := mgr.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.writer()
	return nil
}

// Close stops the writer and flushes what is left.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() {
		if b.stopChan != nil {
			close(b.stopChan)
		}
	})
	b.wg.Wait()
	if b.deps.DB == nil {
		return nil
	}
	return b.Flush()
}

// StartSession inserts the session row synchronously so frames can reference it.
func (b *Backend) StartSession(s *core.Session) error {
	row := convert.SessionToModel(*s, 0)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// EndSession flushes pending frames and records the end time and frame count.
func (b *Backend) EndSession(s *core.Session) error {
	if s == nil {
		return nil
	}
	flushErr := b.Flush()

	var count int64
	if err := b.deps.DB.Model(&model.Frame{}).Where("session_id = ?", s.ID).Count(&count).Error; err != nil {
		return errors.Join(flushErr, fmt.Errorf("failed to count frames: %w", err))
	}

	row := convert.SessionToModel(*s, uint64(count))
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", s.ID).Updates(map[string]any{
		"end_time":    row.EndTime,
		"frame_count": row.FrameCount,
		"truck_make":  row.TruckMake,
	}).Error
	if err != nil {
		return errors.Join(flushErr, fmt.Errorf("failed to update session: %w", err))
	}
	return flushErr
}

// RecordFrame converts and queues a frame.
func (b *Backend) RecordFrame(f *core.Frame) error {
	row, err := convert.FrameToModel(*f)
	if err != nil {
		return err
	}
	b.frames.Push(row)
	return nil
}

// QueueLen returns the number of frames waiting to be written.
func (b *Backend) QueueLen() int {
	return b.frames.Len()
}

// Written returns the number of frames inserted so far.
func (b *Backend) Written() uint64 {
	return b.written.Load()
}

// LastWriteDuration returns how long the last non-empty flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// Flush writes all queued frames in batches, each in its own transaction.
// A failed batch is pushed back onto the queue.
func (b *Backend) Flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.frames.Empty() {
		return nil
	}
	start := time.Now()
	for !b.frames.Empty() {
		items := b.frames.Drain(b.deps.BatchSize)
		err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&items).Error
		})
		if err != nil {
			b.frames.Push(items...)
			b.deps.Logger.Error().Err(err).Int("count", len(items)).Msg("Error writing frames")
			return fmt.Errorf("failed to write frames: %w", err)
		}
		b.written.Add(uint64(len(items)))
	}
	b.lastWrite.Store(int64(time.Since(start)))
	return nil
}

func (b *Backend) writer() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}
