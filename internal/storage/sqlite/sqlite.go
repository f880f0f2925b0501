// Package sqlitestorage implements the storage.Backend interface on SQLite.
// It wraps the GORM backend and adds a periodic VACUUM INTO dump when the
// database is kept in memory.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/database"
	gormstorage "github.com/ets2dash/tdashboard/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	mgr      *database.Manager
	cfg      config.SQLiteConfig
	logger   zerolog.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New opens the SQLite database described by cfg.
func New(cfg config.SQLiteConfig, flushInterval time.Duration, logger zerolog.Logger) (*Backend, error) {
	mgr := database.NewManager(logger)
	if err := mgr.OpenSQLite(cfg.Path); err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:            mgr.DB,
			Logger:        logger,
			FlushInterval: flushInterval,
		}),
		mgr:      mgr,
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// InMemory reports whether the database lives in memory.
func (b *Backend) InMemory() bool {
	return b.cfg.Path == ""
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.InMemory() && b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close flushes, writes a last dump for in-memory databases and closes the connection.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stopChan)
		b.wg.Wait()

		err = b.Backend.Close()
		if b.InMemory() && b.cfg.DumpPath != "" {
			if dumpErr := b.mgr.DumpToDisk(b.cfg.DumpPath); dumpErr != nil && err == nil {
				err = dumpErr
			}
		}
		if closeErr := b.mgr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}

// ExportedFilePath returns the dump path for in-memory databases and the
// database file otherwise.
func (b *Backend) ExportedFilePath() string {
	if b.InMemory() {
		return b.cfg.DumpPath
	}
	return b.cfg.Path
}

func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.logger.Warn().Err(err).Msg("Flush before dump failed")
			}
			if err := b.mgr.DumpToDisk(b.cfg.DumpPath); err != nil {
				b.logger.Error().Err(err).Msg("Error dumping to disk")
			}
		}
	}
}
