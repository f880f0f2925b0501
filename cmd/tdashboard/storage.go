package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/storage"
	gormstorage "github.com/ets2dash/tdashboard/internal/storage/gorm"
	influxstorage "github.com/ets2dash/tdashboard/internal/storage/influx"
	"github.com/ets2dash/tdashboard/internal/storage/memory"
	sqlitestorage "github.com/ets2dash/tdashboard/internal/storage/sqlite"
	wsstorage "github.com/ets2dash/tdashboard/internal/storage/websocket"
	"github.com/ets2dash/tdashboard/internal/worker"
)

// storageDeps carries what the backend constructors need besides config.
type storageDeps struct {
	Logger  *slog.Logger
	ZLog    zerolog.Logger
	LogsDir string
	Start   time.Time
}

func createStorageBackend(name string, storageCfg config.StorageConfig, deps storageDeps) (storage.Backend, error) {
	switch name {
	case storage.NameMemory:
		deps.Logger.Info("Memory storage backend created", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	case storage.NameWebSocket:
		wsURL := httpToWS(storageCfg.WebSocket.URL)
		deps.Logger.Info("WebSocket storage backend created", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: storageCfg.WebSocket.Secret,
		}, deps.Logger), nil

	case storage.NameSQLite:
		backend, err := sqlitestorage.New(storageCfg.SQLite, storageCfg.FlushInterval, deps.ZLog)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		deps.Logger.Info("SQLite storage backend created", "path", backend.ExportedFilePath(), "inMemory", backend.InMemory())
		return backend, nil

	case storage.NamePostgres:
		deps.Logger.Info("Postgres storage backend created")
		return gormstorage.New(gormstorage.Dependencies{
			Logger:        deps.ZLog,
			FlushInterval: storageCfg.FlushInterval,
		}), nil

	case storage.NameInflux:
		backupPath := filepath.Join(deps.LogsDir, fmt.Sprintf("influx_backup_%s.lp.gz", deps.Start.Format("20060102_150405")))
		deps.Logger.Info("InfluxDB storage backend created", "backupPath", backupPath)
		return influxstorage.New(config.GetInfluxConfig(), backupPath, deps.ZLog), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", name)
	}
}

// createWorkerManager builds every backend listed in storageCfg.Backends.
// Duplicate names are ignored.
func createWorkerManager(storageCfg config.StorageConfig, deps storageDeps) (*worker.Manager, error) {
	m := worker.NewManager(deps.Logger)
	for _, name := range storageCfg.Backends {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := m.Backend(name); ok {
			continue
		}
		backend, err := createStorageBackend(name, storageCfg, deps)
		if err != nil {
			return nil, err
		}
		if err := m.Add(name, backend); err != nil {
			return nil, err
		}
	}
	if len(m.Names()) == 0 {
		return nil, fmt.Errorf("no storage backends configured")
	}
	return m, nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
