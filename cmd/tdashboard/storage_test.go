package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/storage"
	gormstorage "github.com/ets2dash/tdashboard/internal/storage/gorm"
	influxstorage "github.com/ets2dash/tdashboard/internal/storage/influx"
	"github.com/ets2dash/tdashboard/internal/storage/memory"
	sqlitestorage "github.com/ets2dash/tdashboard/internal/storage/sqlite"
	wsstorage "github.com/ets2dash/tdashboard/internal/storage/websocket"
)

func testDeps(t *testing.T) storageDeps {
	return storageDeps{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		ZLog:    zerolog.Nop(),
		LogsDir: t.TempDir(),
		Start:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHttpToWS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:8080/", "ws://localhost:8080"},
		{"https://dash.example.com/ws", "wss://dash.example.com/ws"},
		{"ws://localhost:8080/ws", "ws://localhost:8080/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, httpToWS(tt.in))
		})
	}
}

func TestCreateStorageBackend(t *testing.T) {
	cfg := config.StorageConfig{
		FlushInterval: time.Second,
		Memory:        config.MemoryConfig{OutputDir: t.TempDir(), HistorySize: 10},
		WebSocket:     config.WebSocketConfig{URL: "http://localhost:8080/ws"},
		SQLite:        config.SQLiteConfig{},
	}
	deps := testDeps(t)

	b, err := createStorageBackend(storage.NameMemory, cfg, deps)
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = createStorageBackend(storage.NameWebSocket, cfg, deps)
	require.NoError(t, err)
	assert.IsType(t, &wsstorage.Backend{}, b)

	b, err = createStorageBackend(storage.NamePostgres, cfg, deps)
	require.NoError(t, err)
	assert.IsType(t, &gormstorage.Backend{}, b)

	b, err = createStorageBackend(storage.NameInflux, cfg, deps)
	require.NoError(t, err)
	assert.IsType(t, &influxstorage.Backend{}, b)

	b, err = createStorageBackend(storage.NameSQLite, cfg, deps)
	require.NoError(t, err)
	require.IsType(t, &sqlitestorage.Backend{}, b)
	t.Cleanup(func() { _ = b.Close() })
	assert.True(t, b.(*sqlitestorage.Backend).InMemory())

	_, err = createStorageBackend("redis", cfg, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend: redis")
}

func TestCreateWorkerManager(t *testing.T) {
	cfg := config.StorageConfig{
		Backends: []string{"memory", " Memory ", "websocket"},
		Memory:   config.MemoryConfig{OutputDir: t.TempDir()},
	}
	m, err := createWorkerManager(cfg, testDeps(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"memory", "websocket"}, m.Names())

	_, err = createWorkerManager(config.StorageConfig{}, testDeps(t))
	assert.Error(t, err)

	_, err = createWorkerManager(config.StorageConfig{Backends: []string{"nope"}}, testDeps(t))
	assert.Error(t, err)
}
