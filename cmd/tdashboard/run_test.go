package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/storage/memory"
)

func TestRunCmd_ReplayToMemory(t *testing.T) {
	dir := t.TempDir()
	replay := filepath.Join(dir, "replay.jsonl")
	lines := []string{
		`{"game":{"connected":true,"gameName":"ETS"},"truck":{"make":"Scania","speed":50}}`,
		`{"game":{"connected":true,"gameName":"ETS"},"truck":{"make":"Scania","speed":55}}`,
		`{"game":{"connected":true,"gameName":"ETS"},"truck":{"make":"Scania","speed":60}}`,
	}
	require.NoError(t, os.WriteFile(replay, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	outDir := filepath.Join(dir, "frames")
	cfg := map[string]any{
		"logsDir": filepath.Join(dir, "logs"),
		"source": map[string]any{
			"type":       "replay",
			"replayFile": replay,
			"interval":   "1ms",
		},
		"storage": map[string]any{
			"backends": []string{"memory"},
			"memory":   map[string]any{"outputDir": outDir, "compressOutput": false},
		},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), data, 0o644))

	_, err = execute(t, "--config-dir", dir, "--language", "en", "run")
	require.NoError(t, err)

	exports, err := filepath.Glob(filepath.Join(outDir, "*.json"))
	require.NoError(t, err)
	require.Len(t, exports, 1)

	exp, err := memory.ReadExport(exports[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(3), exp.FrameCount)
	assert.Equal(t, "Scania", exp.Session.TruckMake)

	logs, err := filepath.Glob(filepath.Join(dir, "logs", appName+".*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRunCmd_BadSource(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"logsDir":"` + filepath.ToSlash(filepath.Join(dir, "logs")) + `","source":{"type":"carrier-pigeon"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))

	_, err := execute(t, "--config-dir", dir, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}
