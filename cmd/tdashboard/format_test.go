package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ets2dash/tdashboard/pkg/core"
)

const testSnapshotJSON = `{
	"game": {"connected": true, "gameName": "ETS", "time": "0001-01-05T14:30:00Z"},
	"truck": {"id": "vehicle.scania.r", "make": "Scania", "speed": 72.4, "electricOn": true, "odometer": 12345.6},
	"navigation": {"speedLimit": 80}
}`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshotJSON), 0o644))
	return path
}

func TestFormatCmd_JSON(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "--language", "de-DE", "format", writeSnapshot(t))
	require.NoError(t, err)

	var res formatResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "de", res.Locale)
	assert.Equal(t, 72.0, res.Derived["_speedRoundedKMH"])
	assert.Equal(t, true, res.Derived["_electricOn"])
	assert.Empty(t, res.Commands)
}

func TestFormatCmd_WithCommands(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "--language", "en", "format", "--commands", writeSnapshot(t))
	require.NoError(t, err)

	var res formatResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.Commands)
}

func TestFormatCmd_Viewport(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "--language", "en",
		"format", "--commands", "--width", "1024", "--height", "576", writeSnapshot(t))
	require.NoError(t, err)

	var res formatResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Commands)
	assert.Equal(t, core.Command{Kind: core.CommandStyle, Selector: "body", Property: "transform", Value: "scale(0.5)"}, res.Commands[0])

	kinds := lo.Map(res.Commands, func(c core.Command, _ int) core.CommandKind { return c.Kind })
	assert.Contains(t, kinds, core.CommandToggle)
	assert.Contains(t, kinds, core.CommandValue)
}

func TestFormatCmd_ViewportNeedsCommands(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "--language", "en",
		"format", "--width", "1024", "--height", "576", writeSnapshot(t))
	require.NoError(t, err)

	var res formatResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Commands)
}

func TestFormatCmd_YAML(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "--language", "en", "format", "-o", "yaml", writeSnapshot(t))
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, "en", res["locale"])
	derived, ok := res["derived"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 72, derived["_speedRoundedKMH"])
}

func TestFormatCmd_Table(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "--language", "en", "format", "-o", "table", "--commands", writeSnapshot(t))
	require.NoError(t, err)

	assert.Contains(t, out, "locale en")
	assert.Contains(t, out, "_speedRoundedKMH")
	assert.Contains(t, out, "SELECTOR")
}

func TestFormatCmd_Stdin(t *testing.T) {
	t.Cleanup(viper.Reset)
	root := newRootCmd()
	root.SetIn(strings.NewReader(testSnapshotJSON))
	var out strings.Builder
	root.SetOut(&out)
	root.SetArgs([]string{"--config-dir", t.TempDir(), "--language", "en", "format", "-"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"_speedRoundedKMH": 72`)
}

func TestFormatCmd_Errors(t *testing.T) {
	_, err := execute(t, "--config-dir", t.TempDir(), "format", "-o", "xml", writeSnapshot(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	_, err = execute(t, "--config-dir", t.TempDir(), "format", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read snapshot")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = execute(t, "--config-dir", t.TempDir(), "format", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "-", displayValue(nil))
	assert.Equal(t, `"km/h"`, displayValue("km/h"))
	assert.Equal(t, "72.5", displayValue(72.5))
	assert.Equal(t, "true", displayValue(true))
}
