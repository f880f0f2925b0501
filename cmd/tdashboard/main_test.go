package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets2dash/tdashboard/internal/config"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitConfig_MissingFileUsesDefaults(t *testing.T) {
	_, err := execute(t, "--config-dir", t.TempDir(), "version")
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, 250*time.Millisecond, config.GetSourceConfig().Interval)
}

func TestInitConfig_FileFlagsAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"source":{"interval":"100ms"},"language":"fr-FR","logLevel":"warn"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))
	t.Setenv("TDASH_LOG_LEVEL", "debug")

	_, err := execute(t, "--config-dir", dir, "--language", "pl-PL", "version")
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, config.GetSourceConfig().Interval)
	assert.Equal(t, "pl-PL", config.GetLanguage(), "flag wins over file")
	assert.Equal(t, "debug", viper.GetString("logLevel"), "env wins over file")
}

func TestInitConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(`{not json`), 0o644))

	_, err := execute(t, "--config-dir", dir, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "--config-dir", t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, appName+" "+BuildVersion)
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "bogus")
	assert.Error(t, err)
}
