package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ets2dash/tdashboard/internal/config"
)

// BuildVersion and BuildDate can be set at build time via ldflags.
var (
	BuildVersion = "0.0.1"
	BuildDate    = "unknown"
)

const (
	appName   = "tdashboard"
	envPrefix = "TDASH"
)

var configDir string

// flagKeys maps global flags onto their viper keys.
var flagKeys = map[string]string{
	"language":  "language",
	"log-level": "logLevel",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Truck telemetry dashboard formatter",
		Long:          "Formats ETS2/ATS telemetry snapshots into dashboard fields and render commands and streams them to the configured sinks.",
		Version:       fmt.Sprintf("%s (%s)", BuildVersion, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", ".", "directory containing "+config.FileName)
	flags.String("language", "", "dashboard language tag, e.g. de-DE (default from LC_ALL/LANG)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRunCmd(), newFormatCmd(), newAssetsCmd(), newCheckCmd(), newVersionCmd())
	return root
}

// initConfig loads the config file when present and layers TDASH_* env vars
// and flags on top.
func initConfig(cmd *cobra.Command) error {
	if err := config.Load(configDir); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(errors.Unwrap(err)) {
			return err
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each known flag to its viper key so that an explicitly set
// flag wins over env and file, and the env var TDASH_<FLAG> is honored.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		envVar := fmt.Sprintf("%s_%s", envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")))
		if err := v.BindEnv(key, envVar); err != nil {
			errs = append(errs, fmt.Errorf("bind env %s: %w", envVar, err))
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
