package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/internal/dispatcher"
	"github.com/ets2dash/tdashboard/internal/formatter"
	"github.com/ets2dash/tdashboard/internal/influx"
	"github.com/ets2dash/tdashboard/internal/locale"
	"github.com/ets2dash/tdashboard/internal/logging"
	"github.com/ets2dash/tdashboard/internal/monitor"
	intOtel "github.com/ets2dash/tdashboard/internal/otel"
	"github.com/ets2dash/tdashboard/internal/pipeline"
	"github.com/ets2dash/tdashboard/internal/render"
	"github.com/ets2dash/tdashboard/internal/session"
	"github.com/ets2dash/tdashboard/internal/source"
	"github.com/ets2dash/tdashboard/internal/storage"
	influxstorage "github.com/ets2dash/tdashboard/internal/storage/influx"
	"github.com/ets2dash/tdashboard/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newRunCmd() *cobra.Command {
	var controls bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the telemetry source and stream formatted frames to the storage backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var input io.Reader
			if controls {
				input = cmd.InOrStdin()
			}
			return run(ctx, input)
		},
	}
	cmd.Flags().BoolVar(&controls, "controls", false, "read dashboard controls from stdin: d (dial), s (speed unit), t (tips)")
	return cmd
}

// closers runs cleanup functions in reverse order of registration.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		errs = append(errs, c[i]())
	}
	return errors.Join(errs...)
}

// run wires the process and blocks until ctx is done or the source ends.
// Lines read from controls, when non-nil, drive the dashboard controls.
func run(ctx context.Context, controls io.Reader) (err error) {
	start := time.Now()
	var cleanup closers
	defer func() { err = errors.Join(err, cleanup.close()) }()

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, appName, start))
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	cleanup.add(logFile.Close)

	provider, err := setupOTel(logsDir, start, &cleanup)
	if err != nil {
		return err
	}

	level := config.GetString("logLevel")
	slogManager := logging.NewSlogManager()
	slogManager.Setup(io.MultiWriter(logFile, os.Stdout), level, provider.LoggerProvider())
	sessions := session.NewContext()
	slogManager.WithContext(sessions.LogAttrs)
	logger := slogManager.Logger()
	zlog := logging.NewZerolog(logFile, level, "storage")

	srcCfg := config.GetSourceConfig()
	src, err := source.New(srcCfg, logger)
	if err != nil {
		return err
	}
	cleanup.add(src.Close)

	storageCfg := config.GetStorageConfig()
	workers, err := createWorkerManager(storageCfg, storageDeps{Logger: logger, ZLog: zlog, LogsDir: logsDir, Start: start})
	if err != nil {
		return err
	}
	if err := workers.InitAll(); err != nil {
		return err
	}
	cleanup.add(func() error {
		closeErr := workers.CloseAll()
		for backend, path := range workers.ExportedFiles() {
			logger.Info("Session exported", "backend", backend, "path", path)
		}
		return closeErr
	})

	disp, err := dispatcher.New(logging.NewDispatcherLogger(zlog.With().Str("component", "dispatcher").Logger()))
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}
	workers.RegisterHandlers(disp, storageCfg.BufferSize)
	cleanup.add(func() error { disp.Close(); return nil })

	l := locale.Resolve(locale.FromEnvironment(config.GetLanguage()))
	p := pipeline.New(pipeline.Config{
		Interval: srcCfg.Interval,
		Controls: render.DefaultControlsConfig(),
	}, src, formatter.New(logger, l), disp, sessions, logger)

	mon := monitor.NewService(monitor.Dependencies{
		Stats:    p.Stats,
		Queues:   disp,
		DB:       monitorDB(workers),
		Influx:   monitorInflux(workers),
		Logger:   logger,
		Interval: config.GetDuration("monitor.interval"),
	})
	if err := mon.Start(); err != nil {
		return err
	}
	cleanup.add(func() error { mon.Stop(); return nil })

	logger.Info("Starting dashboard",
		"version", BuildVersion,
		"locale", l.String(),
		"source", src.Name(),
		"backends", workers.Names(),
	)
	if controls != nil {
		go readControls(ctx, controls, p, logger)
	}
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	logger.Info("Shutting down", "uptime", time.Since(start).Round(time.Second))
	return nil
}

func setupOTel(logsDir string, start time.Time, cleanup *closers) (*intOtel.Provider, error) {
	otelCfg := config.GetOTelConfig()
	cfg := intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: BuildVersion,
		BatchTimeout:   otelCfg.BatchTimeout,
		MetricInterval: otelCfg.MetricInterval,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	}
	if otelCfg.Enabled {
		logFile, err := os.Create(logging.LogFilePath(logsDir, appName+".otel", start))
		if err != nil {
			return nil, fmt.Errorf("create otel log file: %w", err)
		}
		cleanup.add(logFile.Close)
		metricFile, err := os.Create(logging.LogFilePath(logsDir, appName+".metrics", start))
		if err != nil {
			return nil, fmt.Errorf("create otel metric file: %w", err)
		}
		cleanup.add(metricFile.Close)
		cfg.LogWriter = logFile
		cfg.MetricWriter = metricFile
	}

	provider, err := intOtel.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup otel: %w", err)
	}
	cleanup.add(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return provider.Shutdown(ctx)
	})
	return provider, nil
}

// monitorDB returns the connection of the first database backend, if any.
func monitorDB(workers *worker.Manager) *gorm.DB {
	for _, name := range []string{storage.NamePostgres, storage.NameSQLite} {
		b, ok := workers.Backend(name)
		if !ok {
			continue
		}
		if d, ok := b.(interface{ DB() *gorm.DB }); ok {
			return d.DB()
		}
	}
	return nil
}

func monitorInflux(workers *worker.Manager) *influx.Manager {
	b, ok := workers.Backend(storage.NameInflux)
	if !ok {
		return nil
	}
	if ib, ok := b.(*influxstorage.Backend); ok {
		return ib.Manager()
	}
	return nil
}
